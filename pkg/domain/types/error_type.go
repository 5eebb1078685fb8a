package types

import "github.com/m-mizutani/goerr/v2"

// ErrorType classifies an error-log entry
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeDatabase   ErrorType = "DATABASE_ERROR"
	ErrorTypeProcessing ErrorType = "PROCESSING_ERROR"
	ErrorTypeUnknown    ErrorType = "UNKNOWN_ERROR"
)

func (e ErrorType) IsValid() bool {
	switch e {
	case ErrorTypeValidation, ErrorTypeDatabase, ErrorTypeProcessing, ErrorTypeUnknown:
		return true
	default:
		return false
	}
}

func (e ErrorType) String() string {
	return string(e)
}

func ParseErrorType(s string) (ErrorType, error) {
	e := ErrorType(s)
	if !e.IsValid() {
		return "", goerr.New("invalid error type", goerr.V("error_type", s))
	}
	return e, nil
}
