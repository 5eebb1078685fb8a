package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+([._-][A-Za-z0-9]+)*$`)

const maxCodeLength = 64

// ValidateCode checks a human-assigned product, release or feature code.
func ValidateCode(kind, code string) error {
	if code == "" {
		return goerr.New(kind + " code cannot be empty")
	}
	if len(code) > maxCodeLength {
		return goerr.New(kind+" code is too long", goerr.V("code", code), goerr.V("max", maxCodeLength))
	}
	if !codePattern.MatchString(code) {
		return goerr.New(kind+" code must be alphanumeric separated by '.', '_' or '-'", goerr.V("code", code))
	}
	return nil
}
