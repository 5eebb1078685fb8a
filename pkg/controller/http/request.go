package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

const maxRequestBody = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a JSON body into v and runs struct validation on it
func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return goerr.Wrap(usecase.ErrValidation, "request body is empty")
		}
		return goerr.Wrap(usecase.ErrValidation, "malformed JSON body", goerr.V("reason", err.Error()))
	}
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return goerr.Wrap(usecase.ErrValidation, "invalid field "+fe.Field(),
			goerr.V("field", fe.Field()),
			goerr.V("rule", fe.Tag()),
			goerr.V("param", fe.Param()),
		)
	}
	return goerr.Wrap(usecase.ErrValidation, "invalid request", goerr.V("reason", err.Error()))
}

const dayLayout = "2006-01-02"

// parseDate accepts RFC3339 or YYYY-MM-DD. A bare day is read as UTC; with
// endOfDay it stands for the last instant of that day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, goerr.Wrap(usecase.ErrValidation, "date must be RFC3339 or YYYY-MM-DD", goerr.V("date", raw))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// optionalDate parses a possibly absent date value
func optionalDate(raw *string, endOfDay bool) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(*raw, endOfDay)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryDate reads a date query parameter, nil when absent
func queryDate(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw, endOfDay)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid "+name, goerr.V("param", name))
	}
	return &t, nil
}

// queryDateRange reads startDate and endDate
func queryDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	start, err := queryDate(r, "startDate", false)
	if err != nil {
		return nil, nil, err
	}
	end, err := queryDate(r, "endDate", true)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrValidation, "invalid integer parameter", goerr.V("param", name), goerr.V("value", raw))
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, goerr.Wrap(usecase.ErrValidation, "invalid boolean parameter", goerr.V("param", name), goerr.V("value", raw))
	}
	return b, nil
}

// queryList splits a comma separated parameter, dropping empty items
func queryList(r *http.Request, name string) []string {
	var items []string
	for _, v := range r.URL.Query()[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
