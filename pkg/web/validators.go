package web

import (
	"cmp"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator[T cmp.Ordered] func(valueToTest T) bool

func newComparisonValidator[T cmp.Ordered](valueInClosure T, compareFn func(argValue, closedValue T) bool) ParamValidator[T] {
	return func(argValue T) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// Gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func Gte[T cmp.Ordered](valToCompareAgainst T) ParamValidator[T] {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue T) bool {
		return argValue >= closedValue
	})
}

// Gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func Gt[T cmp.Ordered](valToCompareAgainst T) ParamValidator[T] {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue T) bool {
		return argValue > closedValue
	})
}

// QueryParams reads typed url parameters and collects a message for every malformed one.
type QueryParams struct {
	values url.Values
	errors []string
}

// NewQueryParams wraps the query string of r.
func NewQueryParams(r *http.Request) *QueryParams {
	return &QueryParams{values: r.URL.Query()}
}

// Errors returns the collected messages, nil when every parameter parsed.
func (q *QueryParams) Errors() []string {
	return q.errors
}

// String returns the trimmed value of key, or "" when it is absent.
func (q *QueryParams) String(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

// Int returns the value of key, or def when it is absent.
func (q *QueryParams) Int(key string, def int, pValidator ParamValidator[int64], rule string) int {
	v := q.OptionalInt(key, pValidator, rule)
	if v == nil {
		return def
	}
	return *v
}

// OptionalInt returns the value of key, or nil when it is absent or invalid.
func (q *QueryParams) OptionalInt(key string, pValidator ParamValidator[int64], rule string) *int {
	value := q.String(key)
	if value == "" {
		return nil
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !pValidator(intValue) {
		q.errors = append(q.errors, fmt.Sprintf("%s must be an integer %s", key, rule))
		return nil
	}
	result := int(intValue)
	return &result
}

// OptionalFloat returns the value of key, or nil when it is absent or invalid.
func (q *QueryParams) OptionalFloat(key string, pValidator ParamValidator[float64], rule string) *float64 {
	value := q.String(key)
	if value == "" {
		return nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(floatValue, 0) || !pValidator(floatValue) {
		q.errors = append(q.errors, fmt.Sprintf("%s must be a number %s", key, rule))
		return nil
	}
	return &floatValue
}
