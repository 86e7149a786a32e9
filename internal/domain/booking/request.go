package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Field names of a booking request.
const (
	FieldID       = "id"
	FieldFrom     = "from"
	FieldTo       = "to"
	FieldCustomer = "customer"
	FieldDuration = "duration"
	FieldDistance = "distance"
	FieldFare     = "fare"
)

// RequiredField pairs a request key with the kind it must hold.
type RequiredField struct {
	Name string
	Kind Kind
}

// RequiredFields is the validation order: integers, then floats, then strings.
var RequiredFields = []RequiredField{
	{FieldDuration, KindInteger},
	{FieldDistance, KindInteger},
	{FieldFare, KindFloat},
	{FieldFrom, KindString},
	{FieldTo, KindString},
	{FieldCustomer, KindString},
}

var ErrMalformedRequest = errors.New("request body is not a JSON object")

// FieldError reports a required field that is missing or holds the wrong kind.
type FieldError struct {
	Field    string
	Expected Kind
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Expecting %s for argument: %s", e.Expected, e.Field)
}

// Request is the untrusted booking payload. Numbers are kept as json.Number.
type Request map[string]any

// ParseRequest decodes body into a Request. Anything but a JSON object is malformed.
func ParseRequest(body string) (Request, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: null body", ErrMalformedRequest)
	}

	// trailing data after the object is not JSON either
	if rest := strings.TrimLeft(body[dec.InputOffset():], " \t\r\n"); rest != "" {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedRequest)
	}

	return req, nil
}

// Validate scans RequiredFields in order and returns the first violation as a *FieldError.
func Validate(req Request) error {
	for _, f := range RequiredFields {
		v, ok := req[f.Name]
		if !ok || !f.Kind.Matches(v) {
			return &FieldError{Field: f.Name, Expected: f.Kind}
		}
	}
	return nil
}
