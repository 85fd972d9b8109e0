package validate

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
)

// DecodeStrict decodes a JSON body into dst, rejecting fields not
// declared on the destination type. A malformed body or an unknown
// field is reported as a validation error.
func DecodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Validation([]apierr.FieldError{{Field: "body", Message: "Request body is required"}})
		}
		if field, ok := unknownField(err); ok {
			return apierr.Validation([]apierr.FieldError{{Field: field, Message: "Unknown field"}})
		}
		return apierr.Validation([]apierr.FieldError{{Field: "body", Message: "Invalid request body"}})
	}

	// A second document after the first is also malformed input.
	if dec.More() {
		return apierr.Validation([]apierr.FieldError{{Field: "body", Message: "Invalid request body"}})
	}
	return nil
}

// unknownField extracts the offending field name from the stdlib's
// "json: unknown field" error text, the only form it is reported in.
func unknownField(err error) (string, bool) {
	const prefix = `json: unknown field "`
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(msg, prefix), `"`), true
}
