// Package validate implements declarative request validation.
//
// A Violations collector applies per-field constraints, gathers every
// violated field (dotted path plus message) instead of stopping at the
// first, and converts the result into a single apierr validation error.
// Coercion helpers return normalized values (ObjectIDs, timestamps) so
// handlers downstream only ever see typed data.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
)

// PageSizeOptions is the fixed allowed set for pagination page sizes.
var PageSizeOptions = []int{50, 100, 150, 200}

// DefaultPageSize is used when a list request omits pageSize.
const DefaultPageSize = 50

// Violations collects field-level validation failures.
type Violations struct {
	fields []apierr.FieldError
}

// New creates an empty collector.
func New() *Violations {
	return &Violations{}
}

// Add records a violation for the given dotted field path.
func (v *Violations) Add(field, message string) {
	v.fields = append(v.fields, apierr.FieldError{Field: field, Message: message})
}

// Err returns nil when nothing was violated, otherwise a single
// validation error listing every collected field.
func (v *Violations) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return apierr.Validation(v.fields)
}

// Require checks that a string is non-empty after trimming.
func (v *Violations) Require(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, message)
	}
}

// MaxLen checks an upper bound on string length.
func (v *Violations) MaxLen(field, value string, max int) {
	if len(value) > max {
		v.Add(field, fmt.Sprintf("Must be at most %d characters", max))
	}
}

// Email checks RFC 5322 address syntax.
func (v *Violations) Email(field, value string) {
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "Valid email is required")
	}
}

// URL checks that value parses as an absolute URL. Empty values pass;
// pair with Require for mandatory fields.
func (v *Violations) URL(field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		v.Add(field, "Must be a valid URL")
	}
}

// Positive checks that an integer is strictly greater than zero.
func (v *Violations) Positive(field string, value int, message string) {
	if value <= 0 {
		v.Add(field, message)
	}
}

// Enum checks membership in the allowed value set.
func (v *Violations) Enum(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, fmt.Sprintf("Must be one of %s", strings.Join(allowed, ", ")))
}

// Refine records a cross-field violation when ok is false.
func (v *Violations) Refine(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// ObjectID validates and coerces a hex entity id. Returns the zero id
// on failure after recording the violation.
func (v *Violations) ObjectID(field, value string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		v.Add(field, "Invalid ObjectId")
		return primitive.NilObjectID
	}
	return id
}

// ObjectIDs validates and coerces a slice of hex entity ids.
func (v *Violations) ObjectIDs(field string, values []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(values))
	for i, raw := range values {
		ids = append(ids, v.ObjectID(fmt.Sprintf("%s.%d", field, i), raw))
	}
	return ids
}

// Time validates and coerces an RFC 3339 timestamp.
func (v *Violations) Time(field, value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		v.Add(field, "Must be an RFC 3339 timestamp")
		return time.Time{}
	}
	return t
}

// OptionalTime coerces a timestamp when present, nil otherwise.
func (v *Violations) OptionalTime(field string, value *string) *time.Time {
	if value == nil {
		return nil
	}
	t := v.Time(field, *value)
	if t.IsZero() {
		return nil
	}
	return &t
}

// Page validates a page number, defaulting to 1 when zero.
func (v *Violations) Page(value int) int {
	if value == 0 {
		return 1
	}
	if value < 0 {
		v.Add("page", "Page must be a positive number greater than 0")
		return 1
	}
	return value
}

// PageSize validates a page size against the fixed allowed set,
// defaulting when zero.
func (v *Violations) PageSize(value int) int {
	if value == 0 {
		return DefaultPageSize
	}
	for _, opt := range PageSizeOptions {
		if value == opt {
			return value
		}
	}
	v.Add("pageSize", fmt.Sprintf("Page size must be one of %s", joinInts(PageSizeOptions)))
	return DefaultPageSize
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, n := range values {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
