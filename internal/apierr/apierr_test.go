package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want int
	}{
		{"validation", KindValidation, http.StatusBadRequest},
		{"authentication", KindAuthentication, http.StatusUnauthorized},
		{"authorization", KindAuthorization, http.StatusForbidden},
		{"not found", KindNotFound, http.StatusNotFound},
		{"conflict", KindConflict, http.StatusConflict},
		{"configuration", KindConfiguration, http.StatusInternalServerError},
		{"unknown", KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind, "x").Status())
		})
	}
}

func TestOperational(t *testing.T) {
	assert.True(t, Conflict("dup").Operational())
	assert.True(t, NotFound("gone").Operational())
	assert.False(t, Configuration("no secret").Operational())
	assert.False(t, Internal(errors.New("boom")).Operational())
}

func TestFrom(t *testing.T) {
	t.Run("passes through domain errors", func(t *testing.T) {
		orig := Conflict("Session is full, cannot add more participants")
		got := From(fmt.Errorf("add participant: %w", orig))
		assert.Equal(t, KindConflict, got.Kind)
		assert.Equal(t, orig.Message, got.Message)
	})

	t.Run("wraps foreign errors as unknown", func(t *testing.T) {
		got := From(errors.New("driver exploded"))
		require.Equal(t, KindUnknown, got.Kind)
		assert.Equal(t, "Internal Server Error", got.Message)
		assert.ErrorContains(t, got, "driver exploded")
	})
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Unauthenticated("Authentication failed: Token has expired."))
	assert.True(t, IsKind(err, KindAuthentication))
	assert.False(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(errors.New("plain"), KindAuthentication))
}

func TestValidationDetails(t *testing.T) {
	err := Validation([]FieldError{
		{Field: "scheduledEndTime", Message: "Scheduled end time must be after start time"},
		{Field: "maxParticipants", Message: "Max participants must be positive"},
	})
	assert.Equal(t, http.StatusBadRequest, err.Status())
	assert.Len(t, err.Details, 2)
	assert.Equal(t, "Validation error", err.Message)
}
