package validation

import (
	"math"
	"testing"

	apperr "signwise/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ReportsFirstFailure(t *testing.T) {
	v := New()
	v.Required("client_id", "  ")
	v.NonNegative("document_count", -2)

	require.False(t, v.Valid())
	assert.Len(t, v.Errors, 2)

	err := v.Err()
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "client_id", apperr.FieldOf(err))
}

func TestValidator_NoErrors(t *testing.T) {
	v := New()
	v.Required("vendor_id", "v-1")
	v.Positive("limit", 1)
	v.Range("miles", 12.5, 0, 5000)
	assert.NoError(t, v.Err())
}

func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		valid bool
	}{
		{"lower bound", 0, true},
		{"upper bound", 5000, true},
		{"negative", -0.1, false},
		{"too far", 5000.5, false},
		{"nan", math.NaN(), false},
		{"infinite", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Range("miles", tt.value, 0, 5000)
			assert.Equal(t, tt.valid, v.Valid())
			if !tt.valid {
				assert.Len(t, v.Errors, 1)
			}
		})
	}
}

func TestValidator_Email(t *testing.T) {
	v := New()
	v.Email("email", " ops@signwise.io ")
	assert.True(t, v.Valid())

	v = New()
	v.Email("email", "ops@signwise")
	assert.Equal(t, "email", apperr.FieldOf(v.Err()))
}

func TestValidator_Password(t *testing.T) {
	v := New()
	v.Password("password", "Sup3r!secret")
	assert.True(t, v.Valid())

	v = New()
	v.Password("password", "short")
	// too short, no uppercase, no number, no special character
	assert.Len(t, v.Errors, 4)
}
