package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	apperr "signwise/internal/errors"
)

// FieldError is a single failed check.
type FieldError struct {
	Field   string
	Message string
}

// Validator collects failed checks in the order they were made.
type Validator struct {
	Errors []FieldError
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make([]FieldError, 0)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error to the validator
func (v *Validator) AddError(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Err returns the first failed check as a ValidationError, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	first := v.Errors[0]
	return apperr.Validation(first.Field, first.Message)
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "must not be empty")
}

// NonNegative checks an integer amount or count.
func (v *Validator) NonNegative(field string, value int64) {
	v.Check(value >= 0, field, fmt.Sprintf("must not be negative, got %d", value))
}

// Positive checks an integer amount that may not be zero.
func (v *Validator) Positive(field string, value int64) {
	v.Check(value > 0, field, fmt.Sprintf("must be greater than zero, got %d", value))
}

// Finite rejects NaN and infinities.
func (v *Validator) Finite(field string, value float64) bool {
	ok := !math.IsNaN(value) && !math.IsInf(value, 0)
	v.Check(ok, field, "must be a finite number")
	return ok
}

// Range checks if a number is between min and max, inclusive.
func (v *Validator) Range(field string, value float64, min, max float64) {
	if !v.Finite(field, value) {
		return
	}
	v.Check(value >= min && value <= max, field, fmt.Sprintf("must be between %v and %v", min, max))
}

// MinLength checks if a string has at least n characters
func (v *Validator) MinLength(field string, value string, n int) {
	v.Check(len(value) >= n, field, fmt.Sprintf("must be at least %d characters long", n))
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field string, value string, n int) {
	v.Check(len(value) <= n, field, fmt.Sprintf("must not be more than %d characters long", n))
}

// Password validates password strength
func (v *Validator) Password(field, password string) {
	v.MinLength(field, password, MinPasswordLength)
	v.MaxLength(field, password, MaxPasswordLength)

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	v.Check(hasUpper, field, "must contain at least one uppercase letter")
	v.Check(hasLower, field, "must contain at least one lowercase letter")
	v.Check(hasNumber, field, "must contain at least one number")
	v.Check(HasSpecialChar(password), field, "must contain at least one special character")
}

// Email checks that value looks like an email address
func (v *Validator) Email(field, value string) {
	v.Check(emailRegex.MatchString(strings.TrimSpace(value)), field, "must be a valid email address")
}
