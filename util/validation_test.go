package util

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signupForm struct {
	Username string `json:"username" validate:"required,min=3"`
	Role     string `json:"role" validate:"oneof=Admin Doctor Student"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	registerJSONTagNames(v)

	err := v.Struct(signupForm{Username: "", Role: "Nurse", Email: "nope"})
	msg := FormatValidationError(err)
	assert.Contains(t, msg, "username is required")
	assert.Contains(t, msg, "role must be one of: Admin, Doctor, Student")
	assert.Contains(t, msg, "email must be a valid email")
}

func TestFormatValidationErrorMin(t *testing.T) {
	v := validator.New()
	registerJSONTagNames(v)

	err := v.Struct(signupForm{Username: "ab", Role: "Admin"})
	assert.Equal(t, "username must be at least 3 characters", FormatValidationError(err))
}

func TestFormatValidationErrorPlainError(t *testing.T) {
	assert.Equal(t, "unexpected EOF", FormatValidationError(errors.New("unexpected EOF")))
}

func TestBindErrorIsValidation(t *testing.T) {
	err := BindError(errors.New("bad json"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "bad json")
}

type inviteForm struct {
	Email *string `json:"email" binding:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	UseJSONFieldNames()
	bad := "nope"
	err := ValidateStruct(inviteForm{Email: &bad})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email must be a valid email")

	good := "a@b.edu"
	assert.NoError(t, ValidateStruct(inviteForm{Email: &good}))
	assert.NoError(t, ValidateStruct(inviteForm{}))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("nurse@school.edu"))
	assert.ErrorIs(t, ValidateEmail("nurse"), ErrValidation)
}
