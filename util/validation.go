package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// UseJSONFieldNames makes validation errors report JSON keys instead of Go
// field names. It configures gin's shared validator.
func UseJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerJSONTagNames(v)
	}
}

func registerJSONTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// FormatValidationError turns binding errors into a readable message.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fieldErrorMessage(fe))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// BindError wraps a request binding failure as a validation error.
func BindError(err error) error {
	return fmt.Errorf("%w: %s", ErrValidation, FormatValidationError(err))
}

// ValidateStruct runs the binding tags of s outside a request, so callers
// that build requests by hand get the same checks as the HTTP path.
func ValidateStruct(s interface{}) error {
	if err := binding.Validator.ValidateStruct(s); err != nil {
		return BindError(err)
	}
	return nil
}

// ValidateEmail reports a validation error unless email is a well-formed address.
func ValidateEmail(email string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.Var(email, "email"); err != nil {
		return Validationf("email must be a valid email")
	}
	return nil
}
