package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// FieldErrors flattens validator failures into a field → message map for
// the error response body. Non-validator errors produce an empty map.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fields
	}

	for _, fe := range validationErrors {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("%s is required", name)
		case "email":
			fields[name] = fmt.Sprintf("%s must be a valid email address", name)
		case "min":
			fields[name] = fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		case "max":
			fields[name] = fmt.Sprintf("%s must be at most %s", name, fe.Param())
		case "oneof":
			fields[name] = fmt.Sprintf("%s must be one of: %s", name, fe.Param())
		case "url":
			fields[name] = fmt.Sprintf("%s must be a valid URL", name)
		default:
			fields[name] = fmt.Sprintf("%s is invalid", name)
		}
	}

	return fields
}
