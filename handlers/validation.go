package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleetbackend/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags of v; failures wrap core.ErrValidation
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, describeFieldError(fieldErr))
	}
	return fmt.Errorf("%w: %s", core.ErrValidation, strings.Join(messages, "; "))
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag())
	}
}

// decodeAndValidate converts an arbitrary decoded value (a socket payload or a raw body) into target
func decodeAndValidate(data any, target any) error {
	var raw []byte
	switch value := data.(type) {
	case []byte:
		raw = value
	case string:
		raw = []byte(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: payload is not valid JSON: %v", core.ErrValidation, err)
		}
		raw = encoded
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: payload is not valid JSON: %v", core.ErrValidation, err)
	}
	return validateStruct(target)
}
