// Package validation wraps go-playground/validator with the custom
// tags used by the booking API and maps the first failure to a
// client-friendly message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

var global = New()

// New builds a validator with the API's custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("future", validateFuture)
	_ = v.RegisterValidation("positive", validatePositive)
	return v
}

func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.UTC().After(time.Now().UTC())
}

func validatePositive(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	default:
		return false
	}
}

// Validate checks struct tags on v and returns a single descriptive
// error for the first violation, or nil.
func Validate(v any) error {
	return firstViolation(global.Struct(v))
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return err
	}
	ve := vErrs[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", ve.Param())
	case "email":
		msg = "must be a valid email address"
	case "future":
		msg = "must be in the future"
	case "positive":
		msg = "must be a positive integer"
	default:
		msg = "is invalid"
	}
	return fmt.Errorf("%s %s", ve.Field(), msg)
}
