// Package validation checks request DTOs and reports failures as
// apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so messages match the payload.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		// Compare decimals numerically in gt/gte/lte tags.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})

		validate = v
	})
	return validate
}

// Struct validates s and returns an apperr validation error listing every
// failing field, or nil.
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Internal(err)
	}
	return apperr.Validation(FieldErrors(ve))
}

// FieldErrors maps validator errors to field -> readable message. Nested
// fields keep their dotted path without the top-level struct name.
func FieldErrors(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		out[field] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return e.Tag() + " validation failed"
	}
}
