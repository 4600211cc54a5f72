package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs struct tag validation and reports the first failure as
// a validation error keyed by the JSON field name.
func ValidateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return Validation(describeField(fieldErrs[0]))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters.", field, fe.Param())
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s.", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}
