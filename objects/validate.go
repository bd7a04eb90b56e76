package objects

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	serverError "github.com/supakorn-kn/go-book-store/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {

	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Validate checks item against its validate tags. Failed required fields are reported as
// RequiredFieldMissingError, any other failure as FieldInvalidError.
func Validate(item any) error {

	err := validate.Struct(item)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var missing, invalid []string
	for _, fieldErr := range validationErrors {

		if fieldErr.Tag() == "required" {
			missing = append(missing, fieldErr.Field())
			continue
		}

		invalid = append(invalid, describeFieldError(fieldErr))
	}

	if len(missing) > 0 {
		return serverError.RequiredFieldMissingError.New(strings.Join(missing, ", "))
	}

	return serverError.FieldInvalidError.New(strings.Join(invalid, "; "))
}

func describeFieldError(fieldErr validator.FieldError) string {

	switch fieldErr.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fieldErr.Field(), fieldErr.Param())

	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fieldErr.Field(), fieldErr.Param())

	default:
		return fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag())
	}
}
