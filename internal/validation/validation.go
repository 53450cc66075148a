// Package validation checks product payloads and renders failures as readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/nullable"
)

// imageURLPattern accepts http(s) URLs whose path ends in an image extension, in any case.
var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)

// Validator wraps validator.Validate with the product rules registered.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// failures report the alias name, so every barcode error gets the same message
	v.RegisterAlias("barcode", "number,min=10,max=15")
	// registration errors only happen for empty tags or nil funcs
	_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		return imageURLPattern.MatchString(fl.Field().String())
	})
	// an absent or null value validates like an empty string so omitempty skips it
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		n, ok := field.Interface().(nullable.Nullable[string])
		if !ok {
			return ""
		}
		value, err := n.Get()
		if err != nil {
			return ""
		}
		return value
	}, nullable.Nullable[string]{})
	return &Validator{validate: v}
}

// Struct validates s and returns one message per failing field, in field order.
// It returns nil when s is valid.
func (v *Validator) Struct(s any) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, message(fieldErr))
	}
	return messages
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be a number greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be a number greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "barcode":
		return fmt.Sprintf("%s must contain between 10 and 15 digits", field)
	case "imageurl":
		return fmt.Sprintf("%s must be a valid URL ending in .jpg, .jpeg, .png, .gif or .webp", field)
	default:
		return fmt.Sprintf("%s failed on rule: %s", field, fe.Tag())
	}
}
