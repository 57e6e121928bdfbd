package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance to avoid creating multiple instances
var validate *validator.Validate

var reviewStatuses = map[string]bool{
	"pending":  true,
	"approved": true,
	"flagged":  true,
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json names ("full_name") instead of Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("review_status", func(fl validator.FieldLevel) bool {
		return reviewStatuses[fl.Field().String()]
	})
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

// Describe turns validation errors into a short "field: rule" list for API responses.
// Errors that are not validation errors are returned as is.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Field()+": "+rule)
	}
	return strings.Join(parts, "; ")
}
