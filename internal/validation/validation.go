// Package validation wraps go-playground/validator with human-readable,
// field-level messages. Every violation is reported, not just the first, so
// clients can display all errors at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// Check validates a struct and returns the complete list of violation
// messages. An empty slice means the value is valid.
func Check(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request body"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, message(fe))
	}
	return messages
}

// fieldNames maps struct field names to the names users see in messages.
var fieldNames = map[string]string{
	"Username":    "Username",
	"Email":       "Email",
	"Password":    "Password",
	"Bio":         "Bio",
	"Avatar":      "Avatar",
	"Title":       "Title",
	"Description": "Description",
	"ImageURL":    "Image URL",
	"Category":    "Category",
	"Tags":        "Tags",
}

func message(fe validator.FieldError) string {
	name := fieldNames[fe.StructField()]
	if name == "" {
		name = fe.StructField()
	}

	switch fe.Tag() {
	case "required":
		if fe.StructField() == "Title" {
			return "Photo title is required"
		}
		return name + " is required"
	case "email":
		return "Please provide a valid email"
	case "url", "uri":
		return name + " must be a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Cannot have more than %s %s", fe.Param(), strings.ToLower(name))
		}
		return fmt.Sprintf("%s cannot exceed %s characters", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
