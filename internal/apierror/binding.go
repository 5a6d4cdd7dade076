package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromBindingError converts a gin ShouldBind error into a problem.
// Validator failures become one FieldError per field; malformed bodies
// become a plain bad request.
func FromBindingError(requestID string, err error) *ProblemDetails {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fieldName(fe),
				Message: fieldMessage(fe),
				Code:    fe.Tag(),
			})
		}
		return NewValidationError(requestID, fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return NewValidationError(requestID, []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
			Code:    "invalid_type",
		}})
	}

	return NewBadRequestError(requestID, err.Error(), "Invalid request format")
}

// fieldName prefers the json/form name registered on the validator and
// falls back to the snake-cased struct field
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" || name == fe.StructField() {
		return toSnake(fe.StructField())
	}
	return name
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	case "activity_category":
		return "must be one of creative, physical, educational, emotional, social"
	case "insight_category":
		return "must be one of bonding, communication, development, behavior, emotions"
	case "age_range":
		return "must be one of 4-6, 7-8, 9-10, all"
	}
	return fmt.Sprintf("failed the %s check", fe.Tag())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
