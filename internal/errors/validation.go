package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// JSONTagName makes validator report fields by their JSON name. Register it
// with validator.Validate.RegisterTagNameFunc.
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// FromBindingError converts a gin binding error into field messages.
func FromBindingError(err error) FieldErrors {
	fields := FieldErrors{}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		for _, fe := range verrs {
			fields.Add(fe.Field(), messageFor(fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		fields.Add(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		return fields
	}

	if stderrors.Is(err, io.EOF) {
		fields.Add(NonFieldErrorsKey, "No data provided.")
		return fields
	}

	fields.Add(NonFieldErrorsKey, "Invalid request body.")
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "uuid", "uuid4":
		return "Must be a valid UUID."
	default:
		return "Invalid value."
	}
}
