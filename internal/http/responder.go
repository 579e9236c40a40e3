package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/example/bookcafe-client/internal/application"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

var errBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)

// decodeBody decodes raw into a T. Bodies that are empty or not JSON of the
// expected shape yield the zero T, the equivalent of an empty object.
func decodeBody[T any](raw []byte) T {
	var out T
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero
	}
	return out
}

// remoteFailure converts a non-2xx response into a RemoteError carrying the
// backend's message, when it sent one.
func remoteFailure(status int, raw []byte) error {
	body := decodeBody[errorResponse](raw)
	return &application.RemoteError{
		Status:  status,
		Message: strings.TrimSpace(body.Message),
		Err:     errors.New(http.StatusText(status)),
	}
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError maps validator failures to field messages users can read.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	vErr := &application.ValidationError{}
	for _, fe := range fieldErrs {
		vErr.Add(fe.Field(), validationMessage(fe))
	}
	return vErr
}

func validationMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return label + " must be a valid email address."
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return label + " is invalid."
}

func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return "Value"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
