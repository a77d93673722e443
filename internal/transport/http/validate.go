package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

// requestValidator checks decoded request bodies and reports errors per JSON field.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return &requestValidator{validate: v}
}

// Fields returns nil when body is valid.
func (rv *requestValidator) Fields(body any) map[string]string {
	err := rv.validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color"
	case "dive":
		return "contains an invalid value"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// decode reads a JSON body into dst and validates it. It writes the error response itself
// and reports whether the handler should continue.
func (rv *requestValidator) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return rv.decodeBody(w, r, dst, false)
}

// decodeOptional is decode for endpoints where an empty body means the zero request.
func (rv *requestValidator) decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	return rv.decodeBody(w, r, dst, true)
}

func (rv *requestValidator) decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		failure(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if fields := rv.Fields(dst); fields != nil {
		validationFailure(w, fields)
		return false
	}
	return true
}
