// Package forms validates the request bodies of the web forms and turns
// failures into VALIDATION_ERROR application errors carrying the message the
// user sees.
package forms

import (
	stderrors "errors"
	"reflect"
	"strings"

	"resumegenius/internal/errors"

	"github.com/go-playground/validator/v10"
)

// rule maps a failed validation tag on a struct field to a user message.
// Rules are listed in the order the checks should be reported.
type rule struct {
	field   string
	tag     string
	message string
}

// Form is a validatable request body.
type Form interface {
	rules() []rule
}

// normalizer is implemented by forms that clean their input before validation.
type normalizer interface {
	normalize()
}

// Validator validates forms.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks form. The returned error is a VALIDATION_ERROR whose
// message is the highest-priority failure and whose "fields" context maps
// each failing json field to its message.
func (v *Validator) Validate(form Form) error {
	if n, ok := form.(normalizer); ok {
		n.normalize()
	}

	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid form", err)
	}

	rules := form.rules()
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(rules, fe)
	}

	return errors.NewValidationError(errors.ErrCodeValidation, firstMessage(rules, verrs), nil).
		WithContext("fields", fields)
}

func messageFor(rules []rule, fe validator.FieldError) string {
	for _, r := range rules {
		if r.field == fe.StructField() && (r.tag == fe.Tag() || r.tag == "*") {
			return r.message
		}
	}
	return fe.Field() + " is invalid"
}

func firstMessage(rules []rule, verrs validator.ValidationErrors) string {
	for _, r := range rules {
		for _, fe := range verrs {
			if r.field == fe.StructField() && (r.tag == fe.Tag() || r.tag == "*") {
				return r.message
			}
		}
	}
	return messageFor(rules, verrs[0])
}
