// Package validate collects field-level failures before returning a single
// apperr validation error. A Validator is not safe for concurrent use.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/newsdesk/newsdesk/internal/apperr"
)

type Validator struct {
	fields map[string]string
}

func New() *Validator { return &Validator{} }

func (v *Validator) add(field, msg string) {
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	// keep the first failure per field
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "required")
	}
	return v
}

func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("maximum %d characters", max))
	}
	return v
}

func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("minimum %d characters", min))
	}
	return v
}

func (v *Validator) Email(field, value string) *Validator {
	if !govalidator.IsEmail(value) {
		v.add(field, "must be a valid email address")
	}
	return v
}

// URL accepts empty values; combine with Required when the field is mandatory.
func (v *Validator) URL(field, value string) *Validator {
	if value != "" && !govalidator.IsRequestURL(value) {
		v.add(field, "must be a valid absolute URL")
	}
	return v
}

func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Check adds msg for field when ok is false.
func (v *Validator) Check(ok bool, field, msg string) *Validator {
	if !ok {
		v.add(field, msg)
	}
	return v
}

func (v *Validator) Valid() bool { return len(v.fields) == 0 }

// Err returns nil or an *apperr.Error listing every failing field.
func (v *Validator) Err(msg string) error {
	if v.Valid() {
		return nil
	}
	return apperr.Validation(msg, v.fields)
}
