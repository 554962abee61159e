// Package validator runs struct-tag validation for request payloads
// that need more than gin's binding tags, such as approval terms.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks v's `validate` tags and returns a field→failed-tag
// map suitable for the error envelope's details, or nil when valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
