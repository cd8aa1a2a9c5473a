package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct checks `validate` tags on a request payload.
func ValidateStruct(v interface{}) error {
    return validate.Struct(v)
}
