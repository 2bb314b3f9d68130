package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxTextLength bounds todo and comment text, counted in characters.
const MaxTextLength = 500

// MaxNameLength bounds user names.
const MaxNameLength = 64

type todoInput struct {
	Text string `validate:"required,max=500"`
}

type nameInput struct {
	Name string `validate:"required,max=64"`
}

type commentInput struct {
	TodoID   string `validate:"required"`
	UserName string `validate:"required"`
	Comment  string `validate:"required,max=500"`
}

// check runs struct validation and reports the first failing field.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return invalid("%s must not be empty", field)
		case "max":
			return invalid("%s must be at most %s characters", field, fe.Param())
		}
		return invalid("%s failed %s", field, fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
