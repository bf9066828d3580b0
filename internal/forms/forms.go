// Package forms defines the request payloads accepted by the write
// endpoints and turns validator failures into field error maps.
package forms

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PostForm is the payload for creating or editing a post. GroupID and
// Image are optional; an absent GroupID leaves the post ungrouped.
type PostForm struct {
	Text    string `json:"text" form:"text" validate:"required,max=10000"`
	GroupID *uint  `json:"group_id" form:"group_id" validate:"omitempty,gt=0"`
	Image   string `json:"image" form:"image" validate:"omitempty,max=255"`
}

// CommentForm is the payload for adding a comment to a post.
type CommentForm struct {
	Text string `json:"text" form:"text" validate:"required,max=2000"`
}

// SignupForm is the payload for account registration.
type SignupForm struct {
	Username string `json:"username" form:"username" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginForm is the payload for authentication.
type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Validate runs struct validation and returns a map of field name to
// human-readable message, or nil when the form is valid.
func Validate(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": "invalid payload"}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = message(fe)
	}
	return fields
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "gt":
		return "Ensure this value is greater than " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}
