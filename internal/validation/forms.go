package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// PubDateLayouts are the accepted pub_date inputs: the datetime-local widget
// format first, then a space-separated fallback.
var PubDateLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04"}

// PostForm is the create/edit post form.
type PostForm struct {
	Title       string `form:"title" validate:"notblank,max=256"`
	Text        string `form:"text" validate:"notblank"`
	PubDate     string `form:"pub_date" validate:"required,pubdate"`
	Category    uint   `form:"category" validate:"required"`
	Location    uint   `form:"location"`
	IsPublished bool   `form:"is_published"`
}

// CommentForm is the create/edit comment form.
type CommentForm struct {
	Text string `form:"text" validate:"notblank,max=10000"`
}

// ProfileForm edits the signed-in user's own account.
type ProfileForm struct {
	Username  string `form:"username" validate:"required,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
}

// RegistrationForm creates a new account.
type RegistrationForm struct {
	Username        string `form:"username" validate:"required,username"`
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password1" validate:"required,password"`
	PasswordConfirm string `form:"password2" validate:"required,eqfield=Password"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the HTML field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// required lets whitespace through
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "pubdate", func(fl validator.FieldLevel) bool {
		_, err := ParsePubDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return ValidateSlug(fl.Field().String()) == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// ParsePubDate parses a form pub_date as UTC.
func ParsePubDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range PubDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// FormatPubDate renders t for the datetime-local input.
func FormatPubDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(PubDateLayouts[0])
}

// Struct validates a form and returns field name to message, or nil when valid.
func Struct(form interface{}) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"__all__": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, dup := fields[fe.Field()]; dup {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	value, _ := fe.Value().(string)
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "pubdate":
		return "Enter a valid date and time (YYYY-MM-DD HH:MM)."
	case "username":
		return capitalize(ValidateUsername(value))
	case "password":
		return capitalize(ValidatePassword(value))
	case "slug":
		return capitalize(ValidateSlug(value))
	}
	return fmt.Sprintf("Invalid value (%s).", fe.Tag())
}

func capitalize(err error) string {
	if err == nil {
		return "Invalid value."
	}
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
