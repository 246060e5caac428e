package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterForm struct {
	FullName        string `json:"fullName" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone"`
	Password        string `json:"password" validate:"required,min=6,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// formValidate is shared by all forms, validator.Validate caches
// struct metadata and is safe for concurrent use.
var formValidate *validator.Validate

func init() {
	formValidate = validator.New(validator.WithRequiredStructEnabled())
	formValidate.RegisterTagNameFunc(jsonFieldName)

	mustRegister("phone", validatePhone)
	mustRegister("password", validatePasswordStrength)
}

func mustRegister(tag string, fn validator.Func) {
	if err := formValidate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// validatePasswordStrength requires an upper case letter,
// a lower case letter and a digit.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func (f LoginForm) Validate() error {
	return validateForm(f)
}

func (f RegisterForm) Validate() error {
	return validateForm(f)
}

func validateForm(form any) error {
	err := formValidate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = ruleMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "phone":
		return "must be 10 digits"
	case "password":
		return "must contain an upper case letter, a lower case letter and a digit"
	case "eqfield":
		return "passwords do not match"
	default:
		return "failed on " + fe.Tag()
	}
}
