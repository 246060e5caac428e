package domain_test

import (
	"errors"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegisterForm() domain.RegisterForm {
	return domain.RegisterForm{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Phone:           "5551234567",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
	}
}

func TestLoginFormValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		f := domain.LoginForm{Email: "ada@example.com", Password: "secret"}
		assert.NoError(t, f.Validate())
	})

	t.Run("Invalid", func(t *testing.T) {
		f := domain.LoginForm{Email: "not-an-email", Password: "123"}
		err := f.Validate()
		require.ErrorIs(t, err, domain.ErrInvalidForm)

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "password")
	})
}

func TestRegisterFormValidate(t *testing.T) {
	assert.NoError(t, validRegisterForm().Validate())

	tests := []struct {
		name  string
		edit  func(*domain.RegisterForm)
		field string
	}{
		{"ShortName", func(f *domain.RegisterForm) { f.FullName = "Al" }, "fullName"},
		{"LongName", func(f *domain.RegisterForm) {
			f.FullName = "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijX"
		}, "fullName"},
		{"BadEmail", func(f *domain.RegisterForm) { f.Email = "ada" }, "email"},
		{"ShortPhone", func(f *domain.RegisterForm) { f.Phone = "555123" }, "phone"},
		{"LetterPhone", func(f *domain.RegisterForm) { f.Phone = "555123456a" }, "phone"},
		{"NoUpper", func(f *domain.RegisterForm) {
			f.Password, f.ConfirmPassword = "secret1", "secret1"
		}, "password"},
		{"NoDigit", func(f *domain.RegisterForm) {
			f.Password, f.ConfirmPassword = "Secrets", "Secrets"
		}, "password"},
		{"Mismatch", func(f *domain.RegisterForm) { f.ConfirmPassword = "Secret2" }, "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegisterForm()
			tt.edit(&f)

			var verr *domain.ValidationError
			require.True(t, errors.As(f.Validate(), &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}
