package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Dan9191/auth-service/internal/apperror"
	"github.com/Dan9191/auth-service/internal/models"
)

const (
	msgFieldsRequired      = "All fields are required"
	msgInvalidEmail        = "Invalid email format"
	msgInvalidRole         = "Invalid role"
	msgPasswordTooLong     = "Password must be at most 72 bytes"
	msgCredentialsRequired = "Username and password are required"
)

// local@domain.tld, printable ASCII only, no whitespace, a single '@'
var emailPattern = regexp.MustCompile(`^[!-?A-~]+@[!-?A-~]+\.[!-?A-~]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register emailshape validation: %v", err))
	}
	return v
}

func normalizeRegister(in models.RegisterInput) models.RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = models.Role(strings.TrimSpace(string(in.Role)))
	return in
}

func validateRegister(in models.RegisterInput) error {
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperror.NewInternalError("failed to validate input", err)
		}
		// Missing fields win over a malformed email
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return apperror.NewValidationError(msgFieldsRequired)
			}
		}
		return apperror.NewValidationError(msgInvalidEmail)
	}
	return nil
}

// resolveRole applies the default role and only lets a caller self-assign a plain user
func resolveRole(role models.Role) (models.Role, error) {
	switch role {
	case "", models.RoleUser:
		return models.RoleUser, nil
	default:
		return "", apperror.NewValidationError(msgInvalidRole)
	}
}

func validateLogin(in models.LoginInput) error {
	if err := validate.Struct(in); err != nil {
		return apperror.NewValidationError(msgCredentialsRequired)
	}
	return nil
}
