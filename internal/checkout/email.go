package checkout

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

// normalizeEmail returns the trimmed address and whether it looks deliverable.
func normalizeEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", false
	}
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return email, false
	}
	return email, true
}
