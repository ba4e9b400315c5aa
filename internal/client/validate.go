package client

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"beecok/internal/model"
)

const (
	minPasswordLength = 6
	maxSpaceName      = 100
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is the registration form, including the confirmation field the API never sees.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("email", "Please fill in all fields")
	}
	return nil
}

func ValidateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" ||
		in.Password == "" || in.ConfirmPassword == "" {
		return invalid("username", "Please fill in all fields")
	}
	if !emailShape.MatchString(strings.TrimSpace(in.Email)) {
		return invalid("email", "Please enter a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	if in.Password != in.ConfirmPassword {
		return invalid("confirm_password", "Passwords do not match")
	}
	return nil
}

func ValidateSpace(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return invalid("name", "Space name is required")
	}
	if n > maxSpaceName {
		return invalid("name", fmt.Sprintf("Space name must be at most %d characters", maxSpaceName))
	}
	return nil
}

// ValidateUpload checks the extension allow-list and the size limit before any bytes are sent.
func ValidateUpload(filename string, size int64) error {
	if _, ok := model.FileType(filename); !ok {
		return invalid("file", "Unsupported file type. Supported types: "+strings.Join(model.SupportedExtensions, ", "))
	}
	if size > model.MaxFileSize {
		return invalid("file", fmt.Sprintf("File too large. Maximum size: %dMB", model.MaxFileSize/(1024*1024)))
	}
	return nil
}

// MaxResultsOptions are the result-count bounds offered to the user.
var MaxResultsOptions = []int{5, 10, 20, 30}

// DefaultMaxResults is used when no bound is configured.
const DefaultMaxResults = 10

func ValidateMaxResults(n int) error {
	for _, o := range MaxResultsOptions {
		if o == n {
			return nil
		}
	}
	return invalid("max_results", fmt.Sprintf("max results must be one of %v", MaxResultsOptions))
}
