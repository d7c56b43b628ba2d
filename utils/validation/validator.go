package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// EmailRegex is a simple email validation regex
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// RollNumberRegex matches seat roll numbers like "GGIT-CSE-001"
	RollNumberRegex = regexp.MustCompile(`^[A-Z0-9]+-[A-Z0-9]+-\d{1,5}$`)

	// AicteIDRegex matches externally issued AICTE internship ids
	// (uppercase alphanumeric with optional separators, 6-40 chars)
	AicteIDRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9/\-]{4,38}[A-Z0-9]$`)
)

// AcceptedRepoPrefixes are the URL prefixes accepted for internship
// repository submissions
var AcceptedRepoPrefixes = []string{
	"https://github.com/",
	"https://gitlab.com/",
}

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("%s is required", e.Field())
			case "email":
				errors[field] = "Invalid email format"
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
			case "max":
				errors[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
			default:
				errors[field] = fmt.Sprintf("%s is invalid", e.Field())
			}
		}
	}

	return errors
}

// ValidateEmail checks if an email is valid
func ValidateEmail(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	return EmailRegex.MatchString(email)
}

// ValidateRollNumber checks if a roll number has the expected seat format
func ValidateRollNumber(rollNumber string) bool {
	return RollNumberRegex.MatchString(rollNumber)
}

// ValidateAicteID checks the shape of an externally issued AICTE internship id
func ValidateAicteID(id string) bool {
	return AicteIDRegex.MatchString(strings.ToUpper(id))
}

// ValidateRepoURL checks a submitted repository URL against the accepted
// scheme/host prefixes
func ValidateRepoURL(url string) bool {
	for _, prefix := range AcceptedRepoPrefixes {
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return true
		}
	}
	return false
}

// SanitizeString trims whitespace and removes control characters
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}
