package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
	nonDigitsPattern = regexp.MustCompile(`\D`)
	upperPattern     = regexp.MustCompile(`[A-Z]`)
	lowerPattern     = regexp.MustCompile(`[a-z]`)
	digitPattern     = regexp.MustCompile(`\d`)
	specialPattern   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Password complaints, in the order they are checked.
const (
	PasswordTooShort  = "Password must be at least 8 characters long"
	PasswordNoUpper   = "Password must contain at least one uppercase letter"
	PasswordNoLower   = "Password must contain at least one lowercase letter"
	PasswordNoDigit   = "Password must contain at least one number"
	PasswordNoSpecial = "Password must contain at least one special character"
)

// PasswordCheck is the outcome of a password strength check.
type PasswordCheck struct {
	Valid  bool
	Errors []string
}

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	return nonDigitsPattern.ReplaceAllString(phone, "")
}

// IsValidPhone accepts 10-digit mobile numbers starting with 6-9 once
// formatting characters are removed.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// IsValidPassword checks every strength rule and reports all violations.
func IsValidPassword(password string) PasswordCheck {
	var errs []string
	if utf8.RuneCountInString(password) < 8 {
		errs = append(errs, PasswordTooShort)
	}
	if !upperPattern.MatchString(password) {
		errs = append(errs, PasswordNoUpper)
	}
	if !lowerPattern.MatchString(password) {
		errs = append(errs, PasswordNoLower)
	}
	if !digitPattern.MatchString(password) {
		errs = append(errs, PasswordNoDigit)
	}
	if !specialPattern.MatchString(password) {
		errs = append(errs, PasswordNoSpecial)
	}
	return PasswordCheck{Valid: len(errs) == 0, Errors: errs}
}

// IsOneOf reports whether v is in set.
func IsOneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// NormalizeFacilityType maps plural aliases ("hospitals") to their type and
// defaults an empty value to all.
func NormalizeFacilityType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case "":
		return FacilityAll
	case "hospitals":
		return FacilityHospital
	case "labs":
		return FacilityLab
	case "pharmacies":
		return FacilityPharmacy
	}
	return t
}
