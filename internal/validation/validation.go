// Package validation implements the registration form rules: CPF check
// digits and password strength.
package validation

import (
	"errors"
	"unicode"
)

var (
	ErrInvalidCPF   = errors.New("invalid cpf")
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain lower, upper, digit and special characters")
)

// ValidCPF verifies the two check digits of a Brazilian CPF. Non-digit
// characters (dots, dashes) are stripped before checking.
func ValidCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 11 {
		return false
	}

	allSame := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += digits[i] * (10 - i)
	}
	first := 11 - sum%11
	if first >= 10 {
		first = 0
	}
	if first != digits[9] {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += digits[i] * (11 - i)
	}
	second := 11 - sum%11
	if second >= 10 {
		second = 0
	}
	return second == digits[10]
}

// ValidPassword enforces the storefront's registration rules: at least 8
// characters with one lowercase, one uppercase, one digit and one special
// character.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
