package utils

import "strings"

// NormalizePhone strips a phone number down to its digits and removes the
// leading country digit for 11-digit numbers written as +7... or 8...
// Examples:
//
//	"+7 (999) 123-45-67" -> "9991234567"
//	"8 999 123 45 67"    -> "9991234567"
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == 11 && (digits[0] == '7' || digits[0] == '8') {
		return digits[1:]
	}
	return digits
}

// NormalizePhoneE164 returns the storage form +7XXXXXXXXXX.
func NormalizePhoneE164(phone string) string {
	digits := NormalizePhone(phone)
	if digits == "" {
		return ""
	}
	return "+7" + digits
}

// IsValidPhone accepts numbers that normalize to exactly 10 digits with a
// plausible first digit (9 for mobile, 3-8 for landlines).
func IsValidPhone(phone string) bool {
	digits := NormalizePhone(phone)
	if len(digits) != 10 {
		return false
	}
	return digits[0] >= '3' && digits[0] <= '9'
}

// PhoneLastDigits extracts the trailing digits used by low-privilege search.
func PhoneLastDigits(phone string, count int) string {
	digits := NormalizePhone(phone)
	if len(digits) <= count {
		return digits
	}
	return digits[len(digits)-count:]
}

// MaskPhone hides everything but the operator code: +7 (XXX) XXX-**-**
func MaskPhone(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) != 10 {
		return "***"
	}
	return "+7 (" + digits[0:3] + ") " + digits[3:6] + "-**-**"
}
