package utils

import (
	"regexp"
	"strings"
	"time"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips formatting and the optional +91 country code,
// leaving the bare 10-digit mobile number for the backend.
func NormalizePhoneNumber(phoneNumber string) string {
	digits := nonDigit.ReplaceAllString(phoneNumber, "")
	if strings.HasPrefix(digits, "91") && len(digits) == 12 {
		digits = digits[2:]
	}
	digits = strings.TrimLeft(digits, "0")
	return digits
}

// ValidatePhoneNumber checks for a valid Indian mobile number: 10 digits
// starting with 6, 7, 8 or 9, with an optional +91 prefix.
func ValidatePhoneNumber(phoneNumber string) bool {
	digits := NormalizePhoneNumber(phoneNumber)
	if len(digits) != 10 {
		return false
	}
	switch digits[0] {
	case '6', '7', '8', '9':
		return true
	}
	return false
}

// DisplayPhoneNumber formats a normalized number as +91 XXXXX XXXXX.
func DisplayPhoneNumber(phoneNumber string) string {
	digits := NormalizePhoneNumber(phoneNumber)
	if len(digits) != 10 {
		return phoneNumber
	}
	return "+91 " + digits[:5] + " " + digits[5:]
}

// verhoeffD, verhoeffP are the dihedral group tables used by the Aadhaar
// check digit.
var verhoeffD = [10][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

var verhoeffP = [8][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

// ValidateAadhaar checks a 12-digit Aadhaar number including its Verhoeff
// check digit. Aadhaar numbers never start with 0 or 1.
func ValidateAadhaar(aadhaar string) bool {
	digits := nonDigit.ReplaceAllString(aadhaar, "")
	if len(digits) != 12 {
		return false
	}
	if digits[0] == '0' || digits[0] == '1' {
		return false
	}

	c := 0
	for i := 0; i < 12; i++ {
		d := int(digits[11-i] - '0')
		c = verhoeffD[c][verhoeffP[i%8][d]]
	}
	return c == 0
}

// ValidateAge reports whether the date of birth (YYYY-MM-DD) is at least
// minYears in the past.
func ValidateAge(dateOfBirth string, minYears int) bool {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return false
	}
	cutoff := time.Now().AddDate(-minYears, 0, 0)
	return !dob.After(cutoff)
}
