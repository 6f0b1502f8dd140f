// Package isbn validates ISBN-10/ISBN-13 identifiers and converts between them.
// Validation is by shape only; the bibliographic sources never reject on checksum.
package isbn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned by Validate for input that is neither an ISBN-13 nor an ISBN-10.
var ErrInvalid = errors.New("invalid ISBN")

// Normalize trims the input and removes hyphens and embedded spaces.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

// Validate normalizes s and reports ErrInvalid when it matches neither shape.
func Validate(s string) (string, error) {
	norm := Normalize(s)
	if IsValid13(norm) || IsValid10(norm) {
		return norm, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalid, s)
}

// IsValid13 reports whether s is exactly 13 decimal digits.
func IsValid13(s string) bool {
	return len(s) == 13 && allDigits(s)
}

// IsValid10 reports whether s is 9 decimal digits followed by a digit or X.
func IsValid10(s string) bool {
	if len(s) != 10 || !allDigits(s[:9]) {
		return false
	}
	last := s[9]
	return isDigit(last) || last == 'X' || last == 'x'
}

// To10 converts a 978-prefixed ISBN-13 to its ISBN-10 form. Any other input yields "".
func To10(isbn13 string) string {
	if len(isbn13) != 13 || !strings.HasPrefix(isbn13, "978") {
		return ""
	}
	core := isbn13[3:12]
	if !allDigits(core) {
		return ""
	}
	return core + checkDigit10(core)
}

// To13 converts a valid ISBN-10 to the 978-prefixed ISBN-13. Any other input yields "".
func To13(isbn10 string) string {
	if !IsValid10(isbn10) {
		return ""
	}
	body := "978" + isbn10[:9]
	sum := 0
	for i := 0; i < len(body); i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return fmt.Sprintf("%s%d", body, (10-sum%10)%10)
}

// checkDigit10 computes the ISBN-10 check character for a 9-digit core.
func checkDigit10(core string) string {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(core[i]-'0') * (10 - i)
	}
	switch check := 11 - sum%11; check {
	case 10:
		return "X"
	case 11:
		return "0"
	default:
		return fmt.Sprintf("%d", check)
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
