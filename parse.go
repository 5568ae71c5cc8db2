package filepulse

import (
	"strconv"
	"strings"
)

// maxLongDigits is the number of digits of math.MaxInt64.
const maxLongDigits = 19

// Parse detects the narrowest type for a raw string. Detection is attempted
// in this order:
//
//   - an integer literal of at most 19 digits that fits in an int64 and is
//     written canonically is a LONG;
//   - any other integer-looking literal stays a STRING, so that text such as
//     "007", "+5", "-0" or values beyond the int64 range read back unchanged;
//   - a decimal literal is a DOUBLE;
//   - "true" or "false" (any case) is a BOOLEAN;
//   - everything else is a STRING.
func Parse(text string) TypedValue {
	if _, ok := integerLiteral(text); ok {
		if n, ok := parseLong(text); ok && strconv.FormatInt(n, 10) == text {
			return Long(n)
		}
		return String(text)
	}
	if decimalLiteral(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return Double(f)
		}
		return String(text)
	}
	if strings.EqualFold(text, "true") {
		return Bool(true)
	}
	if strings.EqualFold(text, "false") {
		return Bool(false)
	}
	return String(text)
}

// parseLong parses s as a LONG if it is an integer literal of at most 19
// digits within the int64 range.
func parseLong(s string) (int64, bool) {
	digits, ok := integerLiteral(s)
	if !ok || len(digits) > maxLongDigits {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// integerLiteral matches [+-]?[0-9]+ and returns the digits.
func integerLiteral(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	digits := s
	if s[0] == '+' || s[0] == '-' {
		digits = s[1:]
	}
	if digits == "" {
		return "", false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	return digits, true
}

// decimalLiteral matches [+-]?(d+(.d*)?|.d+)([eE][+-]?d+)?
func decimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
