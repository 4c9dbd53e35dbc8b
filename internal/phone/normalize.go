package phone

import (
	"regexp"
	"strings"
)

const (
	CountryCode = "+256"

	ReasonEmpty   = "Phone number cannot be empty"
	ReasonInvalid = "Invalid phone number format. Use +2567XXXXXXXX, 07XXXXXXXX, or 7XXXXXXXX"
)

var (
	canonicalPattern = regexp.MustCompile(`^\+256[74]\d{8}$`)
	candidatePattern = regexp.MustCompile(`\+256\d{9}`)
)

// ValidationError reports why a single input was rejected.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Normalize maps raw user input to a canonical +256 mobile number.
//
// Accepted shapes, checked in order: +2567XXXXXXXX, 2567XXXXXXXX, 07XXXXXXXX and
// 7XXXXXXXX (4 is accepted wherever 7 is).
func Normalize(raw string) (string, error) {
	cleaned := clean(raw)
	if cleaned == "" {
		return "", &ValidationError{Input: raw, Reason: ReasonEmpty}
	}

	switch {
	case strings.HasPrefix(cleaned, "+256") && len(cleaned) == 13 && isCarrierDigit(cleaned[4]):
		return cleaned, nil
	case strings.HasPrefix(cleaned, "256") && len(cleaned) == 12 && isCarrierDigit(cleaned[3]):
		return "+" + cleaned, nil
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10 && isCarrierDigit(cleaned[1]):
		return CountryCode + cleaned[1:], nil
	case len(cleaned) == 9 && isCarrierDigit(cleaned[0]):
		return CountryCode + cleaned, nil
	}

	return "", &ValidationError{Input: raw, Reason: ReasonInvalid}
}

// clean keeps digits and a '+' that comes before any digit.
func clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '+' && b.Len() == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isCarrierDigit(c byte) bool {
	return c == '7' || c == '4'
}

// IsCanonical reports whether s is already in +256[74]XXXXXXXX form.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

// FindCanonical pulls every canonical number out of free text, in order of appearance.
// Matches of +256 followed by nine digits whose carrier digit is not 7 or 4 are dropped.
func FindCanonical(text string) []string {
	matches := candidatePattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if IsCanonical(m) {
			out = append(out, m)
		}
	}
	return out
}

// HasDigit reports whether s contains at least one ASCII digit.
func HasDigit(s string) bool {
	return strings.IndexAny(s, "0123456789") >= 0
}
