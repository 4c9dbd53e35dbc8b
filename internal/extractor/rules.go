package extractor

import (
	"context"

	"lucosms-backend/internal/phone"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "UG"

// RuleExtractor cleans the batch locally. Each candidate goes through phone.Normalize
// first; when that rejects it, libphonenumber gets a try with Uganda as the default
// region, and its E.164 output is kept only if it is canonical.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

func (RuleExtractor) ExtractCandidateNumbers(ctx context.Context, candidates []string) ([]string, error) {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n, ok := normalizeLoose(c); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func normalizeLoose(raw string) (string, bool) {
	if n, err := phone.Normalize(raw); err == nil {
		return n, true
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	n := phonenumbers.Format(num, phonenumbers.E164)
	return n, phone.IsCanonical(n)
}
