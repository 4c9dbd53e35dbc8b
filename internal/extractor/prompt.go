// Package extractor turns noisy candidate strings into canonical +256 numbers.
//
// Every extractor handles the whole batch in one call and returns only numbers that
// match the canonical +256[74]XXXXXXXX shape. Callers dedupe.
package extractor

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction sent to text-understanding services.
func BuildPrompt(candidates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have a list of potentially invalid Ugandan phone numbers: %s.\n", strings.Join(candidates, ", "))
	b.WriteString("Extract valid numbers and convert to +256XXXXXXXXX format (starts with 7 or 4 after +256).\n")
	b.WriteString("Return ONLY a comma-separated list of valid numbers, no explanation.")
	return b.String()
}
