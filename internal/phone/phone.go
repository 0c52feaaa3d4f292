// Package phone normalizes Zambian mobile numbers and maps prefixes to
// mobile money providers.
package phone

import (
	"fmt"
	"strings"
)

// CountryCode is the Zambian international dialing prefix.
const CountryCode = "260"

// LocalNumberLength is the length of a subscriber number once the
// country code or trunk zero has been stripped.
const LocalNumberLength = 9

// providerPrefixes lists each provider's declared 3-digit prefixes in
// detection precedence order. The sets overlap (097 is claimed by both
// airtel and mtn); DetectProvider resolves overlaps by first match, and
// DetectProviders exposes every claimant so callers can ask the user.
var providerPrefixes = []struct {
	name     string
	prefixes []string
}{
	{"airtel", []string{"097", "096", "095"}},
	{"zamtel", []string{"095", "094"}},
	{"mtn", []string{"096", "097", "098"}},
}

// Clean strips all non-digit characters and reduces the number to the
// 9-digit local subscriber form: a leading country code or a single
// trunk zero is removed. The result is returned as-is even when it is
// not 9 digits; callers decide whether that is an error.
func Clean(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, CountryCode) {
		return digits[len(CountryCode):]
	}
	if strings.HasPrefix(digits, "0") {
		return digits[1:]
	}
	return digits
}

// IsValid reports whether the number cleans down to a 9-digit local
// subscriber number.
func IsValid(raw string) bool {
	return len(Clean(raw)) == LocalNumberLength
}

// Prefix returns the trunk-form network prefix ("09X") of a number, or
// "" when the number is not a valid local number. Clean strips the
// trunk zero, so it is restored here to match the declared prefix
// tables.
func Prefix(raw string) string {
	clean := Clean(raw)
	if len(clean) != LocalNumberLength {
		return ""
	}
	return "0" + clean[:2]
}

// DetectProvider returns the provider name whose declared prefix set
// first matches the number, in the fixed precedence order of the
// directory, or "" when the number is invalid or unclaimed.
func DetectProvider(raw string) string {
	prefix := Prefix(raw)
	if prefix == "" {
		return ""
	}
	for _, p := range providerPrefixes {
		for _, candidate := range p.prefixes {
			if candidate == prefix {
				return p.name
			}
		}
	}
	return ""
}

// DetectProviders returns every provider claiming the number's prefix,
// in precedence order. More than one entry means the prefix is ambiguous
// and the caller should have the user pick explicitly.
func DetectProviders(raw string) []string {
	prefix := Prefix(raw)
	if prefix == "" {
		return nil
	}
	var names []string
	for _, p := range providerPrefixes {
		for _, candidate := range p.prefixes {
			if candidate == prefix {
				names = append(names, p.name)
				break
			}
		}
	}
	return names
}

// Format renders a valid number as "+260 XX XXX XXX" for display.
// Invalid numbers are returned unchanged.
func Format(raw string) string {
	clean := Clean(raw)
	if len(clean) != LocalNumberLength {
		return raw
	}
	return fmt.Sprintf("+%s %s %s %s", CountryCode, clean[:2], clean[2:5], clean[5:])
}
