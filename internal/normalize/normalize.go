// Package normalize canonicalizes free-text species and tag names and
// validates them before they enter the collections. Validation errors carry
// a human-readable reason; callers re-prompt until a value is accepted.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/squaremeter/squarelog/internal/errors"
)

var titleCaser = cases.Title(language.English)

// ToTitleCase converts text to Title Case for consistent naming: each
// whitespace-separated token gets its first letter capitalized and the rest
// lowercased, tokens rejoined with single spaces. Idempotent; empty input
// yields empty output.
func ToTitleCase(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		words[i] = titleCaser.String(word)
	}
	return strings.Join(words, " ")
}

// NormalizeName title-cases a name and reconciles it against the known-name
// set: if any existing name matches case-insensitively, that existing member
// is returned verbatim so prior canonical spelling wins. This keeps near
// duplicates like "ant" and "Ant" from fragmenting statistics.
func NormalizeName(name string, existing []string) string {
	titleName := ToTitleCase(strings.TrimSpace(name))

	for _, known := range existing {
		if strings.EqualFold(known, titleName) {
			return known
		}
	}

	return titleName
}

func validationError(reason string) error {
	return errors.Newf("%s", reason).
		Component("normalize").
		Category(errors.CategoryValidation).
		Build()
}

// CommonName validates and normalizes a common name. Returns the normalized
// value on success, or an error carrying the reason to show the user.
func CommonName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("common name is required")
	}

	if strings.Contains(name, "(") && strings.Contains(name, ")") {
		return "", validationError("common name should not contain scientific name in parentheses, enter them separately")
	}

	if len(name) < 2 {
		return "", validationError("common name too short")
	}

	return ToTitleCase(name), nil
}

// ScientificName validates and normalizes a scientific name. An empty name is
// allowed (species unidentified). Otherwise the name needs at least two
// whitespace-separated parts; the first is capitalized and the rest
// lowercased. A trailing bare "sp" is flagged as a likely typo for "sp.".
func ScientificName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	words := strings.Fields(name)
	if len(words) < 2 {
		return "", validationError("scientific name needs at least two parts (e.g. 'Genus species' or 'Genus sp.')")
	}

	normalized := titleCaser.String(words[0])
	for _, word := range words[1:] {
		normalized += " " + strings.ToLower(word)
	}

	if strings.HasSuffix(normalized, " sp") {
		return "", validationError("did you mean 'sp.' with a period? (e.g. 'Camponotus sp.')")
	}

	return normalized, nil
}

// Category validates a category against the configured closed set. The value
// is matched lower-cased and trimmed.
func Category(category string, valid []string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, v := range valid {
		if category == v {
			return category, nil
		}
	}
	return "", validationError("invalid category, choose from: " + strings.Join(valid, ", "))
}
