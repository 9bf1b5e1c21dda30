package usecase

import (
	"regexp"
	"strings"

	"github.com/pricecompare/backend/internal/domain"
)

const (
	// MinQueryLength is the shortest accepted query after sanitization
	MinQueryLength = 2
	// MaxQueryLength is the cut-off applied during sanitization
	MaxQueryLength = 100
)

// Matches anything that is not a word character, whitespace or a hyphen
var disallowedQueryChars = regexp.MustCompile(`[^\w\s-]`)

// Sanitize strips disallowed characters, cuts the query to MaxQueryLength
// characters and trims surrounding whitespace.
func Sanitize(raw string) string {
	cleaned := disallowedQueryChars.ReplaceAllString(raw, "")
	if runes := []rune(cleaned); len(runes) > MaxQueryLength {
		cleaned = string(runes[:MaxQueryLength])
	}
	return strings.TrimSpace(cleaned)
}

// ValidateQuery sanitizes raw and rejects results shorter than MinQueryLength
func ValidateQuery(raw string) (string, error) {
	query := Sanitize(raw)
	if len([]rune(query)) < MinQueryLength {
		return "", domain.ErrValidation
	}
	return query, nil
}
