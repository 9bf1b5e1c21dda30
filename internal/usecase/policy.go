package usecase

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed restricted_terms.yaml
var defaultRestrictedTerms []byte

// policyDocument is the on-disk shape of the restricted term list
type policyDocument struct {
	Message string              `yaml:"message"`
	Groups  map[string][]string `yaml:"groups"`
}

// PolicyFilter classifies queries against a static list of restricted terms
type PolicyFilter struct {
	terms   []string
	message string
}

// NewPolicyFilter parses a YAML term list
func NewPolicyFilter(doc []byte) (*PolicyFilter, error) {
	var parsed policyDocument
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse restricted terms: %w", err)
	}

	// Group order is irrelevant for matching; sort for stable iteration
	groups := make([]string, 0, len(parsed.Groups))
	for name := range parsed.Groups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	var terms []string
	for _, name := range groups {
		for _, term := range parsed.Groups[name] {
			if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
				terms = append(terms, term)
			}
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("restricted terms list is empty")
	}

	return &PolicyFilter{terms: terms, message: parsed.Message}, nil
}

// DefaultPolicyFilter returns the filter built from the embedded term list
func DefaultPolicyFilter() *PolicyFilter {
	filter, err := NewPolicyFilter(defaultRestrictedTerms)
	if err != nil {
		panic(err)
	}
	return filter
}

// IsRestricted reports whether the lower-cased, trimmed query contains any
// restricted term as a substring
func (p *PolicyFilter) IsRestricted(query string) bool {
	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, term := range p.terms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}

// Message is the explanation attached to restricted responses
func (p *PolicyFilter) Message() string {
	return p.message
}

// Len returns the number of terms
func (p *PolicyFilter) Len() int {
	return len(p.terms)
}
