package genetrap

import (
	"fmt"
	"strings"
)

// MethodMatcher maps keywords found in record text to sequence tag method
// terms. Keywords are matched case-insensitively in configuration order.
type MethodMatcher struct {
	keys  []string
	terms []string
}

// ParseMethods parses a "keyword=Term,keyword=Term" mapping.
func ParseMethods(spec string) (*MethodMatcher, error) {
	m := &MethodMatcher{}
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, term, ok := strings.Cut(pair, "=")
		key, term = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(term)
		if !ok || key == "" || term == "" {
			return nil, fmt.Errorf("invalid sequence tag method mapping %q", pair)
		}
		m.keys = append(m.keys, key)
		m.terms = append(m.terms, term)
	}
	if len(m.keys) == 0 {
		return nil, fmt.Errorf("empty sequence tag method mapping")
	}
	return m, nil
}

// Match returns the term of the first keyword contained in text.
func (m *MethodMatcher) Match(text string) (string, bool) {
	text = strings.ToLower(text)
	for i, k := range m.keys {
		if strings.Contains(text, k) {
			return m.terms[i], true
		}
	}
	return "", false
}

// Terms returns the distinct method terms in configuration order.
func (m *MethodMatcher) Terms() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range m.terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
