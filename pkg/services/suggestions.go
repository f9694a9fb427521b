package services

import "strings"

var DefaultSuggestions = []string{"vegetable", "salad", "pasta"}

const DefaultSuggestionLimit = 3

// FilterSuggestions returns the entries of list containing query, ignoring
// case, in list order and at most limit long. An empty query matches all.
func FilterSuggestions(list []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	for _, s := range list {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(s), q) {
			out = append(out, s)
		}
	}
	return out
}
