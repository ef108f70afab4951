package search

import (
	"strings"
	"unicode"
)

// QueryExpander expands search queries with document-domain synonyms.
// This bridges vocabulary mismatch where a user's search terms don't
// match the wording an author actually used in a document.
//
// Example:
//
//	Input:  "revenue summary"
//	Output: "revenue summary income earnings sales overview abstract synopsis"
type QueryExpander struct {
	synonyms      map[string][]string
	maxExpansions int // Max synonyms per term (default: 3)
}

// QueryExpanderOption configures the query expander.
type QueryExpanderOption func(*QueryExpander)

// WithMaxExpansions sets the maximum synonyms per term.
func WithMaxExpansions(n int) QueryExpanderOption {
	return func(e *QueryExpander) {
		e.maxExpansions = n
	}
}

// WithCustomSynonyms adds custom synonym mappings.
func WithCustomSynonyms(synonyms map[string][]string) QueryExpanderOption {
	return func(e *QueryExpander) {
		for k, v := range synonyms {
			e.synonyms[k] = append(e.synonyms[k], v...)
		}
	}
}

// NewQueryExpander creates a new query expander with default document synonyms.
func NewQueryExpander(opts ...QueryExpanderOption) *QueryExpander {
	e := &QueryExpander{
		synonyms:      make(map[string][]string),
		maxExpansions: 3,
	}

	// Copy default synonyms
	for k, v := range DocumentSynonyms {
		e.synonyms[k] = v
	}

	// Apply options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Expand expands a query with document-domain synonyms.
// Returns the expanded query suitable for BM25 search.
//
// The expansion strategy:
// 1. Keep original query terms (for exact matches)
// 2. Add synonym expansions (for vocabulary bridging)
// 3. Deduplicate terms
func (e *QueryExpander) Expand(query string) string {
	terms := tokenize(query)
	if len(terms) == 0 {
		return query
	}

	seen := make(map[string]bool)
	var expanded []string

	// First, add original terms
	for _, term := range terms {
		lowerTerm := strings.ToLower(term)
		if !seen[lowerTerm] {
			expanded = append(expanded, term)
			seen[lowerTerm] = true
		}
	}

	// Then, add synonym expansions
	for _, term := range terms {
		lowerTerm := strings.ToLower(term)
		synonyms := e.getSynonyms(lowerTerm)

		added := 0
		for _, syn := range synonyms {
			lowerSyn := strings.ToLower(syn)
			if !seen[lowerSyn] && added < e.maxExpansions {
				expanded = append(expanded, syn)
				seen[lowerSyn] = true
				added++
			}
		}
	}

	return strings.Join(expanded, " ")
}

// ExpandToTerms returns expanded terms as a slice.
func (e *QueryExpander) ExpandToTerms(query string) []string {
	expanded := e.Expand(query)
	return tokenize(expanded)
}

// getSynonyms retrieves synonyms for a term.
func (e *QueryExpander) getSynonyms(term string) []string {
	if syns, ok := e.synonyms[term]; ok {
		return syns
	}
	return nil
}

// tokenize splits a query into words, treating any run of letters,
// digits, or apostrophes as a single token and everything else as a
// separator. Suited to natural-language prose rather than identifiers.
func tokenize(query string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
