package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// QueryExpander Tests
// =============================================================================

func TestQueryExpander_Expand_BasicSynonyms(t *testing.T) {
	expander := NewQueryExpander()

	tests := []struct {
		name     string
		query    string
		contains []string // Terms that MUST be in result
	}{
		{
			name:     "revenue expands to income/earnings",
			query:    "quarterly revenue",
			contains: []string{"quarterly", "revenue", "income"},
		},
		{
			name:     "summary expands to overview",
			query:    "project summary",
			contains: []string{"project", "summary", "overview"},
		},
		{
			name:     "report expands to document",
			query:    "status report",
			contains: []string{"status", "report", "document"},
		},
		{
			name:     "meeting expands to call/sync",
			query:    "meeting notes",
			contains: []string{"meeting", "notes", "call"},
		},
		{
			name:     "forecast expands to projection/estimate",
			query:    "budget forecast",
			contains: []string{"budget", "forecast", "projection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expander.Expand(tt.query)
			for _, term := range tt.contains {
				assert.Contains(t, result, term,
					"expected expanded query to contain %q, got %q", term, result)
			}
		})
	}
}

func TestQueryExpander_Expand_PreservesOriginalTerms(t *testing.T) {
	expander := NewQueryExpander()

	query := "custom unique specific"
	result := expander.Expand(query)

	// Original terms should always be preserved
	assert.Contains(t, result, "custom")
	assert.Contains(t, result, "unique")
	assert.Contains(t, result, "specific")
}

func TestQueryExpander_Expand_DeduplicatesTerms(t *testing.T) {
	expander := NewQueryExpander()

	// "income" is both a standalone term and a synonym of "revenue"
	query := "income revenue"
	result := expander.Expand(query)

	count := strings.Count(strings.ToLower(result), "income")
	assert.LessOrEqual(t, count, 2, "should not have many duplicate 'income' terms")
}

func TestQueryExpander_Expand_EmptyQuery(t *testing.T) {
	expander := NewQueryExpander()

	assert.Equal(t, "", expander.Expand(""))
	assert.Equal(t, "   ", expander.Expand("   "))
}

func TestQueryExpander_MaxExpansions(t *testing.T) {
	expander := NewQueryExpander(WithMaxExpansions(1))

	// "revenue" has several synonyms, but should only add 1
	result := expander.Expand("revenue")
	terms := strings.Fields(result)

	assert.Less(t, len(terms), 6, "should limit expansions")
}

func TestQueryExpander_CustomSynonyms(t *testing.T) {
	custom := map[string][]string{
		"amanmcp": {"docsearch", "knowledgebase"},
	}
	expander := NewQueryExpander(WithCustomSynonyms(custom))

	result := expander.Expand("amanmcp tool")

	assert.Contains(t, result, "docsearch")
	assert.Contains(t, result, "knowledgebase")
}

func TestQueryExpander_ExpandToTerms(t *testing.T) {
	expander := NewQueryExpander()

	terms := expander.ExpandToTerms("quarterly revenue")

	require.NotEmpty(t, terms)
	assert.Contains(t, terms, "quarterly")
	assert.Contains(t, terms, "revenue")
}

// =============================================================================
// Tokenizer Tests
// =============================================================================

func TestTokenize_Whitespace(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"  hello   world  ", []string{"hello", "world"}},
		{"hello", []string{"hello"}},
		{"", nil}, // Empty input returns nil slice
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := tokenize(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTokenize_Apostrophes(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Q1's revenue", []string{"Q1's", "revenue"}},
		{"can't find the report", []string{"can't", "find", "the", "report"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := tokenize(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTokenize_MixedPunctuation(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"revenue, costs, and margin", []string{"revenue", "costs", "and", "margin"}},
		{"status: delayed", []string{"status", "delayed"}},
		{"reports/q1/summary.pdf", []string{"reports", "q1", "summary", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := tokenize(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// =============================================================================
// Synonym Dictionary Tests
// =============================================================================

func TestDocumentSynonyms_Coverage(t *testing.T) {
	// Ensure key document/business terms are covered
	required := []string{
		"revenue", "profit", "expense", "budget", "forecast",
		"report", "summary", "minutes", "proposal", "contract",
		"meeting", "project", "status", "risk",
	}

	for _, term := range required {
		t.Run(term, func(t *testing.T) {
			synonyms := GetSynonyms(term)
			assert.NotEmpty(t, synonyms, "term %q should have synonyms", term)
		})
	}
}

func TestGetSynonyms_CaseInsensitive(t *testing.T) {
	// Should work regardless of case
	lower := GetSynonyms("revenue")
	upper := GetSynonyms("REVENUE")
	mixed := GetSynonyms("Revenue")

	assert.NotEmpty(t, lower)
	assert.Equal(t, lower, upper)
	assert.Equal(t, lower, mixed)
}

func TestGetSynonyms_UnknownTerm(t *testing.T) {
	synonyms := GetSynonyms("xyzzy123notaword")
	assert.Nil(t, synonyms)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkQueryExpander_Expand(b *testing.B) {
	expander := NewQueryExpander()
	query := "quarterly revenue and budget forecast summary"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = expander.Expand(query)
	}
}

func BenchmarkTokenize(b *testing.B) {
	query := "quarterly revenue, budget forecast, and status report"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tokenize(query)
	}
}

func BenchmarkGetSynonyms(b *testing.B) {
	terms := []string{"revenue", "report", "meeting", "unknown"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, term := range terms {
			_ = GetSynonyms(term)
		}
	}
}
