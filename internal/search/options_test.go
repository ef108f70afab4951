package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/amanmcp/internal/store"
)

// =============================================================================
// NormalizeScope Tests
// =============================================================================

func TestNormalizeScope(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "leading and trailing slashes stripped",
			input:    "/services/api/",
			expected: "services/api",
		},
		{
			name:     "no slashes unchanged",
			input:    "services/api",
			expected: "services/api",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only slashes",
			input:    "///",
			expected: "",
		},
		{
			name:     "nested path",
			input:    "reports/q1/v2/drafts",
			expected: "reports/q1/v2/drafts",
		},
		{
			name:     "single directory",
			input:    "reports",
			expected: "reports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeScope(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// =============================================================================
// scopeFilter Tests
// =============================================================================

func TestScopeFilter_SingleScope(t *testing.T) {
	filter := scopeFilter([]string{"reports/q1"})

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "exact directory match",
			filePath: "reports/q1/summary.md",
			expected: true,
		},
		{
			name:     "nested match",
			filePath: "reports/q1/drafts/v2.docx",
			expected: true,
		},
		{
			name:     "no match different folder",
			filePath: "reports/q2/summary.md",
			expected: false,
		},
		{
			name:     "partial no match - similar prefix",
			filePath: "reports/q1-archive/file.md",
			expected: false,
		},
		{
			name:     "completely different path",
			filePath: "legal/contracts/nda.pdf",
			expected: false,
		},
		{
			name:     "match with leading slash in path",
			filePath: "/reports/q1/summary.md",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &SearchResult{
				Chunk: &store.Chunk{FilePath: tt.filePath},
			}
			assert.Equal(t, tt.expected, filter(result))
		})
	}
}

func TestScopeFilter_MultipleScopes_ORLogic(t *testing.T) {
	filter := scopeFilter([]string{"reports/q1", "reports/q2", "legal"})

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "matches first scope",
			filePath: "reports/q1/summary.md",
			expected: true,
		},
		{
			name:     "matches second scope",
			filePath: "reports/q2/summary.md",
			expected: true,
		},
		{
			name:     "matches third scope",
			filePath: "legal/nda.pdf",
			expected: true,
		},
		{
			name:     "matches none",
			filePath: "reports/q3/summary.md",
			expected: false,
		},
		{
			name:     "matches none - root level",
			filePath: "readme.md",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &SearchResult{
				Chunk: &store.Chunk{FilePath: tt.filePath},
			}
			assert.Equal(t, tt.expected, filter(result))
		})
	}
}

func TestScopeFilter_NilChunk(t *testing.T) {
	filter := scopeFilter([]string{"reports"})

	result := &SearchResult{Chunk: nil}
	assert.False(t, filter(result))
}

func TestScopeFilter_EmptyScopes(t *testing.T) {
	filter := scopeFilter([]string{})

	// Empty scopes should match everything (no filtering)
	result := &SearchResult{
		Chunk: &store.Chunk{FilePath: "any/path/file.md"},
	}
	assert.True(t, filter(result))
}

func TestScopeFilter_OnlyEmptyStrings(t *testing.T) {
	filter := scopeFilter([]string{"", "", "/"})

	// All empty/invalid scopes should match everything
	result := &SearchResult{
		Chunk: &store.Chunk{FilePath: "any/path/file.md"},
	}
	assert.True(t, filter(result))
}

func TestScopeFilter_MixedEmptyAndValid(t *testing.T) {
	filter := scopeFilter([]string{"", "reports/q1", "/"})

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "matches valid scope",
			filePath: "reports/q1/summary.md",
			expected: true,
		},
		{
			name:     "no match",
			filePath: "legal/nda.pdf",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &SearchResult{
				Chunk: &store.Chunk{FilePath: tt.filePath},
			}
			assert.Equal(t, tt.expected, filter(result))
		})
	}
}

func TestScopeFilter_CaseSensitive(t *testing.T) {
	filter := scopeFilter([]string{"Reports/Q1"})

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "exact case match",
			filePath: "Reports/Q1/summary.md",
			expected: true,
		},
		{
			name:     "lowercase no match",
			filePath: "reports/q1/summary.md",
			expected: false,
		},
		{
			name:     "mixed case no match",
			filePath: "Reports/q1/summary.md",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &SearchResult{
				Chunk: &store.Chunk{FilePath: tt.filePath},
			}
			assert.Equal(t, tt.expected, filter(result))
		})
	}
}

// =============================================================================
// documentTypeFilter Tests
// =============================================================================

func TestDocumentTypeFilter_MatchesExtension(t *testing.T) {
	filter := documentTypeFilter([]string{".md", ".pdf"})

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{name: "matches md", filePath: "reports/summary.md", expected: true},
		{name: "matches pdf", filePath: "legal/nda.pdf", expected: true},
		{name: "no match docx", filePath: "reports/summary.docx", expected: false},
		{name: "case insensitive extension", filePath: "reports/SUMMARY.MD", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &SearchResult{Chunk: &store.Chunk{FilePath: tt.filePath}}
			assert.Equal(t, tt.expected, filter(result))
		})
	}
}

func TestDocumentTypeFilter_NilChunk(t *testing.T) {
	filter := documentTypeFilter([]string{".md"})
	assert.False(t, filter(&SearchResult{Chunk: nil}))
}

func TestDocumentTypeFilter_CaseInsensitiveTypeList(t *testing.T) {
	filter := documentTypeFilter([]string{".PDF"})
	result := &SearchResult{Chunk: &store.Chunk{FilePath: "legal/nda.pdf"}}
	assert.True(t, filter(result))
}

// =============================================================================
// ApplyFilters Tests
// =============================================================================

func TestApplyFilters_NoFilters_ReturnsAllResults(t *testing.T) {
	results := []*SearchResult{
		{Chunk: &store.Chunk{FilePath: "a.md"}},
		{Chunk: &store.Chunk{FilePath: "b.pdf"}},
	}

	filtered := ApplyFilters(results, SearchOptions{})

	assert.Equal(t, results, filtered)
}

func TestApplyFilters_WithScopes(t *testing.T) {
	// Given: results from different folders
	results := []*SearchResult{
		{Chunk: &store.Chunk{FilePath: "reports/q1/summary.md"}},
		{Chunk: &store.Chunk{FilePath: "reports/q2/summary.md"}},
		{Chunk: &store.Chunk{FilePath: "reports/q3/summary.md"}},
		{Chunk: &store.Chunk{FilePath: "legal/nda.pdf"}},
	}

	// When: filtering with scope
	opts := SearchOptions{
		Scopes: []string{"reports/q1", "legal"},
	}
	filtered := ApplyFilters(results, opts)

	// Then: only matching scopes returned
	assert.Len(t, filtered, 2)
	assert.Equal(t, "reports/q1/summary.md", filtered[0].Chunk.FilePath)
	assert.Equal(t, "legal/nda.pdf", filtered[1].Chunk.FilePath)
}

func TestApplyFilters_ScopesWithDocumentTypes(t *testing.T) {
	// Given: results with different extensions and paths
	results := []*SearchResult{
		{Chunk: &store.Chunk{FilePath: "reports/q1/summary.md"}},
		{Chunk: &store.Chunk{FilePath: "reports/q1/summary.pdf"}},
		{Chunk: &store.Chunk{FilePath: "reports/q2/summary.md"}},
	}

	// When: filtering with scope AND document type
	opts := SearchOptions{
		DocumentTypes: []string{".md"},
		Scopes:        []string{"reports/q1"},
	}
	filtered := ApplyFilters(results, opts)

	// Then: only markdown in reports/q1 returned (AND logic between filter types)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "reports/q1/summary.md", filtered[0].Chunk.FilePath)
}

func TestApplyFilters_EmptyScopes_NoFiltering(t *testing.T) {
	// Given: results
	results := []*SearchResult{
		{Chunk: &store.Chunk{FilePath: "a.md"}},
		{Chunk: &store.Chunk{FilePath: "b.md"}},
	}

	// When: no scopes specified
	opts := SearchOptions{
		Scopes: []string{},
	}
	filtered := ApplyFilters(results, opts)

	// Then: all results returned (no filtering)
	assert.Len(t, filtered, 2)
}

func TestApplyFilters_InvalidScope_ReturnsEmpty(t *testing.T) {
	// Given: results
	results := []*SearchResult{
		{Chunk: &store.Chunk{FilePath: "reports/q1/summary.md"}},
		{Chunk: &store.Chunk{FilePath: "legal/nda.pdf"}},
	}

	// When: filtering with non-existent scope
	opts := SearchOptions{
		Scopes: []string{"nonexistent/path"},
	}
	filtered := ApplyFilters(results, opts)

	// Then: empty results, no error
	assert.Empty(t, filtered)
}

func TestApplyFilters_NilChunksFilteredOut(t *testing.T) {
	results := []*SearchResult{
		{Chunk: nil},
		{Chunk: &store.Chunk{FilePath: "reports/q1/summary.md"}},
	}

	filtered := ApplyFilters(results, SearchOptions{Scopes: []string{"reports/q1"}})

	assert.Len(t, filtered, 1)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkNormalizeScope(b *testing.B) {
	scope := "/reports/q1/v2/"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NormalizeScope(scope)
	}
}

func BenchmarkScopeFilter_SingleScope(b *testing.B) {
	filter := scopeFilter([]string{"reports/q1"})
	result := &SearchResult{Chunk: &store.Chunk{FilePath: "reports/q1/summary.md"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = filter(result)
	}
}

func BenchmarkScopeFilter_MultipleScopes(b *testing.B) {
	filter := scopeFilter([]string{
		"reports/q1",
		"reports/q2",
		"reports/q3",
		"legal/contracts",
		"legal/policies",
	})
	result := &SearchResult{Chunk: &store.Chunk{FilePath: "legal/policies/handbook.md"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = filter(result)
	}
}

func BenchmarkApplyFilters_WithScope_100Results(b *testing.B) {
	// Create 100 results
	results := make([]*SearchResult, 100)
	for i := 0; i < 100; i++ {
		path := "reports/q1/summary.md"
		if i%2 == 0 {
			path = "reports/q2/summary.md"
		}
		results[i] = &SearchResult{
			Chunk: &store.Chunk{FilePath: path},
		}
	}

	opts := SearchOptions{
		DocumentTypes: []string{".md"},
		Scopes:        []string{"reports/q1"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ApplyFilters(results, opts)
	}
}
