package search

import (
	"context"
	"regexp"
	"strings"
)

// Compiled regex patterns for query classification.
// Compiled at package init for performance.
var (
	// Reference codes used across business documents: invoice numbers,
	// purchase orders, ticket/ticket numbers, RMA numbers, etc.
	// e.g. INV-2024-0091, PO#4471, TICKET12345, RMA-0002
	referenceCodePattern = regexp.MustCompile(`(?i)^(INV|PO|SO|REQ|RMA|TICKET|CASE|REF)[-#]?\d{3,}(-\d+)*$`)

	// Quoted exact phrases: "..." or '...'
	quotedPattern = regexp.MustCompile(`^["'].*["']$`)

	// File paths/names: path/to/file.ext for document extensions eligible for indexing.
	filePathPattern = regexp.MustCompile(`(?i)^[\w\-\./\\ ]+\.(txt|md|html|htm|pdf|docx|xlsx|csv|pptx)$`)

	// Natural language starters (questions, commands)
	naturalLanguagePattern = regexp.MustCompile(`(?i)^(how|what|where|why|when|which|who|can|does|is|are|should|explain|describe|show|find|list|summarize)\s`)
)

// PatternClassifier classifies queries using regex pattern matching.
// This is the fallback classifier when LLM is unavailable.
type PatternClassifier struct{}

// NewPatternClassifier creates a new pattern-based classifier.
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{}
}

// Classify determines the query type using pattern matching.
// Returns (QueryType, Weights, nil) - never returns an error.
func (p *PatternClassifier) Classify(_ context.Context, query string) (QueryType, Weights, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return QueryTypeMixed, WeightsForQueryType(QueryTypeMixed), nil
	}

	qt := p.classifyQuery(query)
	return qt, WeightsForQueryType(qt), nil
}

// classifyQuery determines the query type based on patterns.
func (p *PatternClassifier) classifyQuery(query string) QueryType {
	// Check lexical patterns first (most specific)
	if p.isLexicalQuery(query) {
		return QueryTypeLexical
	}

	// Check natural language patterns
	if p.isSemanticQuery(query) {
		return QueryTypeSemantic
	}

	// Multi-word queries (3+) that don't match other patterns → SEMANTIC
	wordCount := len(strings.Fields(query))
	if wordCount >= 3 {
		return QueryTypeSemantic
	}

	// Default to MIXED for 1-2 word queries
	return QueryTypeMixed
}

// isLexicalQuery checks if the query matches lexical patterns.
func (p *PatternClassifier) isLexicalQuery(query string) bool {
	// Reference codes (invoice/PO/ticket numbers, etc.)
	if referenceCodePattern.MatchString(query) {
		return true
	}

	// Quoted phrases
	if quotedPattern.MatchString(query) {
		return true
	}

	// File paths/names
	if filePathPattern.MatchString(query) {
		return true
	}

	return false
}

// isSemanticQuery checks if the query matches semantic (natural language) patterns.
func (p *PatternClassifier) isSemanticQuery(query string) bool {
	return naturalLanguagePattern.MatchString(query)
}

// Ensure PatternClassifier implements Classifier interface.
var _ Classifier = (*PatternClassifier)(nil)
