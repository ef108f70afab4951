package index

import (
	"context"
	"testing"

	"github.com/Aman-CERP/amanmcp/internal/config"
	"github.com/Aman-CERP/amanmcp/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfigWithTabularChunks() *config.Config {
	cfg := config.NewConfig()
	cfg.Contextual.TabularChunks = true
	return cfg
}

// =============================================================================
// Contextual enrichment tests
// =============================================================================

func TestEnrichChunkWithContext_PrependsContext(t *testing.T) {
	chunk := &store.Chunk{
		ID:       "test-chunk",
		FilePath: "docs/overview.md",
		Content:  "The system indexes documents and exposes them over MCP tools.",
	}

	generatedContext := "This section explains the system's high-level architecture."
	EnrichChunkWithContext(chunk, generatedContext)

	assert.Contains(t, chunk.Content, generatedContext)
	assert.Contains(t, chunk.Content, "indexes documents")
	assert.Equal(t, generatedContext, chunk.Metadata["contextual_context"])
}

func TestEnrichChunkWithContext_EmptyContext(t *testing.T) {
	original := "original content"
	chunk := &store.Chunk{Content: original}

	EnrichChunkWithContext(chunk, "")

	assert.Equal(t, original, chunk.Content)
}

func TestEnrichChunkWithContext_NilChunk(t *testing.T) {
	EnrichChunkWithContext(nil, "some context")
}

func TestExtractDocumentContext_TextFile(t *testing.T) {
	chunks := []*store.Chunk{
		{FilePath: "docs/guide.md", Format: store.FormatMarkdown, Metadata: map[string]string{"header_path": "Setup"}},
		{FilePath: "docs/guide.md", Format: store.FormatMarkdown, Metadata: map[string]string{"header_path": "Setup > Install"}},
	}

	ctx := ExtractDocumentContext(chunks)

	assert.Contains(t, ctx, "docs/guide.md")
	assert.Contains(t, ctx, "Setup")
	assert.Contains(t, ctx, "Install")
}

func TestExtractDocumentContext_NonTextFile(t *testing.T) {
	chunks := []*store.Chunk{
		{FilePath: "report.pdf", Format: store.FormatPDF},
	}

	ctx := ExtractDocumentContext(chunks)

	assert.Equal(t, "File: report.pdf", ctx)
}

func TestExtractDocumentContext_Empty(t *testing.T) {
	assert.Equal(t, "", ExtractDocumentContext(nil))
}

func TestGroupChunksByFile(t *testing.T) {
	chunks := []*store.Chunk{
		{FilePath: "a.txt"},
		{FilePath: "b.txt"},
		{FilePath: "a.txt"},
	}

	grouped := GroupChunksByFile(chunks)

	require.Len(t, grouped, 2)
	assert.Len(t, grouped["a.txt"], 2)
	assert.Len(t, grouped["b.txt"], 1)
}

// =============================================================================
// Pattern-based generator tests
// =============================================================================

func TestPatternContextGenerator_GeneratesFromMetadata(t *testing.T) {
	gen := NewPatternContextGenerator(config.NewConfig())
	chunk := &store.Chunk{
		FilePath: "docs/guide.md",
		Format:   store.FormatMarkdown,
		Metadata: map[string]string{"header_path": "Setup > Install"},
	}

	ctx, err := gen.GenerateContext(context.Background(), chunk, "")

	require.NoError(t, err)
	assert.Contains(t, ctx, "docs/guide.md")
	assert.Contains(t, ctx, "Setup > Install")
}

func TestPatternContextGenerator_SkipsTabularByDefault(t *testing.T) {
	gen := NewPatternContextGenerator(config.NewConfig())
	chunk := &store.Chunk{FilePath: "budget.xlsx", Format: store.FormatExcel, Metadata: map[string]string{"sheet": "Sheet1"}}

	ctx, err := gen.GenerateContext(context.Background(), chunk, "")

	require.NoError(t, err)
	assert.Empty(t, ctx, "tabular chunks should have no context when TabularChunks=false")
}

func TestPatternContextGenerator_IncludesTabularWhenEnabled(t *testing.T) {
	gen := NewPatternContextGenerator(testConfigWithTabularChunks())
	chunk := &store.Chunk{FilePath: "budget.xlsx", Format: store.FormatExcel, Metadata: map[string]string{"sheet": "Sheet1"}}

	ctx, err := gen.GenerateContext(context.Background(), chunk, "")

	require.NoError(t, err)
	assert.Contains(t, ctx, "Sheet1")
}

func TestPatternContextGenerator_NilChunk(t *testing.T) {
	gen := NewPatternContextGenerator(config.NewConfig())
	ctx, err := gen.GenerateContext(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, ctx)
}

func TestPatternContextGenerator_GenerateBatch(t *testing.T) {
	gen := NewPatternContextGenerator(config.NewConfig())
	chunks := []*store.Chunk{
		{FilePath: "a.md", Format: store.FormatMarkdown, Metadata: map[string]string{"header_path": "Intro"}},
		{FilePath: "b.md", Format: store.FormatMarkdown, Metadata: map[string]string{"header_path": "Usage"}},
	}

	results, err := gen.GenerateBatch(context.Background(), chunks, "")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0], "Intro")
	assert.Contains(t, results[1], "Usage")
}

func TestPatternContextGenerator_AvailableAndModelName(t *testing.T) {
	gen := NewPatternContextGenerator(config.NewConfig())
	assert.True(t, gen.Available(context.Background()))
	assert.Equal(t, "pattern-based", gen.ModelName())
}

// =============================================================================
// Hybrid generator tests
// =============================================================================

func TestHybridContextGenerator_FallsBackToPatternWhenLLMUnavailable(t *testing.T) {
	hybrid := NewHybridContextGenerator(nil, config.NewConfig())
	chunk := &store.Chunk{
		FilePath: "docs/guide.md",
		Format:   store.FormatMarkdown,
		Metadata: map[string]string{"header_path": "Setup"},
	}

	ctx, err := hybrid.GenerateContext(context.Background(), chunk, "")

	require.NoError(t, err)
	assert.Contains(t, ctx, "Setup")
}

func TestHybridContextGenerator_SkipsTabularByDefault(t *testing.T) {
	hybrid := NewHybridContextGenerator(nil, config.NewConfig())
	chunk := &store.Chunk{FilePath: "budget.xlsx", Format: store.FormatExcel}

	ctx, err := hybrid.GenerateContext(context.Background(), chunk, "")

	require.NoError(t, err)
	assert.Empty(t, ctx)
}

func TestHybridContextGenerator_ModelNameReflectsPatternOnly(t *testing.T) {
	hybrid := NewHybridContextGenerator(nil, config.NewConfig())
	assert.Equal(t, "pattern-based", hybrid.ModelName())
}

func TestHybridContextGenerator_AvailableWithPatternFallback(t *testing.T) {
	hybrid := NewHybridContextGenerator(nil, config.NewConfig())
	assert.True(t, hybrid.Available(context.Background()))
}

func TestHybridContextGenerator_Close(t *testing.T) {
	hybrid := NewHybridContextGenerator(nil, config.NewConfig())
	assert.NoError(t, hybrid.Close())
}

func TestDefaultContextGeneratorConfig(t *testing.T) {
	cfg := DefaultContextGeneratorConfig()
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "qwen3:0.6b", cfg.Model)
	assert.Equal(t, 8, cfg.BatchSize)
	assert.False(t, cfg.FallbackOnly)
}
