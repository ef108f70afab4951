package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp/internal/config"
	"github.com/Aman-CERP/amanmcp/internal/embed"
	"github.com/Aman-CERP/amanmcp/internal/search"
	"github.com/Aman-CERP/amanmcp/internal/store"
)

// Integration Tests - These test the full flow from indexing to search
// to verify components work together correctly.

// testEmbedder creates a static embedder for testing (fast, no model download)
func testEmbedder(t *testing.T) embed.Embedder {
	t.Helper()
	return embed.NewStaticEmbedder768()
}

// testMetadataStore creates a SQLite metadata store in a temp directory for testing
func testMetadataStore(t *testing.T) store.MetadataStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	ms, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = ms.Close() })
	return ms
}

// testVectorStore creates a vector store for testing
func testVectorStore(t *testing.T) store.VectorStore {
	t.Helper()
	cfg := store.DefaultVectorStoreConfig(768) // Match static embedder dimensions
	vs, err := store.NewHNSWStore(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = vs.Close() })
	return vs
}

// testBM25Index creates a BM25 index for testing
func testBM25Index(t *testing.T) store.BM25Index {
	t.Helper()
	tmpDir := t.TempDir()
	indexBasePath := filepath.Join(tmpDir, "test")

	idx, err := store.NewBM25IndexWithBackend(indexBasePath, store.DefaultBM25Config(), "")
	require.NoError(t, err)

	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

// TestIntegration_IndexAndSearch_FindsResults tests the complete flow:
// create files -> index -> search -> get results
func TestIntegration_IndexAndSearch_FindsResults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a project with some documents
	projectDir := t.TempDir()
	createTestProject(t, projectDir)

	// And: initialized stores
	embedder := testEmbedder(t)
	metadata := testMetadataStore(t)
	vector := testVectorStore(t)
	bm25 := testBM25Index(t)

	// Create search engine
	engine := search.New(
		bm25,
		vector,
		embedder,
		metadata,
		search.DefaultConfig(),
	)
	defer func() { _ = engine.Close() }()

	// Index the test files
	ctx := context.Background()
	files, chunks := createTestFilesAndChunks(t)

	// Save project first (required for files foreign key)
	err := metadata.SaveProject(ctx, testProject())
	require.NoError(t, err)

	// Save files (required for chunks foreign key)
	err = metadata.SaveFiles(ctx, files)
	require.NoError(t, err)

	// Then save chunks
	err = metadata.SaveChunks(ctx, chunks)
	require.NoError(t, err)

	// Index chunks in search engine
	err = engine.Index(ctx, chunks)
	require.NoError(t, err)

	// When: searching for known content
	results, err := engine.Search(ctx, "quarterly renewal terms", search.SearchOptions{
		Limit: 10,
	})

	// Then: results should be found
	require.NoError(t, err)
	assert.NotEmpty(t, results, "Search should find results")

	// Verify at least one result matches expected file
	foundContract := false
	for _, r := range results {
		if r.Chunk != nil && r.Chunk.FilePath == "contract.md" {
			foundContract = true
			break
		}
	}
	assert.True(t, foundContract, "Should find contract.md discussing renewal terms")
}

// TestIntegration_SearchAfterDelete_ExcludesDeleted tests that deleted
// content is no longer returned in search results.
func TestIntegration_SearchAfterDelete_ExcludesDeleted(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: indexed content
	projectDir := t.TempDir()
	createTestProject(t, projectDir)

	embedder := testEmbedder(t)
	metadata := testMetadataStore(t)
	vector := testVectorStore(t)
	bm25 := testBM25Index(t)

	engine := search.New(bm25, vector, embedder, metadata, search.DefaultConfig())
	defer func() { _ = engine.Close() }()

	ctx := context.Background()
	files, chunks := createTestFilesAndChunks(t)
	err := metadata.SaveProject(ctx, testProject())
	require.NoError(t, err)
	err = metadata.SaveFiles(ctx, files)
	require.NoError(t, err)
	err = metadata.SaveChunks(ctx, chunks)
	require.NoError(t, err)
	err = engine.Index(ctx, chunks)
	require.NoError(t, err)

	// When: deleting a chunk and searching
	chunkToDelete := chunks[0].ID
	err = engine.Delete(ctx, []string{chunkToDelete})
	require.NoError(t, err)

	results, err := engine.Search(ctx, "renewal terms", search.SearchOptions{Limit: 10})
	require.NoError(t, err)

	// Then: deleted chunk should not appear in results
	for _, r := range results {
		if r.Chunk != nil {
			assert.NotEqual(t, chunkToDelete, r.Chunk.ID, "Deleted chunk should not appear in results")
		}
	}
}

// TestIntegration_EmptyIndex_ReturnsNoResults tests that an empty index
// returns empty results without error.
func TestIntegration_EmptyIndex_ReturnsNoResults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: an empty search engine
	embedder := testEmbedder(t)
	metadata := testMetadataStore(t)
	vector := testVectorStore(t)
	bm25 := testBM25Index(t)

	engine := search.New(bm25, vector, embedder, metadata, search.DefaultConfig())
	defer func() { _ = engine.Close() }()

	// When: searching empty index
	ctx := context.Background()
	results, err := engine.Search(ctx, "any query", search.SearchOptions{Limit: 10})

	// Then: no error, empty results
	require.NoError(t, err)
	assert.Empty(t, results)
}

// TestIntegration_SearchWithFilters_FiltersResults tests that search
// filters (document type) work correctly.
func TestIntegration_SearchWithFilters_FiltersResults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: indexed content spanning several document formats
	projectDir := t.TempDir()
	createMultiFormatProject(t, projectDir)

	embedder := testEmbedder(t)
	metadata := testMetadataStore(t)
	vector := testVectorStore(t)
	bm25 := testBM25Index(t)

	engine := search.New(bm25, vector, embedder, metadata, search.DefaultConfig())
	defer func() { _ = engine.Close() }()

	ctx := context.Background()
	files, chunks := createMultiFormatFilesAndChunks(t)
	err := metadata.SaveProject(ctx, testProject())
	require.NoError(t, err)
	err = metadata.SaveFiles(ctx, files)
	require.NoError(t, err)
	err = metadata.SaveChunks(ctx, chunks)
	require.NoError(t, err)
	err = engine.Index(ctx, chunks)
	require.NoError(t, err)

	// When: searching restricted to markdown documents
	results, err := engine.Search(ctx, "summary", search.SearchOptions{
		Limit:         10,
		DocumentTypes: []string{".md"},
	})
	require.NoError(t, err)

	// Then: only markdown files should be in results
	for _, r := range results {
		if r.Chunk != nil && r.Chunk.FilePath != "" {
			ext := filepath.Ext(r.Chunk.FilePath)
			assert.Equal(t, ".md", ext, "Filtered results should only contain markdown files")
		}
	}
}

// TestIntegration_ConcurrentSearches_NoRace tests that concurrent searches
// don't cause race conditions.
func TestIntegration_ConcurrentSearches_NoRace(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: indexed content
	projectDir := t.TempDir()
	createTestProject(t, projectDir)

	embedder := testEmbedder(t)
	metadata := testMetadataStore(t)
	vector := testVectorStore(t)
	bm25 := testBM25Index(t)

	engine := search.New(bm25, vector, embedder, metadata, search.DefaultConfig())
	defer func() { _ = engine.Close() }()

	ctx := context.Background()
	files, chunks := createTestFilesAndChunks(t)
	err := metadata.SaveProject(ctx, testProject())
	require.NoError(t, err)
	err = metadata.SaveFiles(ctx, files)
	require.NoError(t, err)
	err = metadata.SaveChunks(ctx, chunks)
	require.NoError(t, err)
	err = engine.Index(ctx, chunks)
	require.NoError(t, err)

	// When: running concurrent searches
	done := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		go func(query string) {
			_, err := engine.Search(ctx, query, search.SearchOptions{Limit: 5})
			assert.NoError(t, err)
			done <- true
		}("test query " + string(rune('a'+i%26)))
	}

	// Then: all searches complete without error
	timeout := time.After(10 * time.Second)
	for i := 0; i < 20; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatal("Concurrent searches timed out")
		}
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

// createTestProject creates a simple document project structure
func createTestProject(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"contract.md": `# Master Services Agreement

## Renewal Terms

This agreement renews automatically each quarter unless either party
gives 30 days written notice of non-renewal.
`,
		"notes.md": `# Meeting Notes

## Action Items

- Follow up with legal on the renewal clause
- Confirm budget for next quarter
`,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		err := os.WriteFile(path, []byte(content), 0644)
		require.NoError(t, err)
	}
}

// createTestFilesAndChunks creates test files and chunks with proper relationships
func createTestFilesAndChunks(t *testing.T) ([]*store.File, []*store.Chunk) {
	t.Helper()
	now := time.Now()

	files := []*store.File{
		{
			ID:          "file-1",
			ProjectID:   "test-project", // No project FK enforcement in test
			Path:        "contract.md",
			Size:        500,
			ModTime:     now,
			Fingerprint: "hash1",
			Format:      store.FormatMarkdown,
			IndexedAt:   now,
		},
		{
			ID:          "file-2",
			ProjectID:   "test-project",
			Path:        "notes.md",
			Size:        200,
			ModTime:     now,
			Fingerprint: "hash2",
			Format:      store.FormatMarkdown,
			IndexedAt:   now,
		},
	}

	chunks := []*store.Chunk{
		{
			ID:        "chunk-1",
			FileID:    "file-1",
			FilePath:  "contract.md",
			Content:   "# Master Services Agreement\n\n## Renewal Terms\n\nThis agreement renews automatically each quarter unless either party gives 30 days written notice of non-renewal.",
			Format:    store.FormatMarkdown,
			StartLine: 1,
			EndLine:   6,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "chunk-2",
			FileID:    "file-1",
			FilePath:  "contract.md",
			Content:   "## Renewal Terms\n\nThis agreement renews automatically each quarter.",
			Format:    store.FormatMarkdown,
			StartLine: 3,
			EndLine:   6,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "chunk-3",
			FileID:    "file-2",
			FilePath:  "notes.md",
			Content:   "# Meeting Notes\n\n## Action Items\n\n- Follow up with legal on the renewal clause\n- Confirm budget for next quarter",
			Format:    store.FormatMarkdown,
			StartLine: 1,
			EndLine:   5,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	return files, chunks
}

// testProject creates a test project for foreign key constraints
func testProject() *store.Project {
	return &store.Project{
		ID:          "test-project",
		Name:        "test",
		RootPath:    "/tmp/test",
		ProjectType: "documents",
	}
}

// createMultiFormatProject creates a project with multiple document formats
func createMultiFormatProject(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"summary.md": `# Summary

This document contains a summary of the quarter.
`,
		"notes.txt": `Summary notes, plain text version.
`,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		err := os.WriteFile(path, []byte(content), 0644)
		require.NoError(t, err)
	}
}

// createMultiFormatFilesAndChunks creates files and chunks spanning multiple formats
func createMultiFormatFilesAndChunks(t *testing.T) ([]*store.File, []*store.Chunk) {
	t.Helper()
	now := time.Now()

	files := []*store.File{
		{
			ID:          "file-md",
			ProjectID:   "test-project",
			Path:        "summary.md",
			Size:        100,
			ModTime:     now,
			Fingerprint: "hash-md",
			Format:      store.FormatMarkdown,
			IndexedAt:   now,
		},
		{
			ID:          "file-txt",
			ProjectID:   "test-project",
			Path:        "notes.txt",
			Size:        100,
			ModTime:     now,
			Fingerprint: "hash-txt",
			Format:      store.FormatText,
			IndexedAt:   now,
		},
	}

	chunks := []*store.Chunk{
		{
			ID:        "md-chunk",
			FileID:    "file-md",
			FilePath:  "summary.md",
			Content:   "# Summary\n\nThis document contains a summary of the quarter.",
			Format:    store.FormatMarkdown,
			StartLine: 1,
			EndLine:   3,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "txt-chunk",
			FileID:    "file-txt",
			FilePath:  "notes.txt",
			Content:   "Summary notes, plain text version.",
			Format:    store.FormatText,
			StartLine: 1,
			EndLine:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	return files, chunks
}

// =============================================================================
// Config Integration Tests
// =============================================================================

// TestIntegration_ConfigLoad_AppliesDefaults tests that config loading
// works end-to-end with defaults.
func TestIntegration_ConfigLoad_AppliesDefaults(t *testing.T) {
	// Given: a directory without config file
	tmpDir := t.TempDir()

	// When: loading config
	cfg, err := config.Load(tmpDir)

	// Then: defaults are applied (empty provider = default backend, Ollama)
	require.NoError(t, err)
	assert.Equal(t, 0.65, cfg.Search.BM25Weight) // RCA-015: BM25 favored
	assert.Equal(t, 0.35, cfg.Search.SemanticWeight)
	assert.Equal(t, "", cfg.Embeddings.Provider) // Empty = auto-detect
}

// TestIntegration_ConfigLoad_WithFile_OverridesDefaults tests that
// config file values override defaults for YAML-accessible fields.
// Note: this file does not set search weights, so they keep their defaults.
func TestIntegration_ConfigLoad_WithFile_OverridesDefaults(t *testing.T) {
	// Given: a directory with config file
	tmpDir := t.TempDir()
	configContent := `
version: 1
search:
  chunk_size: 2000
embeddings:
  provider: static
`
	err := os.WriteFile(filepath.Join(tmpDir, ".amanmcp.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	// When: loading config
	cfg, err := config.Load(tmpDir)

	// Then: file values override defaults for YAML-accessible fields
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Search.ChunkSize)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	// Weights not set in the file keep their defaults (RCA-015)
	assert.Equal(t, 0.65, cfg.Search.BM25Weight)
	assert.Equal(t, 0.35, cfg.Search.SemanticWeight)
}
