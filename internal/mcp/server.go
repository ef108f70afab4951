package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/amanmcp/internal/async"
	"github.com/Aman-CERP/amanmcp/internal/config"
	"github.com/Aman-CERP/amanmcp/internal/embed"
	"github.com/Aman-CERP/amanmcp/internal/index"
	"github.com/Aman-CERP/amanmcp/internal/parse"
	"github.com/Aman-CERP/amanmcp/internal/search"
	"github.com/Aman-CERP/amanmcp/internal/store"
	"github.com/Aman-CERP/amanmcp/internal/telemetry"
	"github.com/Aman-CERP/amanmcp/internal/watcher"
	"github.com/Aman-CERP/amanmcp/pkg/version"
)

// Server is the MCP server for AmanMCP.
// It bridges AI clients (Claude Code, Cursor) with the hybrid search engine
// and the document store built for one indexed folder.
type Server struct {
	mcp      *mcp.Server
	engine   search.SearchEngine
	metadata store.MetadataStore
	embedder embed.Embedder // Embedder for capability signaling
	parsers  *parse.Registry
	config   *config.Config
	logger   *slog.Logger

	// Project identification for resource operations
	projectID string
	rootPath  string

	// coordinator handles refresh_document; nil disables that tool's effect
	// (the call is acknowledged but not queued).
	coordinator *index.Coordinator

	// Background indexing progress (nil if not indexing)
	indexProgress *async.IndexProgress

	// Query telemetry (optional, set via SetMetrics)
	metrics *telemetry.QueryMetrics

	mu sync.RWMutex
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// ResourceInfo contains information about a resource.
type ResourceInfo struct {
	URI      string
	Name     string
	MIMEType string
}

// ResourceContent contains the content of a resource.
type ResourceContent struct {
	URI      string
	Content  string
	MIMEType string
}

// NewServer creates a new MCP server bridging the given folder's search
// engine and metadata store to the tool endpoint surface. The embedder is
// used for capability signaling and the get_embedding tool; it may be nil,
// in which case both report unavailable.
func NewServer(engine search.SearchEngine, metadata store.MetadataStore, embedder embed.Embedder, cfg *config.Config, rootPath string) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if metadata == nil {
		return nil, errors.New("metadata store is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		engine:   engine,
		metadata: metadata,
		embedder: embedder, // May be nil - will report as unavailable
		parsers:  parse.NewRegistry(),
		config:   cfg,
		rootPath: rootPath,
		logger:   slog.Default(),
	}

	// Create MCP server with implementation info
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "AmanMCP",
			Version: version.Version,
		},
		nil, // ServerOptions - capabilities are inferred from registered tools/resources
	)

	// Register tools
	s.registerTools()

	return s, nil
}

// SetProject records the project identity used for resource and document
// lookups (GetFileByPath, ListFiles, ...).
func (s *Server) SetProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = projectID
}

// SetCoordinator wires the index coordinator that backs refresh_document.
// Without one, refresh_document acknowledges the request but leaves the
// index unchanged.
func (s *Server) SetCoordinator(c *index.Coordinator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinator = c
}

// SetIndexProgress sets the index progress tracker for background indexing.
// This enables the server to report indexing progress via get_status and
// return appropriate messages when search is called during indexing.
func (s *Server) SetIndexProgress(progress *async.IndexProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexProgress = progress
}

// SetMetrics sets the query metrics collector for telemetry.
// When set, a query_metrics resource is registered.
func (s *Server) SetMetrics(m *telemetry.QueryMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m

	// Register query_metrics resource if metrics is provided
	if m != nil {
		s.registerQueryMetricsResource()
	}
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "AmanMCP", version.Version
}

// Capabilities returns whether tools and resources are enabled.
func (s *Server) Capabilities() (hasTools, hasResources bool) {
	return true, true
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "get_server_info", Description: "Reports the indexed folder's identity, embedder model, and document/chunk counts."},
		{Name: "list_folders", Description: "Lists the top-level subfolders of the indexed root."},
		{Name: "list_documents", Description: "Lists documents directly under one folder, non-recursive."},
		{Name: "get_document_outline", Description: "Returns a format-specific structural outline (headings, sheets, slides, or pages) without loading full content."},
		{Name: "get_document_data", Description: "Returns a document's full parsed content."},
		{Name: "get_sheet_data", Description: "Returns a cell range from one worksheet of a spreadsheet document."},
		{Name: "get_slides", Description: "Returns slide text and speaker notes from a presentation document; slide comments are not extracted."},
		{Name: "get_pages", Description: "Returns page text from a PDF document."},
		{Name: "get_chunks", Description: "Lazily loads one or more chunks by id, as previously returned by search."},
		{Name: "search", Description: "Hybrid BM25 + semantic search over indexed document chunks. Returns ranked hits without content; load content via get_chunks."},
		{Name: "get_embedding", Description: "Returns the raw embedding vector for a chunk or document."},
		{Name: "get_status", Description: "Reports background indexing progress."},
		{Name: "refresh_document", Description: "Forces re-indexing of one document."},
	}
}

// registerTools registers all thirteen tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	for _, t := range s.ListTools() {
		t := t
		s.logger.Debug("Registered tool", slog.String("name", t.Name))
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_server_info",
		Description: "Reports the indexed folder's identity, embedder model, and document/chunk counts.",
	}, s.mcpGetServerInfoHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_folders",
		Description: "Lists the top-level subfolders of the indexed root.",
	}, s.mcpListFoldersHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_documents",
		Description: "Lists documents directly under one folder, non-recursive.",
	}, s.mcpListDocumentsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_document_outline",
		Description: "Returns a format-specific structural outline without loading full content.",
	}, s.mcpGetDocumentOutlineHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_document_data",
		Description: "Returns a document's full parsed content.",
	}, s.mcpGetDocumentDataHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_sheet_data",
		Description: "Returns a cell range from one worksheet of a spreadsheet document.",
	}, s.mcpGetSheetDataHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_slides",
		Description: "Returns slide text and speaker notes from a presentation document; slide comments are not extracted.",
	}, s.mcpGetSlidesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_pages",
		Description: "Returns page text from a PDF document.",
	}, s.mcpGetPagesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_chunks",
		Description: "Lazily loads one or more chunks by id, as previously returned by search.",
	}, s.mcpGetChunksHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Hybrid BM25 + semantic search over indexed document chunks. Returns ranked hits without content; load content via get_chunks.",
	}, s.mcpSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_embedding",
		Description: "Returns the raw embedding vector for a chunk or document.",
	}, s.mcpGetEmbeddingHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_status",
		Description: "Reports background indexing progress.",
	}, s.mcpGetStatusHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "refresh_document",
		Description: "Forces re-indexing of one document.",
	}, s.mcpRefreshDocumentHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 13))
}

// mcpGetServerInfoHandler implements get_server_info.
func (s *Server) mcpGetServerInfoHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ServerInfoInput) (
	*mcp.CallToolResult, ServerInfoOutput, error,
) {
	s.mu.RLock()
	rootPath := s.rootPath
	projectID := s.projectID
	embedder := s.embedder
	s.mu.RUnlock()

	out := ServerInfoOutput{
		Name:       "AmanMCP",
		Version:    version.Version,
		RootPath:   rootPath,
		FolderName: filepath.Base(rootPath),
	}

	if embedder != nil {
		out.ModelName = embedder.ModelName()
		out.ModelDimensions = embedder.Dimensions()
		out.EmbedderAvailable = embedder.Available(ctx)
	}

	if paths, err := s.metadata.GetFilePathsByProject(ctx, projectID); err == nil {
		out.FileCount = len(paths)
	}
	if stats := s.engine.Stats(); stats != nil {
		out.ChunkCount = stats.VectorCount
	}

	return nil, out, nil
}

// mcpListFoldersHandler implements list_folders.
func (s *Server) mcpListFoldersHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListFoldersInput) (
	*mcp.CallToolResult, ListFoldersOutput, error,
) {
	s.mu.RLock()
	projectID := s.projectID
	s.mu.RUnlock()

	paths, err := s.metadata.GetFilePathsByProject(ctx, projectID)
	if err != nil {
		return nil, ListFoldersOutput{}, MapError(err)
	}

	counts := make(map[string]int)
	for _, p := range paths {
		top := topLevelFolder(p)
		if top == "" {
			continue
		}
		counts[top]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	offset, err := decodeContinuationToken(input.ContinuationToken)
	if err != nil {
		return nil, ListFoldersOutput{}, NewInvalidParamsError(err.Error())
	}

	selected, hasMore, nextToken := paginateStrings(names, offset, input.MaxTokens)

	out := ListFoldersOutput{
		Folders: make([]FolderEntry, 0, len(selected)),
		HasMore: hasMore,
		Token:   nextToken,
	}
	for _, name := range selected {
		out.Folders = append(out.Folders, FolderEntry{Name: name, DocumentCount: counts[name]})
	}

	return nil, out, nil
}

// topLevelFolder returns the first path segment of a relative path, or ""
// if the path has no folder component (it lives at the root).
func topLevelFolder(relPath string) string {
	relPath = strings.Trim(filepath.ToSlash(relPath), "/")
	idx := strings.Index(relPath, "/")
	if idx < 0 {
		return ""
	}
	return relPath[:idx]
}

// mcpListDocumentsHandler implements list_documents.
func (s *Server) mcpListDocumentsHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListDocumentsInput) (
	*mcp.CallToolResult, ListDocumentsOutput, error,
) {
	s.mu.RLock()
	projectID := s.projectID
	s.mu.RUnlock()

	paths, err := s.metadata.GetFilePathsByProject(ctx, projectID)
	if err != nil {
		return nil, ListDocumentsOutput{}, MapError(err)
	}

	folder := NormalizeScope(input.Folder)
	var direct []string
	for _, p := range paths {
		if documentFolder(p) == folder {
			direct = append(direct, p)
		}
	}
	sort.Strings(direct)

	offset, err := decodeContinuationToken(input.ContinuationToken)
	if err != nil {
		return nil, ListDocumentsOutput{}, NewInvalidParamsError(err.Error())
	}

	selected, hasMore, nextToken := paginateStrings(direct, offset, input.MaxTokens)

	out := ListDocumentsOutput{
		Documents: make([]DocumentEntry, 0, len(selected)),
		HasMore:   hasMore,
		Token:     nextToken,
	}
	for _, p := range selected {
		file, err := s.metadata.GetFileByPath(ctx, projectID, p)
		if err != nil || file == nil {
			continue
		}
		out.Documents = append(out.Documents, DocumentEntry{
			DocumentID: file.Path,
			Format:     string(file.Format),
			Size:       file.Size,
			ModTime:    file.ModTime.Format(time.RFC3339),
		})
	}

	return nil, out, nil
}

// documentFolder returns the folder a relative path lives directly under,
// or "" for a path at the root.
func documentFolder(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." {
		return ""
	}
	return strings.Trim(dir, "/")
}

// NormalizeScope normalizes a user-supplied folder scope the same way
// documentFolder normalizes a document's folder, so the two are directly
// comparable.
func NormalizeScope(folder string) string {
	folder = filepath.ToSlash(strings.Trim(folder, "/"))
	if folder == "." {
		return ""
	}
	return folder
}

// readDocument loads a document's file record and raw bytes, validating the
// relative path along the way.
func (s *Server) readDocument(ctx context.Context, documentID string) (*store.File, []byte, error) {
	if !s.isValidPath(documentID) {
		return nil, nil, NewInvalidParamsError(fmt.Sprintf("invalid document_id: %s", documentID))
	}

	s.mu.RLock()
	projectID := s.projectID
	rootPath := s.rootPath
	s.mu.RUnlock()

	file, err := s.metadata.GetFileByPath(ctx, projectID, documentID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	if file == nil {
		return nil, nil, &MCPError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not indexed: %s", documentID)}
	}

	data, err := os.ReadFile(filepath.Join(rootPath, documentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &MCPError{Code: ErrCodeFileNotFound, Message: fmt.Sprintf("document no longer on disk: %s", documentID)}
		}
		return nil, nil, MapError(err)
	}

	return file, data, nil
}

// mcpGetDocumentOutlineHandler implements get_document_outline.
func (s *Server) mcpGetDocumentOutlineHandler(ctx context.Context, _ *mcp.CallToolRequest, input DocumentOutlineInput) (
	*mcp.CallToolResult, DocumentOutlineOutput, error,
) {
	file, data, err := s.readDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutlineOutput{}, err
	}

	parsed, err := s.parsers.Parse(ctx, input.DocumentID, data)
	if err != nil {
		return nil, DocumentOutlineOutput{}, &MCPError{Code: ErrCodeParse, Message: err.Error()}
	}

	out := DocumentOutlineOutput{
		DocumentID: input.DocumentID,
		Format:     string(file.Format),
	}

	switch md := parsed.Metadata.(type) {
	case parse.ExcelMetadata:
		for _, sheet := range md.Sheets {
			out.Sheets = append(out.Sheets, SheetOutline{Name: sheet.Name, Rows: sheet.Rows, Cols: sheet.Cols})
		}
	case parse.PowerPointMetadata:
		out.Slides = len(md.Slides)
	case parse.PDFMetadata:
		out.Pages = len(md.Pages)
	case parse.WordMetadata:
		out.Paragraphs = len(md.Paragraphs)
	default:
		out.Headings = extractHeadings(parsed.Content)
	}

	return nil, out, nil
}

// mcpGetDocumentDataHandler implements get_document_data.
func (s *Server) mcpGetDocumentDataHandler(ctx context.Context, _ *mcp.CallToolRequest, input DocumentDataInput) (
	*mcp.CallToolResult, DocumentDataOutput, error,
) {
	file, data, err := s.readDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentDataOutput{}, err
	}

	parsed, err := s.parsers.Parse(ctx, input.DocumentID, data)
	if err != nil {
		return nil, DocumentDataOutput{}, &MCPError{Code: ErrCodeParse, Message: err.Error()}
	}

	return nil, DocumentDataOutput{
		DocumentID: input.DocumentID,
		Format:     string(file.Format),
		Content:    parsed.Content,
		Size:       file.Size,
		ModTime:    file.ModTime.Format(time.RFC3339),
	}, nil
}

// mcpGetSheetDataHandler implements get_sheet_data.
func (s *Server) mcpGetSheetDataHandler(ctx context.Context, _ *mcp.CallToolRequest, input SheetDataInput) (
	*mcp.CallToolResult, SheetDataOutput, error,
) {
	_, data, err := s.readDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, SheetDataOutput{}, err
	}

	parsed, err := s.parsers.Parse(ctx, input.DocumentID, data)
	if err != nil {
		return nil, SheetDataOutput{}, &MCPError{Code: ErrCodeParse, Message: err.Error()}
	}

	md, ok := parsed.Metadata.(parse.ExcelMetadata)
	if !ok {
		return nil, SheetDataOutput{}, NewInvalidParamsError(fmt.Sprintf("%s is not a spreadsheet document", input.DocumentID))
	}

	var sheet *parse.SheetInfo
	for i := range md.Sheets {
		if md.Sheets[i].Name == input.Sheet {
			sheet = &md.Sheets[i]
			break
		}
	}
	if sheet == nil {
		return nil, SheetDataOutput{}, &MCPError{Code: ErrCodeExtraction, Message: fmt.Sprintf("sheet not found: %s", input.Sheet)}
	}

	startRow, endRow, _ := parseRange(rangeRows(input.Range), len(sheet.CSV))
	if endRow == 0 {
		endRow = len(sheet.CSV)
	}
	if startRow < 1 {
		startRow = 1
	}
	if endRow > len(sheet.CSV) {
		endRow = len(sheet.CSV)
	}

	var rows []string
	if startRow <= endRow {
		rows = sheet.CSV[startRow-1 : endRow]
	}

	return nil, SheetDataOutput{
		DocumentID: input.DocumentID,
		Sheet:      input.Sheet,
		Rows:       rows,
	}, nil
}

// rangeRows extracts the row portion of an A1-style range (e.g. "A1:D20"
// becomes "1-20"); an empty range passes through unchanged.
func rangeRows(r string) string {
	if r == "" {
		return ""
	}
	parts := strings.SplitN(r, ":", 2)
	start := firstDigits(parts[0])
	if len(parts) == 1 {
		return start
	}
	end := firstDigits(parts[1])
	if start == "" || end == "" {
		return ""
	}
	return start + "-" + end
}

func firstDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mcpGetSlidesHandler implements get_slides.
func (s *Server) mcpGetSlidesHandler(ctx context.Context, _ *mcp.CallToolRequest, input SlidesInput) (
	*mcp.CallToolResult, SlidesOutput, error,
) {
	_, data, err := s.readDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, SlidesOutput{}, err
	}

	parsed, err := s.parsers.Parse(ctx, input.DocumentID, data)
	if err != nil {
		return nil, SlidesOutput{}, &MCPError{Code: ErrCodeParse, Message: err.Error()}
	}

	md, ok := parsed.Metadata.(parse.PowerPointMetadata)
	if !ok {
		return nil, SlidesOutput{}, NewInvalidParamsError(fmt.Sprintf("%s is not a presentation document", input.DocumentID))
	}

	start, end, _ := parseRange(input.SlideRange, len(md.Slides))

	out := SlidesOutput{DocumentID: input.DocumentID}
	for _, slide := range md.Slides {
		if slide.Index < start || slide.Index > end {
			continue
		}
		entry := SlideOutput{Index: slide.Index, Text: slide.Text}
		if input.IncludeNotes {
			entry.Notes = slide.Notes
		}
		if input.IncludeComments {
			entry.Comments = slide.Comments
		}
		out.Slides = append(out.Slides, entry)
	}

	return nil, out, nil
}

// mcpGetPagesHandler implements get_pages.
func (s *Server) mcpGetPagesHandler(ctx context.Context, _ *mcp.CallToolRequest, input PagesInput) (
	*mcp.CallToolResult, PagesOutput, error,
) {
	_, data, err := s.readDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, PagesOutput{}, err
	}

	parsed, err := s.parsers.Parse(ctx, input.DocumentID, data)
	if err != nil {
		return nil, PagesOutput{}, &MCPError{Code: ErrCodeParse, Message: err.Error()}
	}

	md, ok := parsed.Metadata.(parse.PDFMetadata)
	if !ok {
		return nil, PagesOutput{}, NewInvalidParamsError(fmt.Sprintf("%s is not a PDF document", input.DocumentID))
	}

	start, end, _ := parseRange(input.PageRange, len(md.Pages))

	out := PagesOutput{DocumentID: input.DocumentID}
	for _, page := range md.Pages {
		if page.Index < start || page.Index > end {
			continue
		}
		out.Pages = append(out.Pages, PageOutput{Index: page.Index, Text: page.Text})
	}

	return nil, out, nil
}

// mcpGetChunksHandler implements get_chunks.
func (s *Server) mcpGetChunksHandler(ctx context.Context, _ *mcp.CallToolRequest, input ChunksInput) (
	*mcp.CallToolResult, ChunksOutput, error,
) {
	chunks, err := s.metadata.GetChunks(ctx, input.ChunkIDs)
	if err != nil {
		return nil, ChunksOutput{}, MapError(err)
	}

	out := ChunksOutput{Chunks: make([]ChunkOutput, 0, len(chunks))}
	for _, c := range chunks {
		if c == nil {
			continue
		}
		out.Chunks = append(out.Chunks, ChunkOutput{
			ChunkID:     c.ID,
			DocumentID:  c.FilePath,
			ChunkIndex:  c.ChunkIndex,
			Content:     c.Content,
			Readability: c.Readability,
		})
	}

	return nil, out, nil
}

// Search runs the search tool directly, without going through the MCP
// transport. It exists for in-process callers such as the validation
// harness that need to drive the server's search behavior exactly as an
// MCP client would, without standing up a transport.
func (s *Server) Search(ctx context.Context, input SearchToolInput) (SearchToolOutput, error) {
	_, out, err := s.mcpSearchHandler(ctx, nil, input)
	return out, err
}

// mcpSearchHandler implements search.
func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchToolInput) (
	*mcp.CallToolResult, SearchToolOutput, error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchToolOutput{}, NewInvalidParamsError("query parameter is required and must be a non-empty string")
	}

	s.mu.RLock()
	progress := s.indexProgress
	s.mu.RUnlock()
	if progress != nil && progress.IsIndexing() {
		snap := progress.Snapshot()
		return nil, SearchToolOutput{}, &MCPError{
			Code: ErrCodeIndexNotFound,
			Message: fmt.Sprintf("indexing in progress (%.1f%%, stage %s); search results may be incomplete",
				snap.ProgressPct, snap.Stage),
		}
	}

	limit := clampLimit(input.TopK, 10, 1, 50)

	opts := search.SearchOptions{
		Limit:         limit,
		DocumentTypes: input.DocumentTypes,
	}
	if input.Folder != "" {
		opts.Scopes = []string{input.Folder}
	}

	requestID := generateRequestID()
	start := time.Now()
	s.logger.Info("search started", slog.String("request_id", requestID), slog.String("query", input.Query), slog.Int("limit", limit))

	results, err := s.engine.Search(ctx, input.Query, opts)
	if err != nil {
		s.logger.Error("search failed", slog.String("request_id", requestID), slog.String("error", err.Error()))
		return nil, SearchToolOutput{}, MapError(err)
	}
	s.logger.Info("search completed", slog.String("request_id", requestID), slog.Duration("duration", time.Since(start)), slog.Int("result_count", len(results)))

	out := SearchToolOutput{Results: make([]SearchResultEntry, 0, len(results))}
	for _, r := range results {
		if r.Chunk == nil {
			continue
		}
		if input.MinSimilarity > 0 && r.Score < input.MinSimilarity {
			continue
		}
		out.Results = append(out.Results, SearchResultEntry{
			ChunkID:      r.Chunk.ID,
			DocumentID:   r.Chunk.FilePath,
			ChunkIndex:   r.Chunk.ChunkIndex,
			Similarity:   r.Score,
			MatchedTerms: r.MatchedTerms,
		})
	}

	return nil, out, nil
}

// mcpGetEmbeddingHandler implements get_embedding.
func (s *Server) mcpGetEmbeddingHandler(ctx context.Context, _ *mcp.CallToolRequest, input EmbeddingInput) (
	*mcp.CallToolResult, EmbeddingOutput, error,
) {
	if input.Target == "" {
		return nil, EmbeddingOutput{}, NewInvalidParamsError("target is required")
	}

	s.mu.RLock()
	embedder := s.embedder
	s.mu.RUnlock()
	if embedder == nil {
		return nil, EmbeddingOutput{}, &MCPError{Code: ErrCodeEmbeddingFailed, Message: "no embedder configured"}
	}

	// A chunk id is a content hash; prefer looking it up directly, then fall
	// back to treating the target as a document id and embedding its content.
	if chunk, err := s.metadata.GetChunk(ctx, input.Target); err == nil && chunk != nil {
		vec, err := embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, EmbeddingOutput{}, &MCPError{Code: ErrCodeEmbeddingFailed, Message: err.Error()}
		}
		return nil, EmbeddingOutput{Target: input.Target, Dimensions: embedder.Dimensions(), Vector: vec}, nil
	}

	_, data, err := s.readDocument(ctx, input.Target)
	if err != nil {
		return nil, EmbeddingOutput{}, err
	}
	parsed, err := s.parsers.Parse(ctx, input.Target, data)
	if err != nil {
		return nil, EmbeddingOutput{}, &MCPError{Code: ErrCodeParse, Message: err.Error()}
	}
	vec, err := embedder.Embed(ctx, parsed.Content)
	if err != nil {
		return nil, EmbeddingOutput{}, &MCPError{Code: ErrCodeEmbeddingFailed, Message: err.Error()}
	}

	return nil, EmbeddingOutput{Target: input.Target, Dimensions: embedder.Dimensions(), Vector: vec}, nil
}

// mcpGetStatusHandler implements get_status.
func (s *Server) mcpGetStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult, StatusOutput, error,
) {
	s.mu.RLock()
	progress := s.indexProgress
	s.mu.RUnlock()

	if progress == nil {
		return nil, StatusOutput{Status: string(async.StatusReady), ProgressPct: 100}, nil
	}

	snap := progress.Snapshot()
	return nil, StatusOutput{
		Status:         snap.Status,
		Stage:          snap.Stage,
		FilesTotal:     snap.FilesTotal,
		FilesProcessed: snap.FilesProcessed,
		ChunksIndexed:  snap.ChunksIndexed,
		ProgressPct:    snap.ProgressPct,
		ElapsedSeconds: snap.ElapsedSeconds,
		ErrorMessage:   snap.ErrorMessage,
	}, nil
}

// mcpRefreshDocumentHandler implements refresh_document.
func (s *Server) mcpRefreshDocumentHandler(ctx context.Context, _ *mcp.CallToolRequest, input RefreshDocumentInput) (
	*mcp.CallToolResult, RefreshDocumentOutput, error,
) {
	if !s.isValidPath(input.DocumentID) {
		return nil, RefreshDocumentOutput{}, NewInvalidParamsError(fmt.Sprintf("invalid document_id: %s", input.DocumentID))
	}

	s.mu.RLock()
	coordinator := s.coordinator
	s.mu.RUnlock()

	if coordinator == nil {
		return nil, RefreshDocumentOutput{DocumentID: input.DocumentID, Queued: false}, nil
	}

	event := watcher.FileEvent{
		Path:      input.DocumentID,
		Operation: watcher.OpModify,
		Timestamp: time.Now(),
	}
	if err := coordinator.HandleEvents(ctx, []watcher.FileEvent{event}); err != nil {
		return nil, RefreshDocumentOutput{}, MapError(err)
	}

	return nil, RefreshDocumentOutput{DocumentID: input.DocumentID, Queued: true}, nil
}

// ListResources returns all available resources.
func (s *Server) ListResources(ctx context.Context, cursor string) ([]ResourceInfo, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.metadata.GetChangedFiles(ctx, s.projectID, emptyTime)
	if err != nil {
		return nil, "", err
	}

	resources := make([]ResourceInfo, 0, len(files))
	for _, f := range files {
		resources = append(resources, ResourceInfo{
			URI:      fmt.Sprintf("file://%s", f.Path),
			Name:     f.Path,
			MIMEType: MimeTypeForPath(f.Path),
		})
	}

	return resources, "", nil // No pagination for now
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (*ResourceContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunkID string
	if strings.HasPrefix(uri, "chunk://") {
		chunkID = strings.TrimPrefix(uri, "chunk://")
	} else if strings.HasPrefix(uri, "file://") {
		return nil, NewResourceNotFoundError(uri)
	} else {
		return nil, NewResourceNotFoundError(uri)
	}

	chunk, err := s.metadata.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, NewResourceNotFoundError(uri)
	}

	return &ResourceContent{
		URI:      uri,
		Content:  chunk.Content,
		MIMEType: MimeTypeForPath(chunk.FilePath),
	}, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", transport),
		slog.String("addr", addr))

	switch transport {
	case "stdio":
		s.logger.Debug("Using stdio transport for JSON-RPC")
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	case "sse":
		return fmt.Errorf("SSE transport not yet implemented")
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	// The MCP server doesn't have a Close method - it stops when context is canceled
	return nil
}

// emptyTime is a zero time value for listing all files.
var emptyTime = time.Time{}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// marshalIndent pretty-prints v as JSON with two-space indentation, the
// same layout resources.go produces by calling json.MarshalIndent directly.
func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
