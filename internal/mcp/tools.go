package mcp

// This file defines the JSON input/output schemas for the thirteen tools the
// Tool Endpoint Router exposes. Handlers live in server.go; mcp.AddTool
// derives each tool's JSON schema from these struct tags the same way the
// teacher's tool surface did.

// ServerInfoInput is the (empty) input for get_server_info.
type ServerInfoInput struct{}

// ServerInfoOutput reports runtime, model, and folder identity.
type ServerInfoOutput struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	RootPath      string `json:"root_path"`
	FolderName    string `json:"folder_name"`
	ModelName     string `json:"model_name"`
	ModelDimensions int  `json:"model_dimensions"`
	EmbedderAvailable bool `json:"embedder_available"`
	FileCount     int    `json:"file_count"`
	ChunkCount    int    `json:"chunk_count"`
}

// ListFoldersInput lists the top-level subfolders of the indexed root.
type ListFoldersInput struct {
	MaxTokens         int    `json:"max_tokens,omitempty" jsonschema:"approximate response size budget in tokens"`
	ContinuationToken string `json:"continuation_token,omitempty" jsonschema:"opaque token from a previous truncated response"`
}

// FolderEntry describes one top-level subfolder.
type FolderEntry struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
}

// ListFoldersOutput is the paginated folder listing.
type ListFoldersOutput struct {
	Folders []FolderEntry `json:"folders"`
	HasMore bool          `json:"has_more"`
	Token   string        `json:"token,omitempty"`
}

// ListDocumentsInput lists documents directly under one folder (non-recursive).
type ListDocumentsInput struct {
	Folder            string `json:"folder" jsonschema:"folder path relative to root; empty string means the root itself"`
	MaxTokens         int    `json:"max_tokens,omitempty" jsonschema:"approximate response size budget in tokens"`
	ContinuationToken string `json:"continuation_token,omitempty" jsonschema:"opaque token from a previous truncated response"`
}

// DocumentEntry summarizes one document without loading its content.
type DocumentEntry struct {
	DocumentID string `json:"document_id"`
	Format     string `json:"format"`
	Size       int64  `json:"size"`
	ModTime    string `json:"mod_time"`
}

// ListDocumentsOutput is the paginated document listing.
type ListDocumentsOutput struct {
	Documents []DocumentEntry `json:"documents"`
	HasMore   bool            `json:"has_more"`
	Token     string          `json:"token,omitempty"`
}

// DocumentOutlineInput requests a format-specific structural outline.
type DocumentOutlineInput struct {
	DocumentID string `json:"document_id" jsonschema:"relative path identifying the document"`
}

// DocumentOutlineOutput carries whichever outline section applies to the
// document's format; the others are left empty.
type DocumentOutlineOutput struct {
	DocumentID string        `json:"document_id"`
	Format     string        `json:"format"`
	Headings   []string      `json:"headings,omitempty"`   // text/markdown/html
	Sheets     []SheetOutline `json:"sheets,omitempty"`     // excel
	Slides     int           `json:"slide_count,omitempty"` // powerpoint
	Pages      int           `json:"page_count,omitempty"`  // pdf
	Paragraphs int           `json:"paragraph_count,omitempty"` // word
}

// SheetOutline summarizes one worksheet's dimensions.
type SheetOutline struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// DocumentDataInput requests a document's full parsed content.
type DocumentDataInput struct {
	DocumentID string `json:"document_id" jsonschema:"relative path identifying the document"`
	Format     string `json:"format,omitempty" jsonschema:"expected format; accepted but not compared with the stored format"`
}

// DocumentDataOutput carries the parsed content and a summary of its metadata.
type DocumentDataOutput struct {
	DocumentID string `json:"document_id"`
	Format     string `json:"format"`
	Content    string `json:"content"`
	Size       int64  `json:"size"`
	ModTime    string `json:"mod_time"`
}

// SheetDataInput requests a range extract from one worksheet.
type SheetDataInput struct {
	DocumentID string `json:"document_id" jsonschema:"relative path identifying the spreadsheet document"`
	Sheet      string `json:"sheet" jsonschema:"worksheet name"`
	Range      string `json:"range,omitempty" jsonschema:"A1-style range, e.g. A1:D20; empty means the whole sheet"`
}

// SheetDataOutput is the extracted cell matrix rendered as CSV rows.
type SheetDataOutput struct {
	DocumentID string   `json:"document_id"`
	Sheet      string   `json:"sheet"`
	Rows       []string `json:"rows"`
}

// SlidesInput requests slide text (and notes) from a presentation.
type SlidesInput struct {
	DocumentID      string `json:"document_id" jsonschema:"relative path identifying the presentation document"`
	SlideRange      string `json:"slide_range,omitempty" jsonschema:"1-based inclusive range, e.g. 1-5; empty means all slides"`
	IncludeNotes    bool   `json:"include_notes,omitempty"`
	IncludeComments bool   `json:"include_comments,omitempty"`
}

// SlideOutput is one slide's extracted text.
type SlideOutput struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Notes    string   `json:"notes,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

// SlidesOutput carries the requested slide range.
type SlidesOutput struct {
	DocumentID string        `json:"document_id"`
	Slides     []SlideOutput `json:"slides"`
}

// PagesInput requests page text from a PDF.
type PagesInput struct {
	DocumentID string `json:"document_id" jsonschema:"relative path identifying the PDF document"`
	PageRange  string `json:"page_range,omitempty" jsonschema:"1-based inclusive range, e.g. 1-10; empty means all pages"`
}

// PageOutput is one page's extracted text.
type PageOutput struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// PagesOutput carries the requested page range.
type PagesOutput struct {
	DocumentID string       `json:"document_id"`
	Pages      []PageOutput `json:"pages"`
}

// ChunksInput lazily loads one or more chunks by id.
type ChunksInput struct {
	ChunkIDs []string `json:"chunk_ids" jsonschema:"ids previously returned by search"`
}

// ChunkOutput is one chunk's full content.
type ChunkOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Readability float64 `json:"readability,omitempty"`
}

// ChunksOutput carries the requested chunks; missing ids are silently
// omitted so callers can batch-request IDs without checking existence first.
type ChunksOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
}

// SearchToolInput is the input for the search tool (vector similarity over
// chunks).
type SearchToolInput struct {
	Query         string   `json:"query" jsonschema:"the search query to execute"`
	TopK          int      `json:"top_k,omitempty" jsonschema:"maximum number of results, default 10"`
	MinSimilarity float64  `json:"min_similarity,omitempty" jsonschema:"minimum similarity score (0-1) for a result to be included"`
	Folder        string   `json:"folder,omitempty" jsonschema:"restrict results to documents under this folder prefix"`
	DocumentTypes []string `json:"document_types,omitempty" jsonschema:"restrict results to these file extensions, e.g. [\".md\", \".pdf\"]"`
}

// SearchResultEntry is one ranked chunk hit. Content is not included —
// callers load it lazily via get_chunks, keeping search itself O(top_k) I/O
// regardless of how large the matched chunks are.
type SearchResultEntry struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_path"`
	ChunkIndex   int     `json:"chunk_index"`
	Similarity   float64 `json:"similarity"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// SearchToolOutput carries ranked results.
type SearchToolOutput struct {
	Results []SearchResultEntry `json:"results"`
}

// EmbeddingInput requests the vector for a chunk or document.
type EmbeddingInput struct {
	Target string `json:"target" jsonschema:"a chunk id or a document id (relative path)"`
}

// EmbeddingOutput carries the raw vector.
type EmbeddingOutput struct {
	Target     string    `json:"target"`
	Dimensions int       `json:"dimensions"`
	Vector     []float32 `json:"vector"`
}

// StatusInput is the (empty) input for get_status.
type StatusInput struct{}

// StatusOutput reports indexing progress counters.
type StatusOutput struct {
	Status         string  `json:"status"`
	Stage          string  `json:"stage,omitempty"`
	FilesTotal     int     `json:"files_total"`
	FilesProcessed int     `json:"files_processed"`
	ChunksIndexed  int     `json:"chunks_indexed"`
	ProgressPct    float64 `json:"progress_pct"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

// RefreshDocumentInput forces re-indexing of one document.
type RefreshDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"relative path identifying the document to refresh"`
}

// RefreshDocumentOutput acknowledges the refresh request.
type RefreshDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Queued     bool   `json:"queued"`
}
