package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// StoreConfig configures the metadata store's SQLite connection.
type StoreConfig struct {
	// CacheSizeMB is the SQLite page cache size in megabytes (default: 64).
	CacheSizeMB int
}

// DefaultStoreConfig returns sensible defaults for the metadata store.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{CacheSizeMB: 64}
}

// SQLiteStore implements MetadataStore on top of modernc.org/sqlite.
// Like SQLiteBM25Index, it runs in WAL mode with a single writer
// connection to avoid SQLITE_BUSY under concurrent access.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

var _ MetadataStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the metadata database at dbPath with
// default configuration.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(dbPath, DefaultStoreConfig())
}

// NewSQLiteStoreWithConfig opens (or creates) the metadata database at
// dbPath with the given configuration.
func NewSQLiteStoreWithConfig(dbPath string, cfg StoreConfig) (*SQLiteStore, error) {
	if cfg.CacheSizeMB <= 0 {
		cfg.CacheSizeMB = DefaultStoreConfig().CacheSizeMB
	}

	var dsn string
	if dbPath == "" || dbPath == ":memory:" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention, matching SQLiteBM25Index.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = -%d", cfg.CacheSizeMB*1024),
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// DB exposes the underlying connection for callers that need it directly
// (e.g. integration tests, the vacuum/compaction path).
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		root_path TEXT NOT NULL,
		project_type TEXT,
		file_count INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		indexed_at INTEGER,
		version TEXT
	);

	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER,
		fingerprint TEXT,
		format TEXT,
		needs_reindex INTEGER NOT NULL DEFAULT 0,
		indexed_at INTEGER,
		UNIQUE(project_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
	CREATE INDEX IF NOT EXISTS idx_files_project_path ON files(project_id, path);
	CREATE INDEX IF NOT EXISTS idx_files_reindex ON files(project_id, needs_reindex);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
		file_path TEXT,
		content TEXT,
		format TEXT,
		chunk_index INTEGER NOT NULL DEFAULT 0,
		start_line INTEGER NOT NULL DEFAULT 0,
		end_line INTEGER NOT NULL DEFAULT 0,
		extraction_params_json TEXT,
		key_phrases_json TEXT,
		readability REAL NOT NULL DEFAULT 0,
		metadata_json TEXT,
		created_at INTEGER,
		updated_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id);

	CREATE TABLE IF NOT EXISTS chunk_embeddings (
		chunk_id TEXT PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
		vector BLOB NOT NULL,
		model TEXT
	);

	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (2);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- Project operations ---

func (s *SQLiteStore) SaveProject(ctx context.Context, project *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, root_path, project_type, file_count, chunk_count, indexed_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			root_path = excluded.root_path,
			project_type = excluded.project_type,
			file_count = excluded.file_count,
			chunk_count = excluded.chunk_count,
			indexed_at = excluded.indexed_at,
			version = excluded.version
	`, project.ID, project.Name, project.RootPath, project.ProjectType,
		project.FileCount, project.ChunkCount, timeToUnix(project.IndexedAt), project.Version)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, root_path, project_type, file_count, chunk_count, indexed_at, version
		FROM projects WHERE id = ?`, id)

	var p Project
	var indexedAt sql.NullInt64
	var projectType, version sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.RootPath, &projectType, &p.FileCount, &p.ChunkCount, &indexedAt, &version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.ProjectType = projectType.String
	p.Version = version.String
	p.IndexedAt = unixToTime(indexedAt.Int64)
	return &p, nil
}

func (s *SQLiteStore) UpdateProjectStats(ctx context.Context, id string, fileCount, chunkCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE projects SET file_count = ?, chunk_count = ? WHERE id = ?`,
		fileCount, chunkCount, id)
	if err != nil {
		return fmt.Errorf("failed to update project stats: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RefreshProjectStats(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	var fileCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE project_id = ?`, id).Scan(&fileCount); err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}

	var chunkCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks c JOIN files f ON c.file_id = f.id WHERE f.project_id = ?
	`, id).Scan(&chunkCount)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE projects SET file_count = ?, chunk_count = ?, indexed_at = ? WHERE id = ?`,
		fileCount, chunkCount, timeToUnix(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to refresh project stats: %w", err)
	}
	return nil
}

// --- File operations ---

func (s *SQLiteStore) SaveFiles(ctx context.Context, files []*File) error {
	if len(files) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (id, project_id, path, size, mod_time, fingerprint, format, needs_reindex, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, path) DO UPDATE SET
			id = excluded.id,
			size = excluded.size,
			mod_time = excluded.mod_time,
			fingerprint = excluded.fingerprint,
			format = excluded.format,
			needs_reindex = excluded.needs_reindex,
			indexed_at = excluded.indexed_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.ExecContext(ctx, f.ID, f.ProjectID, f.Path, f.Size,
			timeToUnix(f.ModTime), f.Fingerprint, string(f.Format), boolToInt(f.NeedsReindex),
			timeToUnix(f.IndexedAt)); err != nil {
			return fmt.Errorf("failed to save file %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetFileByPath(ctx context.Context, projectID, path string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, path, size, mod_time, fingerprint, format, needs_reindex, indexed_at
		FROM files WHERE project_id = ? AND path = ?`, projectID, path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (s *SQLiteStore) GetChangedFiles(ctx context.Context, projectID string, since time.Time) ([]*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, path, size, mod_time, fingerprint, format, needs_reindex, indexed_at
		FROM files WHERE project_id = ? AND mod_time > ? ORDER BY path`,
		projectID, timeToUnix(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query changed files: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (s *SQLiteStore) ListFiles(ctx context.Context, projectID string, cursor string, limit int) ([]*File, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, "", fmt.Errorf("store is closed")
	}

	if limit <= 0 {
		limit = 100
	}

	offset, err := decodeListCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, path, size, mod_time, fingerprint, format, needs_reindex, indexed_at
		FROM files WHERE project_id = ? ORDER BY path LIMIT ? OFFSET ?`,
		projectID, limit+1, offset)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(files) > limit {
		files = files[:limit]
		nextCursor = encodeListCursor(offset + limit)
	}

	return files, nextCursor, nil
}

func (s *SQLiteStore) GetFilePathsByProject(ctx context.Context, projectID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLiteStore) GetFilesForReconciliation(ctx context.Context, projectID string) (map[string]*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, path, size, mod_time, fingerprint, format, needs_reindex, indexed_at
		FROM files WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*File, len(files))
	for _, f := range files {
		result[f.Path] = f
	}
	return result, nil
}

func (s *SQLiteStore) ListFilePathsUnder(ctx context.Context, projectID, dirPrefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	dirPrefix = strings.TrimSuffix(dirPrefix, "/")

	var rows *sql.Rows
	var err error
	if dirPrefix == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT path FROM files WHERE project_id = ?`, projectID)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT path FROM files WHERE project_id = ? AND (path = ? OR path LIKE ? ESCAPE '\')`,
			projectID, dirPrefix, escapeLike(dirPrefix)+"/%")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.deleteFilesTx(ctx, `file_id IN (SELECT id FROM files WHERE id = ?)`, fileID, `id = ?`, fileID)
}

func (s *SQLiteStore) DeleteFilesByProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.deleteFilesTx(ctx,
		`file_id IN (SELECT id FROM files WHERE project_id = ?)`, projectID,
		`project_id = ?`, projectID)
}

// deleteFilesTx removes chunk_embeddings, chunks, and files in a single
// transaction so a reader never observes an orphaned chunk. Explicit even
// though the schema also declares ON DELETE CASCADE, since modernc.org/sqlite
// only enforces foreign keys when PRAGMA foreign_keys is set per-connection.
func (s *SQLiteStore) deleteFilesTx(ctx context.Context, embeddingWhere string, embeddingArg any, fileWhere string, fileArg any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM chunk_embeddings WHERE chunk_id IN (SELECT id FROM chunks WHERE %s)`, embeddingWhere),
		embeddingArg); err != nil {
		return fmt.Errorf("failed to delete chunk embeddings: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM chunks WHERE %s`, embeddingWhere), embeddingArg); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM files WHERE %s`, fileWhere), fileArg); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) MarkForReindex(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx, `UPDATE files SET needs_reindex = 1 WHERE id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("failed to mark file for reindex: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FilesNeedingReindex(ctx context.Context, projectID string) ([]*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, path, size, mod_time, fingerprint, format, needs_reindex, indexed_at
		FROM files WHERE project_id = ? AND needs_reindex = 1 ORDER BY path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files needing reindex: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

// --- Chunk operations ---

func (s *SQLiteStore) SaveChunks(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, file_id, file_path, content, format, chunk_index, start_line, end_line,
			extraction_params_json, key_phrases_json, readability, metadata_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_id = excluded.file_id,
			file_path = excluded.file_path,
			content = excluded.content,
			format = excluded.format,
			chunk_index = excluded.chunk_index,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			extraction_params_json = excluded.extraction_params_json,
			key_phrases_json = excluded.key_phrases_json,
			readability = excluded.readability,
			metadata_json = excluded.metadata_json,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		updatedAt := c.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.FileID, c.FilePath, c.Content, string(c.Format),
			c.ChunkIndex, c.StartLine, c.EndLine, c.ExtractionParamsJSON, c.KeyPhrasesJSON,
			c.Readability, encodeMetadata(c.Metadata), timeToUnix(createdAt), timeToUnix(updatedAt)); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetChunk(ctx context.Context, id string) (*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_id, file_path, content, format, chunk_index, start_line, end_line,
			extraction_params_json, key_phrases_json, readability, metadata_json, created_at, updated_at
		FROM chunks WHERE id = ?`, id)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetChunks(ctx context.Context, ids []string) ([]*Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, file_id, file_path, content, format, chunk_index, start_line, end_line,
			extraction_params_json, key_phrases_json, readability, metadata_json, created_at, updated_at
		FROM chunks WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

func (s *SQLiteStore) GetChunksByFile(ctx context.Context, fileID string) ([]*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_id, file_path, content, format, chunk_index, start_line, end_line,
			extraction_params_json, key_phrases_json, readability, metadata_json, created_at, updated_at
		FROM chunks WHERE file_id = ? ORDER BY chunk_index`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks by file: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

func (s *SQLiteStore) DeleteChunks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders, args := inClause(ids)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM chunk_embeddings WHERE chunk_id IN (%s)`, placeholders), args...); err != nil {
		return fmt.Errorf("failed to delete chunk embeddings: %w", err)
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM chunks WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if n, _ := res.RowsAffected(); n < int64(len(ids)) {
		slog.Warn("delete_chunks_partial", slog.Int("requested", len(ids)), slog.Int64("deleted", n))
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteChunksByFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunk_embeddings WHERE chunk_id IN (SELECT id FROM chunks WHERE file_id = ?)`, fileID); err != nil {
		return fmt.Errorf("failed to delete chunk embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	return tx.Commit()
}

// --- State operations ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", fmt.Errorf("store is closed")
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get state: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	return nil
}

// --- Embedding operations ---

func (s *SQLiteStore) SaveChunkEmbeddings(ctx context.Context, chunkIDs []string, embeddings [][]float32, model string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	if len(chunkIDs) != len(embeddings) {
		return fmt.Errorf("chunkIDs and embeddings length mismatch: %d vs %d", len(chunkIDs), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunk_embeddings (chunk_id, vector, model) VALUES (?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET vector = excluded.vector, model = excluded.model
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, id := range chunkIDs {
		if _, err := stmt.ExecContext(ctx, id, embeddingToBytes(embeddings[i]), model); err != nil {
			return fmt.Errorf("failed to save embedding for %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetAllEmbeddings(ctx context.Context) (map[string][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, vector FROM chunk_embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]float32)
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec := bytesToEmbedding(blob)
		if vec == nil {
			continue
		}
		result[id] = vec
	}
	return result, rows.Err()
}

func (s *SQLiteStore) GetEmbeddingStats(ctx context.Context) (withEmbedding, withoutEmbedding int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, 0, fmt.Errorf("store is closed")
	}

	if err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks c JOIN chunk_embeddings e ON c.id = e.chunk_id
	`).Scan(&withEmbedding); err != nil {
		return 0, 0, fmt.Errorf("failed to count chunks with embeddings: %w", err)
	}

	var total int
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count chunks: %w", err)
	}

	withoutEmbedding = total - withEmbedding
	return withEmbedding, withoutEmbedding, nil
}

// --- Checkpoint operations ---

const (
	stateKeyCheckpointExists = "checkpoint_exists"
)

func (s *SQLiteStore) SaveIndexCheckpoint(ctx context.Context, stage string, total, embeddedCount int, embedderModel string) error {
	if err := s.SetState(ctx, StateKeyCheckpointStage, stage); err != nil {
		return err
	}
	if err := s.SetState(ctx, StateKeyCheckpointTotal, strconv.Itoa(total)); err != nil {
		return err
	}
	if err := s.SetState(ctx, StateKeyCheckpointEmbedded, strconv.Itoa(embeddedCount)); err != nil {
		return err
	}
	if err := s.SetState(ctx, StateKeyCheckpointTimestamp, strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
		return err
	}
	if err := s.SetState(ctx, StateKeyCheckpointEmbedderModel, embedderModel); err != nil {
		return err
	}
	return s.SetState(ctx, stateKeyCheckpointExists, "1")
}

func (s *SQLiteStore) LoadIndexCheckpoint(ctx context.Context) (*IndexCheckpoint, error) {
	exists, err := s.GetState(ctx, stateKeyCheckpointExists)
	if err != nil {
		return nil, err
	}
	if exists != "1" {
		return nil, nil
	}

	stage, err := s.GetState(ctx, StateKeyCheckpointStage)
	if err != nil {
		return nil, err
	}
	if stage == "" || stage == "complete" {
		return nil, nil
	}

	totalStr, _ := s.GetState(ctx, StateKeyCheckpointTotal)
	embeddedStr, _ := s.GetState(ctx, StateKeyCheckpointEmbedded)
	tsStr, _ := s.GetState(ctx, StateKeyCheckpointTimestamp)
	model, _ := s.GetState(ctx, StateKeyCheckpointEmbedderModel)

	total, _ := strconv.Atoi(totalStr)
	embedded, _ := strconv.Atoi(embeddedStr)
	tsUnix, _ := strconv.ParseInt(tsStr, 10, 64)

	return &IndexCheckpoint{
		Stage:         stage,
		Total:         total,
		EmbeddedCount: embedded,
		Timestamp:     unixToTime(tsUnix),
		EmbedderModel: model,
	}, nil
}

func (s *SQLiteStore) ClearIndexCheckpoint(ctx context.Context) error {
	return s.SetState(ctx, stateKeyCheckpointExists, "0")
}

// --- Lifecycle ---

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// --- helpers ---

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func unixToTime(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

func inClause(ids []string) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

func encodeListCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("offset:%d", offset)))
}

func decodeListCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	s := string(decoded)
	if !strings.HasPrefix(s, "offset:") {
		return 0, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(s, "offset:"))
	if err != nil {
		return 0, fmt.Errorf("invalid cursor offset: %w", err)
	}
	if offset < 0 {
		return 0, fmt.Errorf("cursor offset must be non-negative")
	}
	return offset, nil
}

// embeddingToBytes encodes a float32 vector as a little-endian byte
// slice for BLOB storage.
func embeddingToBytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		bits := math.Float32bits(f)
		buf[i*4] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return buf
}

// bytesToEmbedding decodes a BLOB back into a float32 vector.
func bytesToEmbedding(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// encodeMetadata JSON-encodes a chunk's custom metadata map for storage.
func encodeMetadata(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// decodeMetadata is the inverse of encodeMetadata; malformed or empty
// input yields a nil map rather than an error, since metadata is
// auxiliary and never required for correctness.
func decodeMetadata(s string) map[string]string {
	if s == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

func scanFile(row *sql.Row) (*File, error) {
	var f File
	var modTime, indexedAt sql.NullInt64
	var fingerprint, format sql.NullString
	var needsReindex int
	err := row.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Size, &modTime, &fingerprint, &format, &needsReindex, &indexedAt)
	if err != nil {
		return nil, err
	}
	f.ModTime = unixToTime(modTime.Int64)
	f.Fingerprint = fingerprint.String
	f.Format = Format(format.String)
	f.NeedsReindex = needsReindex != 0
	f.IndexedAt = unixToTime(indexedAt.Int64)
	return &f, nil
}

func scanFiles(rows *sql.Rows) ([]*File, error) {
	var files []*File
	for rows.Next() {
		var f File
		var modTime, indexedAt sql.NullInt64
		var fingerprint, format sql.NullString
		var needsReindex int
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Size, &modTime, &fingerprint, &format, &needsReindex, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.ModTime = unixToTime(modTime.Int64)
		f.Fingerprint = fingerprint.String
		f.Format = Format(format.String)
		f.NeedsReindex = needsReindex != 0
		f.IndexedAt = unixToTime(indexedAt.Int64)
		files = append(files, &f)
	}
	return files, rows.Err()
}

func scanChunk(row *sql.Row) (*Chunk, error) {
	var c Chunk
	var format, extractionParams, keyPhrases, metadataJSON sql.NullString
	var createdAt, updatedAt sql.NullInt64
	err := row.Scan(&c.ID, &c.FileID, &c.FilePath, &c.Content, &format, &c.ChunkIndex, &c.StartLine, &c.EndLine,
		&extractionParams, &keyPhrases, &c.Readability, &metadataJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Format = Format(format.String)
	c.ExtractionParamsJSON = extractionParams.String
	c.KeyPhrasesJSON = keyPhrases.String
	c.Metadata = decodeMetadata(metadataJSON.String)
	c.CreatedAt = unixToTime(createdAt.Int64)
	c.UpdatedAt = unixToTime(updatedAt.Int64)
	return &c, nil
}

func scanChunks(rows *sql.Rows) ([]*Chunk, error) {
	var chunks []*Chunk
	for rows.Next() {
		var c Chunk
		var format, extractionParams, keyPhrases, metadataJSON sql.NullString
		var createdAt, updatedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.FileID, &c.FilePath, &c.Content, &format, &c.ChunkIndex, &c.StartLine, &c.EndLine,
			&extractionParams, &keyPhrases, &c.Readability, &metadataJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.Format = Format(format.String)
		c.ExtractionParamsJSON = extractionParams.String
		c.KeyPhrasesJSON = keyPhrases.String
		c.Metadata = decodeMetadata(metadataJSON.String)
		c.CreatedAt = unixToTime(createdAt.Int64)
		c.UpdatedAt = unixToTime(updatedAt.Int64)
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}
