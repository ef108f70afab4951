package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aman-CERP/amanmcp/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want parse.Format
	}{
		{"notes.txt", parse.FormatText},
		{"README.md", parse.FormatMarkdown},
		{"docs/page.html", parse.FormatHTML},
		{"legacy.htm", parse.FormatHTML},
		{"report.pdf", parse.FormatPDF},
		{"contract.docx", parse.FormatWord},
		{"budget.xlsx", parse.FormatExcel},
		{"export.csv", parse.FormatExcel},
		{"deck.pptx", parse.FormatPowerPoint},
		{"main.go", ""},
		{"image.png", ""},
		{"noext", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DetectFormat(tc.path), "path=%s", tc.path)
	}
}

func TestIsBinaryFormat(t *testing.T) {
	assert.True(t, IsBinaryFormat(parse.FormatPDF))
	assert.True(t, IsBinaryFormat(parse.FormatWord))
	assert.True(t, IsBinaryFormat(parse.FormatExcel))
	assert.True(t, IsBinaryFormat(parse.FormatPowerPoint))
	assert.False(t, IsBinaryFormat(parse.FormatText))
	assert.False(t, IsBinaryFormat(parse.FormatMarkdown))
	assert.False(t, IsBinaryFormat(parse.FormatHTML))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func collect(t *testing.T, results <-chan ScanResult) []*FileInfo {
	t.Helper()
	var out []*FileInfo
	for r := range results {
		require.NoError(t, r.Error)
		out = append(out, r.File)
	}
	return out
}

func TestScanner_Scan_FindsEligibleDocuments(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "notes.txt", "hello world\n")
	writeFile(t, tmpDir, "README.md", "# Title\n")
	writeFile(t, tmpDir, "main.go", "package main\n")
	writeFile(t, tmpDir, "image.png", "\x89PNG\x00\x00\x00")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)

	files := collect(t, results)
	byPath := make(map[string]*FileInfo)
	for _, f := range files {
		byPath[f.Path] = f
	}

	assert.Len(t, files, 2, "only .txt and .md are eligible document formats")
	assert.Equal(t, parse.FormatText, byPath["notes.txt"].Format)
	assert.Equal(t, parse.FormatMarkdown, byPath["README.md"].Format)
}

func TestScanner_Scan_IndexesBinaryContainerFormats(t *testing.T) {
	tmpDir := t.TempDir()
	// A real .docx/.xlsx is a zip; a couple of null bytes is enough to
	// trip the binary sniff, which is exactly what IsBinaryFormat exists
	// to bypass for these extensions.
	writeFile(t, tmpDir, "contract.docx", "PK\x00\x00fake zip bytes")
	writeFile(t, tmpDir, "budget.xlsx", "PK\x00\x00fake zip bytes")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)

	files := collect(t, results)
	assert.Len(t, files, 2)
}

func TestScanner_Scan_ExcludesNodeModulesAndGit(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "README.md", "# root\n")
	writeFile(t, tmpDir, "node_modules/pkg/README.md", "# vendored\n")
	writeFile(t, tmpDir, ".git/COMMIT_EDITMSG", "message\n")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)

	files := collect(t, results)
	require.Len(t, files, 1)
	assert.Equal(t, "README.md", files[0].Path)
}

func TestScanner_Scan_RespectsGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".gitignore", "draft.md\n")
	writeFile(t, tmpDir, "draft.md", "# draft\n")
	writeFile(t, tmpDir, "final.md", "# final\n")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir, RespectGitignore: true})
	require.NoError(t, err)

	files := collect(t, results)
	require.Len(t, files, 1)
	assert.Equal(t, "final.md", files[0].Path)
}

func TestScanner_Scan_ExcludesSensitivePatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "notes.txt", "fine\n")
	writeFile(t, tmpDir, "id_rsa.txt", "nope\n")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)

	files := collect(t, results)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Path)
}

func TestScanner_Scan_SkipsLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "small.txt", "small\n")
	big := make([]byte, 2048)
	writeFile(t, tmpDir, "big.txt", string(big))

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir, MaxFileSize: 1024})
	require.NoError(t, err)

	files := collect(t, results)
	require.Len(t, files, 1)
	assert.Equal(t, "small.txt", files[0].Path)
}

func TestScanner_Scan_DetectsGeneratedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "generated.md", "<!-- AUTO-GENERATED -->\ncontent\n")
	writeFile(t, tmpDir, "authored.md", "# hand written\n")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)

	files := collect(t, results)
	byPath := make(map[string]*FileInfo)
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.True(t, byPath["generated.md"].IsGenerated)
	assert.False(t, byPath["authored.md"].IsGenerated)
}

func TestScanner_Scan_IncludePatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "keep/a.txt", "a\n")
	writeFile(t, tmpDir, "skip/b.txt", "b\n")

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{
		RootDir:         tmpDir,
		IncludePatterns: []string{"keep/*"},
	})
	require.NoError(t, err)

	files := collect(t, results)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join("keep", "a.txt"), files[0].Path)
}

func TestScanner_Scan_EmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)
	assert.Empty(t, collect(t, results))
}

func TestScanner_Scan_NonExistentDirectory(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	_, err = s.Scan(context.Background(), &ScanOptions{RootDir: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestScanner_Scan_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, tmpDir, "doc"+time.Now().Format("150405.000000000")+".txt", "content\n")
	}

	s, err := New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	results, err := s.Scan(ctx, &ScanOptions{RootDir: tmpDir})
	require.NoError(t, err)
	cancel()

	// Draining must terminate even with a cancelled context.
	done := make(chan struct{})
	go func() {
		for range results {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not terminate after cancellation")
	}
}

func TestScanner_InvalidateGitignoreCache(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.InvalidateGitignoreCache()
}

func TestMatchDirPattern(t *testing.T) {
	assert.True(t, matchDirPattern("node_modules", "**/node_modules/**"))
	assert.True(t, matchDirPattern("pkg/node_modules", "**/node_modules/**"))
	assert.False(t, matchDirPattern("src", "**/node_modules/**"))
}

func TestMatchFilePattern(t *testing.T) {
	assert.True(t, matchFilePattern(".env", ".env", ".env"))
	assert.True(t, matchFilePattern(".env.local", ".env.local", ".env.*"))
	assert.True(t, matchFilePattern("id_rsa", "id_rsa", "id_rsa"))
	assert.False(t, matchFilePattern("report.pdf", "report.pdf", "*.key"))
}
