package indexer

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codescope/internal/config"
	"github.com/mvp-joe/codescope/internal/lang"
)

// Test Plan for FileDiscovery:
// - Only files matching include patterns are emitted
// - Exclude patterns win over include patterns
// - Excluded directories are not descended into
// - Oversized files are skipped with a warning
// - Output is sorted by path and deterministic
// - Languages resolve from extensions; unmapped ones are "unknown"
// - The .codescope state directory is never discovered
// - An unreadable subdirectory is warned about and skipped, not fatal
// - An unreadable root is fatal

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestDiscovery(t *testing.T, root string, analysis *config.AnalysisConfig) *FileDiscovery {
	t.Helper()
	cfg := config.Default()
	if analysis == nil {
		analysis = &cfg.Analysis
	}
	registry := lang.NewRegistry(&cfg.Languages)
	fd, err := NewFileDiscovery(root, analysis, registry)
	require.NoError(t, err)
	return fd
}

func TestDiscovery_IncludeAndSort(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "zeta.py", "x = 1\n")
	writeFile(t, root, "alpha.go", "package alpha\n")
	writeFile(t, root, "sub/beta.rb", "puts 1\n")
	writeFile(t, root, "README.md", "# readme\n")

	fd := newTestDiscovery(t, root, nil)
	files, warnings, err := fd.Discover()

	require.NoError(t, err)
	assert.Empty(t, warnings)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"alpha.go", "sub/beta.rb", "zeta.py"}, paths)

	assert.Equal(t, "go", files[0].Language)
	assert.Equal(t, "ruby", files[1].Language)
	assert.Equal(t, "python", files[2].Language)
}

func TestDiscovery_ExcludeWinsOverInclude(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.py", "x = 1\n")
	writeFile(t, root, "vendor/dep.py", "y = 2\n")
	writeFile(t, root, "node_modules/lib/index.js", "var z;\n")
	writeFile(t, root, ".codescope/config.yml", "chunking:\n  strategy: ast\n")

	fd := newTestDiscovery(t, root, nil)
	files, _, err := fd.Discover()

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.py", files[0].Path)
}

func TestDiscovery_MaxFileSizeWarning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "small.py", "x = 1\n")
	writeFile(t, root, "big.py", strings.Repeat("x = 1\n", 100))

	analysis := &config.AnalysisConfig{
		Extensions:  []string{"**/*.py"},
		MaxFileSize: 64,
	}

	fd := newTestDiscovery(t, root, analysis)
	files, warnings, err := fd.Discover()

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "small.py", files[0].Path)

	require.Len(t, warnings, 1)
	assert.Equal(t, "big.py", warnings[0].Path)
	assert.Equal(t, "exceeds max_file_size", warnings[0].Reason)
}

func TestDiscovery_UnknownExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "script.xyz", "whatever\n")

	analysis := &config.AnalysisConfig{
		Extensions:  []string{"**/*.xyz"},
		MaxFileSize: 1 << 20,
	}

	fd := newTestDiscovery(t, root, analysis)
	files, _, err := fd.Discover()

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, lang.LanguageUnknown, files[0].Language)
}

// denyDirFS fails ReadDir for one directory, standing in for a permission
// error during the walk.
type denyDirFS struct {
	fs.FS
	deny string
}

func (f denyDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.deny {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrPermission}
	}
	return fs.ReadDir(f.FS, name)
}

func TestDiscovery_UnreadableDirWarnsAndContinues(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\n")
	writeFile(t, root, "locked/hidden.py", "y = 2\n")
	writeFile(t, root, "zz/ok.py", "z = 3\n")

	fd := newTestDiscovery(t, root, nil)
	fd.fsys = denyDirFS{FS: fd.fsys, deny: "locked"}

	files, warnings, err := fd.Discover()
	require.NoError(t, err)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"a.py", "zz/ok.py"}, paths)

	require.Len(t, warnings, 1)
	assert.Equal(t, "locked", warnings[0].Path)
	assert.Contains(t, warnings[0].Reason, "unreadable")
}

func TestDiscovery_UnreadableRootFails(t *testing.T) {
	t.Parallel()

	fd := newTestDiscovery(t, t.TempDir(), nil)
	fd.fsys = denyDirFS{FS: fd.fsys, deny: "."}

	_, _, err := fd.Discover()
	assert.Error(t, err)
}

func TestDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	analysis := &config.AnalysisConfig{
		Extensions:  []string{"[unclosed"},
		MaxFileSize: 1,
	}
	registry := lang.NewRegistry(&cfg.Languages)

	_, err := NewFileDiscovery(t.TempDir(), analysis, registry)
	assert.Error(t, err)
}
