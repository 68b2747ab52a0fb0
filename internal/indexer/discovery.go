package indexer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/codescope/internal/config"
	"github.com/mvp-joe/codescope/internal/lang"
)

// compiledPattern holds both the pattern string and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery walks a repository root and produces the deterministic,
// lexicographically ordered list of files eligible for indexing.
type FileDiscovery struct {
	rootDir         string
	fsys            fs.FS
	registry        *lang.Registry
	maxFileSize     int64
	includePatterns []compiledPattern
	excludePatterns []compiledPattern
}

// NewFileDiscovery creates a discovery instance for rootDir using the
// configured include and exclude globs. Patterns are compiled up front so a
// malformed pattern fails before any walking starts.
func NewFileDiscovery(rootDir string, cfg *config.AnalysisConfig, registry *lang.Registry) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir:     rootDir,
		fsys:        os.DirFS(rootDir),
		registry:    registry,
		maxFileSize: cfg.MaxFileSize,
	}

	for _, pattern := range cfg.Extensions {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.includePatterns = append(fd.includePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.excludePatterns = append(fd.excludePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return fd, nil
}

// Discover walks the tree and returns eligible files sorted by path, plus
// warnings for files that matched an include pattern but were skipped.
// Exclusion always wins over inclusion.
func (fd *FileDiscovery) Discover() ([]FileDescriptor, []DiscoveryWarning, error) {
	var files []FileDescriptor
	var warnings []DiscoveryWarning

	err := fs.WalkDir(fd.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Only an unreadable root aborts the walk. Any other entry that
			// cannot be read (permissions, a race with deletion) is recorded
			// as a warning and skipped.
			if path == "." {
				return err
			}
			warnings = append(warnings, DiscoveryWarning{
				Path:   path,
				Reason: "unreadable: " + err.Error(),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == "." {
				return nil
			}
			if fd.isExcluded(path) {
				return fs.SkipDir
			}
			return nil
		}

		if fd.isExcluded(path) {
			return nil
		}
		if !matchesAnyPattern(path, fd.includePatterns) {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			warnings = append(warnings, DiscoveryWarning{
				Path:   path,
				Reason: "stat failed: " + statErr.Error(),
			})
			return nil
		}

		if info.Size() > fd.maxFileSize {
			warnings = append(warnings, DiscoveryWarning{
				Path:   path,
				Reason: "exceeds max_file_size",
			})
			return nil
		}

		files = append(files, FileDescriptor{
			Path:      path,
			Language:  fd.registry.ResolveLanguage(path),
			SizeBytes: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// WalkDir already visits lexically, but the ordering contract is load
	// bearing for chunk IDs, so sort explicitly rather than rely on it.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, warnings, nil
}

// ReadFile reads a discovered file's content from the repository root.
func (fd *FileDiscovery) ReadFile(file FileDescriptor) ([]byte, error) {
	return os.ReadFile(filepath.Join(fd.rootDir, filepath.FromSlash(file.Path)))
}

// isExcluded checks a relative path against the exclude patterns, including
// the directory-prefix form so "node_modules/**" excludes the directory
// itself during the walk. The index's own state directory is always excluded.
func (fd *FileDiscovery) isExcluded(relPath string) bool {
	if relPath == ".codescope" || strings.HasPrefix(relPath, ".codescope/") {
		return true
	}
	if matchesAnyPattern(relPath, fd.excludePatterns) {
		return true
	}
	return matchesAnyPattern(relPath+"/**", fd.excludePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// "**/*.py" should also match a root-level "main.py"; try patterns with
	// the **/ prefix stripped for paths without a slash.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
