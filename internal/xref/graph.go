package xref

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/codescope/internal/indexer"
)

// FileGraph is the file-level dependency graph derived from resolved
// references: an edge A -> B means a chunk in file A references a symbol
// declared in file B.
type FileGraph struct {
	g graph.Graph[string, string]

	// dependencies and dependents are reverse indexes kept alongside the
	// graph for cheap depth-1 queries.
	dependencies map[string][]string
	dependents   map[string][]string
	files        []string
}

// BuildFileGraph lifts chunk-level references to file level. Self-edges
// (a file referencing its own symbols) are dropped.
func BuildFileGraph(idx *indexer.RepositoryIndex, refs []Reference) (*FileGraph, error) {
	fg := &FileGraph{
		g:            graph.New(graph.StringHash, graph.Directed()),
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
	}

	for _, file := range idx.Files() {
		if err := fg.g.AddVertex(file.Path); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, err
		}
		fg.files = append(fg.files, file.Path)
	}

	seen := make(map[[2]string]bool)
	for _, ref := range refs {
		for _, toID := range ref.ToChunkIDs {
			target, ok := idx.ChunkByID(toID)
			if !ok || target.FilePath == ref.FromFile {
				continue
			}
			key := [2]string{ref.FromFile, target.FilePath}
			if seen[key] {
				continue
			}
			seen[key] = true

			err := fg.g.AddEdge(ref.FromFile, target.FilePath)
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, err
			}
			fg.dependencies[ref.FromFile] = append(fg.dependencies[ref.FromFile], target.FilePath)
			fg.dependents[target.FilePath] = append(fg.dependents[target.FilePath], ref.FromFile)
		}
	}

	for _, m := range []map[string][]string{fg.dependencies, fg.dependents} {
		for k := range m {
			sort.Strings(m[k])
		}
	}

	return fg, nil
}

// Dependencies returns the files the given file references, sorted.
func (fg *FileGraph) Dependencies(path string) []string {
	return append([]string(nil), fg.dependencies[path]...)
}

// Dependents returns the files referencing the given file, sorted.
func (fg *FileGraph) Dependents(path string) []string {
	return append([]string(nil), fg.dependents[path]...)
}

// FileRank pairs a file with its dependent count.
type FileRank struct {
	Path       string `json:"path"`
	Dependents int    `json:"dependents"`
}

// CentralFiles returns files ranked by how many other files depend on them,
// most-depended-on first, ties broken by path. At most limit entries.
func (fg *FileGraph) CentralFiles(limit int) []FileRank {
	ranks := make([]FileRank, 0, len(fg.files))
	for _, path := range fg.files {
		ranks = append(ranks, FileRank{Path: path, Dependents: len(fg.dependents[path])})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Dependents != ranks[j].Dependents {
			return ranks[i].Dependents > ranks[j].Dependents
		}
		return ranks[i].Path < ranks[j].Path
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// EntryPoints returns files that depend on others but have no dependents
// themselves, sorted. These are usually mains, scripts, and tests.
func (fg *FileGraph) EntryPoints() []string {
	var out []string
	for _, path := range fg.files {
		if len(fg.dependents[path]) == 0 && len(fg.dependencies[path]) > 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the number of distinct file dependency edges.
func (fg *FileGraph) EdgeCount() int {
	n := 0
	for _, deps := range fg.dependencies {
		n += len(deps)
	}
	return n
}
