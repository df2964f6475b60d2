// Package corpus discovers project documents on disk. One JSON file is one
// project; everything else in the tree is somebody else's business.
package corpus

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// Scanner lists the project documents under a corpus directory.
type Scanner struct {
	dir       string
	recursive bool
	ignore    []string
	logger    *zap.Logger
}

// NewScanner builds a scanner rooted at dir. Ignore patterns are matched
// against file base names with filepath.Match.
func NewScanner(dir string, recursive bool, ignore []string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{dir: dir, recursive: recursive, ignore: ignore, logger: logger}
}

// Scan returns every document, ordered by project name so batch output
// never depends on directory iteration order. Dot files and dot
// directories are always skipped.
func (s *Scanner) Scan() ([]schemas.ProjectSource, error) {
	var sources []schemas.ProjectSource

	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == s.dir {
				return nil
			}
			if !s.recursive || strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			return nil
		}
		if s.ignored(name) {
			s.logger.Debug("document ignored", zap.String("path", path))
			return nil
		}
		sources = append(sources, schemas.ProjectSource{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: path,
		})
		return nil
	}

	if err := filepath.WalkDir(s.dir, walk); err != nil {
		return nil, fmt.Errorf("scanning corpus %s: %w", s.dir, err)
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Name != sources[j].Name {
			return sources[i].Name < sources[j].Name
		}
		return sources[i].Path < sources[j].Path
	})
	return sources, nil
}

func (s *Scanner) ignored(name string) bool {
	for _, pattern := range s.ignore {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
