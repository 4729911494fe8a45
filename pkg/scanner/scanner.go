package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/observability"
)

// DefaultExclude lists the directory names skipped when no exclude set is given.
var DefaultExclude = []string{
	"__pycache__",
	".git",
	"venv",
	".venv",
	"env",
	"build",
	"dist",
	"site-packages",
}

// Result is the outcome of scanning a source tree.
type Result struct {
	Imports map[string]struct{} // distinct top-level import names
	Files   int                 // number of .py files visited
	Skipped []string            // files (relative to the root) that failed to read or parse
}

// Names returns the import names in sorted order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Imports))
	for name := range r.Imports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scanner walks a project tree collecting imports.
type Scanner struct {
	exclude map[string]bool
	logger  *log.Logger
}

// New creates a Scanner skipping the given directory names. A nil exclude
// selects DefaultExclude; an empty non-nil slice excludes nothing beyond
// hidden directories.
func New(exclude []string, logger *log.Logger) *Scanner {
	if exclude == nil {
		exclude = DefaultExclude
	}
	if logger == nil {
		logger = log.Default()
	}
	set := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		set[name] = true
	}
	return &Scanner{exclude: set, logger: logger}
}

// Scan returns every distinct top-level import referenced by .py files under
// root. Subdirectories that are excluded or whose name starts with "." are not
// entered. Per-file failures are recorded in Result.Skipped.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	observability.Sync().OnScanStart(ctx, root)
	start := time.Now()

	result := &Result{Imports: make(map[string]struct{})}
	p := newParser()
	defer p.close()

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Debug("skipping unreadable path", "path", path, "err", err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if path != root && s.skipDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSource(path) {
			return nil
		}

		result.Files++
		s.scanFile(ctx, p, root, path, result)
		return nil
	})

	observability.Sync().OnScanComplete(ctx, root, len(result.Imports), len(result.Skipped), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scanner) scanFile(ctx context.Context, p *parser, root, path string, result *Result) {
	rel, relErr := filepath.Rel(root, path)
	if relErr != nil {
		rel = path
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("skipping unreadable file", "file", rel, "err", err)
		result.Skipped = append(result.Skipped, rel)
		return
	}

	imports, err := p.extract(ctx, content)
	if err != nil {
		s.logger.Debug("skipping unparsable file", "file", rel, "err", err)
		result.Skipped = append(result.Skipped, rel)
		return
	}
	for name := range imports {
		result.Imports[name] = struct{}{}
	}
}

func (s *Scanner) skipDir(name string) bool {
	return s.exclude[name] || strings.HasPrefix(name, ".")
}

// Scan is a convenience wrapper around New(exclude, nil).Scan.
func Scan(ctx context.Context, root string, exclude []string) (*Result, error) {
	return New(exclude, nil).Scan(ctx, root)
}

// HasSources reports whether any .py file exists anywhere under root.
func HasSources(root string) (bool, error) {
	found := false
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !entry.IsDir() && isSource(path) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func isSource(path string) bool {
	return strings.HasSuffix(path, ".py")
}
