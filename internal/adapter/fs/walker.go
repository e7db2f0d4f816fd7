// Package fs walks directories for ingestable plain-text documents.
// Binary document formats (PDF, DOCX, PPTX) are handled by external
// extractors; the core only ever reads text files.
package fs

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludes matches the plain-text formats the pipeline ingests as-is.
var DefaultIncludes = []string{"**/*.txt", "**/*.md"}

// DefaultExcludes skips hidden directories, including the store's own .rag dir.
var DefaultExcludes = []string{"**/.*/**"}

// Walker finds ingestable files under a root directory using doublestar
// include/exclude patterns matched against the relative path.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker creates a walker with the given patterns, falling back to the
// defaults when includes is empty.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}
	return &Walker{includes: includes, excludes: excludes}
}

// FileInfo describes one candidate file.
type FileInfo struct {
	Path string
	Name string
	Size int64
}

// Walk returns the matching files under root.
func (w *Walker) Walk(root string) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if w.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, FileInfo{
				Path: path,
				Name: info.Name(),
				Size: info.Size(),
			})
		}
		return nil
	})
	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

// ReadFile reads a file as text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
