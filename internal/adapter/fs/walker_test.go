package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkMatchesIncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "hello")
	writeFile(t, root, "docs/guide.md", "guide")
	writeFile(t, root, "docs/image.png", "binary")
	writeFile(t, root, ".rag/store.db", "db")

	walker := NewWalker(nil, nil)
	files, err := walker.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f.Name] = true
	}
	if !names["notes.txt"] || !names["guide.md"] {
		t.Errorf("unexpected file set: %+v", files)
	}
}

func TestWalkCustomExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", "keep")
	writeFile(t, root, "vendor/skip.txt", "skip")

	walker := NewWalker([]string{"**/*.txt"}, []string{"vendor/**"})
	files, err := walker.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 || files[0].Name != "keep.txt" {
		t.Errorf("expected only keep.txt, got %+v", files)
	}
}
