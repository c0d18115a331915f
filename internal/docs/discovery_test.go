package docs

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
}

func TestDiscoverPages(t *testing.T) {
	root := t.TempDir()
	write(t, root, "docs/index.md", "# Home\n![logo](img/logo.png)\n")
	write(t, root, "docs/guide/setup.markdown", "see [index](../index.md)\n")
	write(t, root, "docs/notes.txt", "not a page")
	write(t, root, "docs/.hidden/skipped.md", "hidden")
	write(t, root, "README.md", "outside docs dir")

	d := NewDiscovery(root, "docs", nil)
	pages, err := d.DiscoverPages()
	if err != nil {
		t.Fatalf("DiscoverPages failed: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d: %+v", len(pages), pages)
	}
	if pages[0].Path != "docs/guide/setup.markdown" || pages[1].Path != "docs/index.md" {
		t.Errorf("Pages not sorted by path: %+v", pages)
	}
	if len(pages[0].Dependencies) != 1 || pages[0].Dependencies[0] != "docs/index.md" {
		t.Errorf("Wrong dependencies for setup page: %v", pages[0].Dependencies)
	}
	if len(pages[1].Dependencies) != 1 || pages[1].Dependencies[0] != "docs/img/logo.png" {
		t.Errorf("Wrong dependencies for index page: %v", pages[1].Dependencies)
	}
}

func TestDiscoverPagesCustomExtensions(t *testing.T) {
	root := t.TempDir()
	write(t, root, "docs/page.mdx", "# MDX")
	write(t, root, "docs/page.md", "# MD")

	d := NewDiscovery(root, "docs", []string{".mdx"})
	pages, err := d.DiscoverPages()
	if err != nil {
		t.Fatalf("DiscoverPages failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Path != "docs/page.mdx" {
		t.Errorf("Extension filter not applied: %+v", pages)
	}
}
