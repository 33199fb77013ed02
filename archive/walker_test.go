package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	name    string
	content string
}

func makeZip(t *testing.T, entries []entry) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return zipPath
}

var packageEntries = []entry{
	{"[Content_Types].xml", "<Types/>"},
	{"_rels/.rels", "<Relationships/>"},
	{"word/", ""},
	{"word/document.xml", "<w:document/>"},
	{"word/styles.xml", "<w:styles/>"},
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t, packageEntries)

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"word prefix", "word/", []string{"word/document.xml", "word/styles.xml"}},
		{"empty prefix skips directories", "", []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"}},
		{"no match", "customXml/", nil},
		{"case sensitive", "WORD/", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.pattern, func(archive string, file *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if len(visited) != len(tt.want) {
				t.Fatalf("visited %v, want %v", visited, tt.want)
			}
			for i := range visited {
				if visited[i] != tt.want[i] {
					t.Errorf("visited[%d] = %s, want %s", i, visited[i], tt.want[i])
				}
			}
		})
	}
}

func TestWalk_Errors(t *testing.T) {
	t.Run("walkFn error stops processing", func(t *testing.T) {
		zipPath := makeZip(t, packageEntries)
		stop := errors.New("stop")
		count := 0
		err := Walk(zipPath, "", func(string, *zip.File) error {
			count++
			return stop
		})
		if !errors.Is(err, stop) {
			t.Errorf("Walk() error = %v, want %v", err, stop)
		}
		if count != 1 {
			t.Errorf("walkFn called %d times, want 1", count)
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		if err := Walk("/nonexistent/file.docx", "", func(string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "plain.docx")
		if err := os.WriteFile(p, []byte("not a zip"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadParts(p); err == nil {
			t.Error("Expected error for invalid zip")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := makeZip(t, []entry{{"word/../../evil.xml", "x"}})
		if _, err := ReadParts(zipPath); err == nil {
			t.Error("Expected error for unsafe entry")
		}
	})
}

func TestReadParts(t *testing.T) {
	zipPath := makeZip(t, packageEntries)

	parts, err := ReadParts(zipPath)
	if err != nil {
		t.Fatalf("ReadParts() error = %v", err)
	}
	if len(parts) != 4 {
		t.Fatalf("got %d parts, want 4", len(parts))
	}
	if parts[0].Name != "[Content_Types].xml" || string(parts[0].Data) != "<Types/>" {
		t.Errorf("first part = %s %q", parts[0].Name, parts[0].Data)
	}
	if parts[2].Name != "word/document.xml" || string(parts[2].Data) != "<w:document/>" {
		t.Errorf("third part = %s %q", parts[2].Name, parts[2].Data)
	}
	if parts[2].Method != zip.Deflate {
		t.Errorf("method = %d, want deflate", parts[2].Method)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"word/document.xml", true},
		{"[Content_Types].xml", true},
		{"word/..hidden", true},
		{"/etc/passwd", false},
		{`\windows\system32`, false},
		{"../evil", false},
		{"word/../../evil", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
