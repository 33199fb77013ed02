package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_NilIsSafe(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("c", []byte("d"))
	if err := r.StoreCopy("e", "f"); err != nil {
		t.Errorf("StoreCopy() on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	input := filepath.Join(dir, "input.docx")
	if err := os.WriteFile(input, []byte("original"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := r.StoreCopy("input/input.docx", input); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// copy must not follow later changes
	if err := os.WriteFile(input, []byte("changed"), 0644); err != nil {
		t.Fatalf("rewrite input: %v", err)
	}
	r.StoreData("steps/insert.xml", []byte("<w:document/>"))
	r.StoreData("steps/insert.xml", []byte("<w:document/>"))
	r.Store("missing.log", filepath.Join(dir, "missing.log"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File)
	versioned := 0
	for _, f := range zr.File {
		files[f.Name] = f
		if strings.HasPrefix(f.Name, "steps/insert.xml-") {
			versioned++
		}
	}
	if _, ok := files["MANIFEST"]; !ok {
		t.Error("report has no MANIFEST")
	}
	if _, ok := files["missing.log"]; ok {
		t.Error("absent file should be skipped")
	}
	if _, ok := files["steps/insert.xml"]; !ok || versioned != 1 {
		t.Errorf("expected original and one versioned step entry, versioned = %d", versioned)
	}
	f, ok := files["input/input.docx"]
	if !ok {
		t.Fatal("report has no input copy")
	}
	rc, err := f.Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	buf := make([]byte, 32)
	n, _ := rc.Read(buf)
	if string(buf[:n]) != "original" {
		t.Errorf("input copy = %q, want original", buf[:n])
	}
}
