package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"docmark/config"
	"docmark/edit"
)

func newTestRouter(t *testing.T, token config.SecretString) http.Handler {
	t.Helper()
	root := t.TempDir()
	if err := edit.Sample().Save(filepath.Join(root, "sample.docx"), false); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "broken.docx"), []byte("not a package"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "folder"), 0755); err != nil {
		t.Fatal(err)
	}
	cfg := &config.EditingConfig{CopyNameTemplate: "{{ .Name }}{{ .Index }}"}
	return NewRouter(root, token, cfg, zaptest.NewLogger(t))
}

func get(t *testing.T, h http.Handler, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListMarkers(t *testing.T) {
	h := newTestRouter(t, "")
	w := get(t, h, "/documents/sample.docx/markers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body struct {
		Markers []markerBody `json:"markers"`
		Total   int          `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 3 || len(body.Markers) != 3 {
		t.Fatalf("got %d markers, total %d", len(body.Markers), body.Total)
	}
	last := body.Markers[2]
	if last.Name != "labelC" || last.Start != 6 || last.End != 8 || last.Error != "" {
		t.Errorf("unexpected marker %+v", last)
	}
}

func TestGetMarker(t *testing.T) {
	h := newTestRouter(t, "")
	w := get(t, h, "/documents/sample.docx/markers/labelA", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var info edit.MarkerInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != "labelA" || info.Position != 3 || info.Span != (edit.Span{Start: 3, End: 3}) || !info.Numbered {
		t.Errorf("unexpected marker %+v", info)
	}
}

func TestErrors(t *testing.T) {
	h := newTestRouter(t, "")
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing marker", "/documents/sample.docx/markers/missingLabel", http.StatusNotFound},
		{"missing document", "/documents/absent.docx/markers", http.StatusNotFound},
		{"escaping root", "/documents/..%2Fsecret.docx/markers", http.StatusBadRequest},
		{"absolute path", "/documents/%2Fetc%2Fpasswd/markers", http.StatusBadRequest},
		{"directory", "/documents/folder/markers", http.StatusBadRequest},
		{"not a package", "/documents/broken.docx/markers", http.StatusInternalServerError},
		{"unknown route", "/documents/sample.docx", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSymlinks(t *testing.T) {
	outside := t.TempDir()
	if err := edit.Sample().Save(filepath.Join(outside, "secret.docx"), false); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	if err := edit.Sample().Save(filepath.Join(root, "sample.docx"), false); err != nil {
		t.Fatal(err)
	}
	links := map[string]string{
		"leak.docx":  filepath.Join(outside, "secret.docx"),
		"up.docx":    filepath.Join("..", filepath.Base(outside), "secret.docx"),
		"alias.docx": "sample.docx",
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(root, name)); err != nil {
			t.Skipf("symbolic links are not available: %v", err)
		}
	}
	cfg := &config.EditingConfig{CopyNameTemplate: "{{ .Name }}{{ .Index }}"}
	h := NewRouter(root, "", cfg, zaptest.NewLogger(t))

	tests := []struct {
		name string
		want int
	}{
		{"leak.docx", http.StatusBadRequest},
		{"up.docx", http.StatusBadRequest},
		{"alias.docx", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, "/documents/"+tt.name+"/markers", "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAuth(t *testing.T) {
	h := newTestRouter(t, "s3cret")
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong token", "guess", http.StatusUnauthorized},
		{"token prefix", "s3c", http.StatusUnauthorized},
		{"token with suffix", "s3cret2", http.StatusUnauthorized},
		{"valid token", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, "/documents/sample.docx/markers", tt.token)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: newTestRouter(t, "")}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, zaptest.NewLogger(t)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}
	if err := serve(context.Background(), srv, zaptest.NewLogger(t)); err == nil {
		t.Error("serve() on bad address succeeded")
	}
}
