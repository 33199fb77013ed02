// Package serve exposes read-only marker inspection of documents in a single
// directory over HTTP.
package serve

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"docmark/bookmark"
	"docmark/config"
	"docmark/edit"
)

type handler struct {
	root  string
	ed    *edit.Editor
	cache *markerCache
	log   *zap.Logger
}

func newHandler(root string, cfg *config.EditingConfig, log *zap.Logger) *handler {
	// documents are never written, reports are not safe for concurrent use
	return &handler{root: root, ed: edit.New(cfg, nil, log), cache: newMarkerCache(), log: log}
}

// NewRouter creates router with all routes mounted. Empty token disables
// authentication.
func NewRouter(root string, token config.SecretString, cfg *config.EditingConfig, log *zap.Logger) chi.Router {
	return newHandler(root, cfg, log).router(token)
}

func (h *handler) router(token config.SecretString) chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger(h.log))
	r.Use(authMiddleware(string(token)))

	r.Get("/documents/{file}/markers", h.listMarkers)
	r.Get("/documents/{file}/markers/{name}", h.getMarker)
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug("Request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
		})
	}
}

// authMiddleware validates "Authorization: Bearer <token>" header.
func authMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(token) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type markerBody struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Error string `json:"error,omitempty"`
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errNotLocal = errors.New("document name must be local to served directory")

// document returns path of the requested file, which must stay inside root
// after symbolic links are followed.
func (h *handler) document(r *http.Request) (string, os.FileInfo, int, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "file"))
	if err != nil {
		return "", nil, http.StatusBadRequest, err
	}
	if !filepath.IsLocal(name) {
		return "", nil, http.StatusBadRequest, errNotLocal
	}
	root, err := os.OpenRoot(h.root)
	if err != nil {
		return "", nil, http.StatusInternalServerError, err
	}
	defer root.Close()

	path := filepath.Join(h.root, name)
	fi, err := root.Stat(name)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", nil, http.StatusNotFound, errors.New("document not found")
	case err != nil:
		// root refuses links leading outside of it
		if _, serr := os.Stat(path); serr == nil {
			h.log.Warn("Document escapes served directory", zap.String("file", name), zap.Error(err))
			return "", nil, http.StatusBadRequest, errNotLocal
		}
		return "", nil, http.StatusInternalServerError, err
	case !fi.Mode().IsRegular():
		return "", nil, http.StatusBadRequest, errors.New("not a document")
	}
	return path, fi, http.StatusOK, nil
}

// fail reports operation error, server side details only go to the log.
func (h *handler) fail(w http.ResponseWriter, path string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, bookmark.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, bookmark.ErrSpanUnresolved):
		status = http.StatusUnprocessableEntity
	}
	h.log.Error("Request failed", zap.String("file", path), zap.Int("status", status), zap.Error(err))
	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorBody("unable to process document"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}

// listMarkers handles GET /documents/{file}/markers.
func (h *handler) listMarkers(w http.ResponseWriter, r *http.Request) {
	path, fi, status, err := h.document(r)
	if err != nil {
		writeJSON(w, status, errorBody(err.Error()))
		return
	}
	if body, ok := h.cache.get(path, fi); ok {
		writeMarkers(w, body)
		return
	}
	markers, err := h.ed.ListMarkers(path)
	if err != nil {
		h.fail(w, path, err)
		return
	}
	body := make([]markerBody, 0, len(markers))
	for _, m := range markers {
		mb := markerBody{Name: m.Name, ID: m.ID, Start: m.Start, End: m.End}
		if m.Err != nil {
			mb.Error = m.Err.Error()
		}
		body = append(body, mb)
	}
	h.cache.put(path, fi, body)
	writeMarkers(w, body)
}

func writeMarkers(w http.ResponseWriter, body []markerBody) {
	writeJSON(w, http.StatusOK, map[string]any{
		"markers": body,
		"total":   len(body),
	})
}

// getMarker handles GET /documents/{file}/markers/{name}.
func (h *handler) getMarker(w http.ResponseWriter, r *http.Request) {
	path, _, status, err := h.document(r)
	if err != nil {
		writeJSON(w, status, errorBody(err.Error()))
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	info, found, err := h.ed.Describe(path, name)
	if err != nil {
		h.fail(w, path, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("marker not found"))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
