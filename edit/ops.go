package edit

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docmark/bookmark"
	"docmark/config"
	"docmark/docx"
)

// Editor runs marker operations on document files.
type Editor struct {
	cfg *config.EditingConfig
	rpt *config.Report
	log *zap.Logger
}

func New(cfg *config.EditingConfig, rpt *config.Report, log *zap.Logger) *Editor {
	return &Editor{cfg: cfg, rpt: rpt, log: log}
}

func (e *Editor) open(path string) (*Session, error) {
	return Open(path, e.cfg, e.rpt, e.log)
}

// Span is inclusive block range of a marker.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// InsertMarkerBefore puts new empty marker name right before marker target,
// new marker covers as many blocks as target does.
func (e *Editor) InsertMarkerBefore(in, out, target, name string) error {
	s, err := e.open(in)
	if err != nil {
		return err
	}
	if err := bookmark.InsertMarkerBefore(s.Doc, target, name, s.IDs, e.cfg.Placeholder, s.Log()); err != nil {
		return err
	}
	s.Checkpoint("insert " + name)
	return s.Save(out)
}

// CopyMarkerContent replaces content of marker dst with content of marker src.
// When configured, list number typed in the beginning of src is not copied.
func (e *Editor) CopyMarkerContent(in, out, src, dst string) error {
	s, err := e.open(in)
	if err != nil {
		return err
	}
	if err := copyContent(s, src, dst, e.cfg.StripNumerals); err != nil {
		return err
	}
	s.Checkpoint("copy " + src + " " + dst)
	return s.Save(out)
}

func copyContent(s *Session, src, dst string, strip bool) error {
	frags, err := bookmark.Content(s.Doc, src, s.Log())
	if err != nil {
		return err
	}
	frags = bookmark.CloneAll(frags)
	if strip {
		frags = bookmark.StripNumeral(frags)
	}
	span, err := bookmark.ResolveSpan(s.Doc, dst, s.Log())
	if err != nil {
		return err
	}
	return bookmark.ReplaceSpanContent(s.Doc, span, frags, s.Log())
}

// CopyMarkerContentNTimes inserts n new markers before marker name, each
// holding copy of its original content, and returns their names. Names come
// from copy name template, by default marker name followed by copy index.
func (e *Editor) CopyMarkerContentNTimes(in, out, name string, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("number of copies cannot be negative: %d", n)
	}
	nm, err := newNamer(e.cfg.CopyNameTemplate)
	if err != nil {
		return nil, err
	}
	s, err := e.open(in)
	if err != nil {
		return nil, err
	}

	frags, err := bookmark.Content(s.Doc, name, s.Log())
	if err != nil {
		return nil, err
	}
	// detach original content, copies are inserted next to the source
	frags = bookmark.CloneAll(frags)

	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		copyName, err := nm.expand(name, i, n)
		if err != nil {
			return nil, fmt.Errorf("unable to name copy %d of %q: %w", i, name, err)
		}
		if err := bookmark.InsertMarkerBefore(s.Doc, name, copyName, s.IDs, "", s.Log()); err != nil {
			return nil, err
		}
		span, err := bookmark.ResolveSpan(s.Doc, copyName, s.Log())
		if err != nil {
			return nil, err
		}
		if err := bookmark.ReplaceSpanContent(s.Doc, span, frags, s.Log()); err != nil {
			return nil, err
		}
		s.Checkpoint("replicate " + copyName)
		names = append(names, copyName)
	}
	if err := s.Save(out); err != nil {
		return nil, err
	}
	return names, nil
}

// GetMarkerContent returns marker text, one line per block. Second value is
// false when there is no such marker.
func (e *Editor) GetMarkerContent(path, name string) (string, bool, error) {
	s, err := e.open(path)
	if err != nil {
		return "", false, err
	}
	return e.content(s, name)
}

func (e *Editor) content(s *Session, name string) (string, bool, error) {
	frags, err := bookmark.Content(s.Doc, name, s.Log())
	switch {
	case err == nil:
		return bookmark.Text(frags), true, nil
	case errors.Is(err, bookmark.ErrSpanUnresolved) && e.cfg.TextFallback:
		idx, _ := bookmark.Locate(s.Doc, name)
		s.Log().Warn("Marker has no closing anchor, using text of its block", zap.String("name", name), zap.Int("block", idx))
		return docx.Text(s.Doc.Blocks()[idx]), true, nil
	case errors.Is(err, bookmark.ErrNotFound):
		if idx, ok := e.locateText(s, name); ok {
			return docx.Text(s.Doc.Blocks()[idx]), true, nil
		}
		return "", false, nil
	}
	return "", false, err
}

// GetMarkerPosition returns index of the block holding marker Open anchor.
func (e *Editor) GetMarkerPosition(path, name string) (int, bool, error) {
	s, err := e.open(path)
	if err != nil {
		return -1, false, err
	}
	idx, ok := e.position(s, name)
	return idx, ok, nil
}

func (e *Editor) position(s *Session, name string) (int, bool) {
	if idx, ok := bookmark.Locate(s.Doc, name); ok {
		return idx, true
	}
	return e.locateText(s, name)
}

// GetMarkerSpan returns block range covered by the marker.
func (e *Editor) GetMarkerSpan(path, name string) (Span, bool, error) {
	s, err := e.open(path)
	if err != nil {
		return Span{}, false, err
	}
	return e.span(s, name)
}

func (e *Editor) span(s *Session, name string) (Span, bool, error) {
	span, err := bookmark.ResolveSpan(s.Doc, name, s.Log())
	if errors.Is(err, bookmark.ErrNotFound) {
		if idx, ok := e.locateText(s, name); ok {
			return Span{Start: idx, End: idx}, true, nil
		}
		return Span{}, false, nil
	}
	if err != nil {
		return Span{}, false, err
	}
	return Span{Start: span.Start, End: span.End}, true, nil
}

// UsesNumberingStyle reports whether block holding marker Open anchor is
// numbered: directly, through its paragraph style or with number typed as
// text. Unknown marker is not numbered.
func (e *Editor) UsesNumberingStyle(path, name string) (bool, error) {
	s, err := e.open(path)
	if err != nil {
		return false, err
	}
	return usesNumbering(s, name), nil
}

func usesNumbering(s *Session, name string) bool {
	idx, ok := bookmark.Locate(s.Doc, name)
	if !ok {
		return false
	}
	block := s.Doc.Blocks()[idx]
	return s.Doc.UsesNumbering(block) || bookmark.HasNumeral(docx.Text(block))
}

// MarkerInfo is everything known about a single marker.
type MarkerInfo struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Span     Span   `json:"span"`
	Numbered bool   `json:"numbered"`
	Content  string `json:"content"`
}

// Describe collects marker details loading document once. Second value is
// false when there is no such marker.
func (e *Editor) Describe(path, name string) (MarkerInfo, bool, error) {
	s, err := e.open(path)
	if err != nil {
		return MarkerInfo{}, false, err
	}
	pos, found := e.position(s, name)
	if !found {
		return MarkerInfo{}, false, nil
	}
	info := MarkerInfo{Name: name, Position: pos, Numbered: usesNumbering(s, name)}
	span, ok, err := e.span(s, name)
	switch {
	case err == nil && ok:
		info.Span = span
	case errors.Is(err, bookmark.ErrSpanUnresolved) && e.cfg.TextFallback:
		info.Span = Span{Start: pos, End: pos}
	default:
		return MarkerInfo{}, false, err
	}
	if info.Content, _, err = e.content(s, name); err != nil {
		return MarkerInfo{}, false, err
	}
	return info, true, nil
}

// ListMarkers returns every marker of the document ordered by name.
func (e *Editor) ListMarkers(path string) ([]bookmark.Marker, error) {
	s, err := e.open(path)
	if err != nil {
		return nil, err
	}
	return bookmark.Markers(s.Doc, s.Log()), nil
}

// StylesEqual compares block properties of two markers block by block.
func (e *Editor) StylesEqual(path, a, b string) (bool, error) {
	s, err := e.open(path)
	if err != nil {
		return false, err
	}
	return bookmark.StylesEqual(s.Doc, a, b, s.Log())
}

// Dump returns readable tree of the document.
func (e *Editor) Dump(path string) (string, error) {
	s, err := e.open(path)
	if err != nil {
		return "", err
	}
	return s.Doc.String(), nil
}

// locateText looks for text placeholder "[name]" left instead of marker
// anchors, only when text fallback is enabled.
func (e *Editor) locateText(s *Session, name string) (int, bool) {
	if !e.cfg.TextFallback || strings.TrimSpace(name) == "" {
		return -1, false
	}
	return bookmark.LocateText(s.Doc, "["+name+"]", s.Log())
}
