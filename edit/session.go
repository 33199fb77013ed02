// Package edit implements file level marker operations. Every operation
// runs its own edit session: document is loaded, changed in memory and
// written to destination only when all changes succeeded.
package edit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"docmark/bookmark"
	"docmark/config"
	"docmark/docx"
)

// Session owns single loaded document and identifier generator for new
// markers. Sessions share nothing and must not be used concurrently.
type Session struct {
	ID  uuid.UUID
	Doc *docx.Document
	IDs *bookmark.IDGen

	cfg  *config.EditingConfig
	rpt  *config.Report
	log  *zap.Logger
	step int
}

func newSessionID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}

// Open loads document and starts new session.
func Open(path string, cfg *config.EditingConfig, rpt *config.Report, log *zap.Logger) (*Session, error) {
	id := newSessionID()
	log = log.With(zap.Stringer("session", id))

	if err := rpt.StoreCopy(filepath.Join("input", filepath.Base(path)), path); err != nil {
		log.Debug("Unable to store input in the report", zap.Error(err))
	}

	doc, err := docx.Load(path, log)
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Doc: doc, IDs: bookmark.NewIDGen(doc), cfg: cfg, rpt: rpt, log: log}, nil
}

// Log returns session logger.
func (s *Session) Log() *zap.Logger {
	return s.log
}

// Checkpoint stores current state of the main document part in the debug
// report, if one is being produced.
func (s *Session) Checkpoint(step string) {
	if s.rpt == nil {
		return
	}
	s.step++
	data, err := s.Doc.MainXML()
	if err != nil {
		s.log.Debug("Unable to serialize document for the report", zap.Error(err))
		return
	}
	name := fmt.Sprintf("%s-%02d-%s.xml", s.ID.String()[:8], s.step, slug.Make(step))
	s.rpt.StoreData(filepath.Join("steps", name), data)
}

// Save writes document to the destination. Existing destination is replaced
// only when configuration allows it.
func (s *Session) Save(path string) error {
	if err := checkDestination(path, s.cfg.Overwrite, s.log); err != nil {
		return err
	}
	if err := s.Doc.Save(path, s.cfg.FixZip); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	if err := s.rpt.StoreCopy(filepath.Join("output", filepath.Base(path)), path); err != nil {
		s.log.Debug("Unable to store output in the report", zap.Error(err))
	}
	s.log.Debug("Document saved", zap.String("file", path))
	return nil
}

func checkDestination(path string, overwrite bool, log *zap.Logger) error {
	fi, err := os.Stat(path)
	switch {
	case err == nil && fi.IsDir():
		return fmt.Errorf("output path is a directory: %s", path)
	case err == nil:
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", path)
		}
		log.Warn("Overwriting existing file", zap.String("file", path))
		return nil
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
		return nil
	}
	return err
}
