// Package docx is a small WordprocessingML package adapter: it keeps all
// package parts in memory, exposes main document part as an XML tree and
// writes package back preserving part order.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"docmark/archive"
)

const (
	relsPart        = "_rels/.rels"
	defaultMainPart = "word/document.xml"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
)

// storyRelTypes are parts sharing bookmark identifier space with the body.
var storyRelTypes = []string{
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/header",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments",
}

// Document is loaded docx package.
type Document struct {
	Name string

	parts      []archive.Part
	mainPart   string
	stylesPart string
	storyParts []string

	main   *etree.Document
	styles *etree.Document
	body   *etree.Element
}

// Load reads docx package from the file.
func Load(fname string, log *zap.Logger) (*Document, error) {
	if err := checkSignature(fname); err != nil {
		return nil, err
	}

	parts, err := archive.ReadParts(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read package %s: %w", fname, err)
	}

	d, err := fromParts(parts)
	if err != nil {
		return nil, fmt.Errorf("unable to load package %s: %w", fname, err)
	}
	d.Name = fname

	log.Debug("Package loaded",
		zap.String("file", fname),
		zap.Int("parts", len(parts)),
		zap.String("main", d.mainPart),
		zap.String("styles", d.stylesPart),
		zap.Int("blocks", len(d.Blocks())))
	return d, nil
}

func checkSignature(fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 8192)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("unable to read %s: %w", fname, err)
	}
	head = head[:n]
	// filetype recognizes docx only when the first entries are in the order
	// Word writes them, other producers are detected as plain zip
	if !filetype.Is(head, "docx") && !filetype.Is(head, "zip") {
		return fmt.Errorf("%s is not a docx package", fname)
	}
	return nil
}

func fromParts(parts []archive.Part) (*Document, error) {
	d := &Document{parts: parts, mainPart: defaultMainPart}

	if data := d.part(relsPart); data != nil {
		if targets, err := relationTargets(data, "", relTypeOfficeDocument); err != nil {
			return nil, err
		} else if len(targets) > 0 {
			d.mainPart = targets[0]
		}
	}

	data := d.part(d.mainPart)
	if data == nil {
		return nil, fmt.Errorf("main document part %s is missing", d.mainPart)
	}
	main, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", d.mainPart, err)
	}
	d.main = main
	if root := d.main.Root(); root != nil {
		d.body = root.SelectElement("w:body")
	}
	if d.body == nil {
		return nil, fmt.Errorf("%s has no document body", d.mainPart)
	}

	dir, file := path.Split(d.mainPart)
	if data := d.part(dir + "_rels/" + file + ".rels"); data != nil {
		targets, err := relationTargets(data, dir, relTypeStyles)
		if err != nil {
			return nil, err
		}
		if len(targets) > 0 {
			d.stylesPart = targets[0]
		}
		if d.storyParts, err = relationTargets(data, dir, storyRelTypes...); err != nil {
			return nil, err
		}
	}
	if d.stylesPart == "" && d.part(dir+"styles.xml") != nil {
		d.stylesPart = dir + "styles.xml"
	}
	if d.stylesPart != "" {
		if data := d.part(d.stylesPart); data != nil {
			if d.styles, err = parseXML(data); err != nil {
				return nil, fmt.Errorf("unable to parse %s: %w", d.stylesPart, err)
			}
		}
	}
	return d, nil
}

var encodingDecl = regexp.MustCompile(`encoding\s*=\s*("[^"]*"|'[^']*')`)

// parseXML reads package part. Parts in legacy encodings are decoded, tree
// is always written back as UTF-8, so declaration is changed to match.
func parseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	for _, t := range doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = encodingDecl.ReplaceAllString(pi.Inst, `encoding="UTF-8"`)
		}
	}
	return doc, nil
}

// relationTargets returns targets of internal relationships of requested
// types in relationships order, resolved against base directory of the
// source part.
func relationTargets(data []byte, base string, relTypes ...string) ([]string, error) {
	rels, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse relationships: %w", err)
	}
	root := rels.Root()
	if root == nil {
		return nil, nil
	}
	var targets []string
	for _, rel := range root.SelectElements("Relationship") {
		if !slices.Contains(relTypes, rel.SelectAttrValue("Type", "")) || rel.SelectAttrValue("TargetMode", "") == "External" {
			continue
		}
		target := rel.SelectAttrValue("Target", "")
		if strings.HasPrefix(target, "/") {
			targets = append(targets, strings.TrimPrefix(target, "/"))
			continue
		}
		targets = append(targets, path.Clean(path.Join(base, target)))
	}
	return targets, nil
}

func (d *Document) part(name string) []byte {
	for i := range d.parts {
		if d.parts[i].Name == name {
			return d.parts[i].Data
		}
	}
	return nil
}

// Body returns w:body element of the main part.
func (d *Document) Body() *etree.Element {
	return d.body
}

// Stories returns root elements of headers, footers, notes and comments
// referenced from the main part. They are parsed on every call, read only
// and never written back. Unreadable parts are skipped.
func (d *Document) Stories() []*etree.Element {
	roots := make([]*etree.Element, 0, len(d.storyParts))
	for _, name := range d.storyParts {
		data := d.part(name)
		if data == nil {
			continue
		}
		x, err := parseXML(data)
		if err != nil || x.Root() == nil {
			continue
		}
		roots = append(roots, x.Root())
	}
	return roots
}

// Blocks returns paragraphs which are direct children of the body, in
// document order. Result is not cached as any edit changes it.
func (d *Document) Blocks() []*etree.Element {
	blocks := make([]*etree.Element, 0, len(d.body.Child))
	for el := range d.body.ChildElementsSeq() {
		if IsBlock(el) {
			blocks = append(blocks, el)
		}
	}
	return blocks
}

// MainXML serializes current state of the main document part.
func (d *Document) MainXML() ([]byte, error) {
	return d.main.WriteToBytes()
}

// Save writes package to the file. Output goes to temporary file in the
// destination directory first and replaces destination only when the whole
// package has been written, so failed save never leaves partial result.
func (d *Document) Save(fname string, fixZip bool) (err error) {
	main, err := d.main.WriteToBytes()
	if err != nil {
		return fmt.Errorf("unable to serialize %s: %w", d.mainPart, err)
	}
	var styles []byte
	if d.styles != nil {
		if styles, err = d.styles.WriteToBytes(); err != nil {
			return fmt.Errorf("unable to serialize %s: %w", d.stylesPart, err)
		}
	}

	dir := filepath.Dir(fname)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fname)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmpName))
		}
	}()

	// temporary files are private
	if err = tmp.Chmod(0644); err != nil {
		err = multierr.Append(err, tmp.Close())
		return fmt.Errorf("unable to create output file: %w", err)
	}
	if err = d.writeParts(tmp, main, styles); err != nil {
		err = multierr.Append(err, tmp.Close())
		return fmt.Errorf("unable to write package: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to write package: %w", err)
	}

	if fixZip {
		fixed := tmpName + ".fix"
		if err = copyZipWithoutDataDescriptors(tmpName, fixed); err != nil {
			return multierr.Append(err, removeIfExists(fixed))
		}
		if err = os.Rename(fixed, tmpName); err != nil {
			return multierr.Append(err, removeIfExists(fixed))
		}
	}

	if err = os.Rename(tmpName, fname); err != nil {
		return fmt.Errorf("unable to replace %s: %w", fname, err)
	}
	return nil
}

func (d *Document) writeParts(w io.Writer, main, styles []byte) error {
	arc := zip.NewWriter(w)
	for i := range d.parts {
		p := &d.parts[i]
		data := p.Data
		switch p.Name {
		case d.mainPart:
			data = main
		case d.stylesPart:
			if styles != nil {
				data = styles
			}
		}
		method := p.Method
		if method != zip.Store {
			method = zip.Deflate
		}
		fw, err := arc.CreateHeader(&zip.FileHeader{Name: p.Name, Method: method, Modified: p.Modified})
		if err != nil {
			return multierr.Append(err, arc.Close())
		}
		if _, err := io.Copy(fw, bytes.NewReader(data)); err != nil {
			return multierr.Append(err, arc.Close())
		}
	}
	return arc.Close()
}

// copyZipWithoutDataDescriptors rewrites archive so local headers carry
// sizes, some readers do not understand data descriptors.
func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return multierr.Append(fmt.Errorf("unable to write target file (%s): %w", to, err), w.Close())
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to write target file (%s): %w", to, err)
	}
	return out.Close()
}

func removeIfExists(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
