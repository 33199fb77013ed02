package bookmark

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"docmark/docx"
)

// Helpers building small documents from WordprocessingML snippets.

const numbered = `<w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>`

func p(children ...string) string {
	return "<w:p>" + strings.Join(children, "") + "</w:p>"
}

func r(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func rb(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func bs(name, id string) string {
	return `<w:bookmarkStart w:id="` + id + `" w:name="` + name + `"/>`
}

func be(id string) string {
	return `<w:bookmarkEnd w:id="` + id + `"/>`
}

func jc(val string) string {
	return `<w:pPr><w:jc w:val="` + val + `"/></w:pPr>`
}

func numPr(id, lvl string) string {
	return `<w:pPr><w:numPr><w:ilvl w:val="` + lvl + `"/><w:numId w:val="` + id + `"/></w:numPr></w:pPr>`
}

func docFrom(t *testing.T, body ...string) *docx.Document {
	t.Helper()
	x := etree.NewDocument()
	src := `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + strings.Join(body, "") + `</w:body>`
	if err := x.ReadFromString(src); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	d := docx.New()
	for _, el := range x.Root().ChildElements() {
		d.AppendBlock(el)
	}
	return d
}

// fixture has single block marker labelA, three block marker multi and
// single block marker labelB with placeholder content.
func fixture(t *testing.T) *docx.Document {
	t.Helper()
	return docFrom(t,
		p(jc("center"), rb("Title")),
		p(numbered, bs("labelA", "1"), r("2. "), rb("Foo:"), r(" Bar"), be("1")),
		p(numbered, bs("multi", "2"), r("one")),
		p(r("two")),
		p(jc("center"), r("three"), be("2"), r(" tail")),
		p(bs("labelB", "3"), r("    "), be("3")),
	)
}

var fixtureMarkers = []string{"labelA", "multi", "labelB"}

func mustSpan(t *testing.T, doc Document, name string) Span {
	t.Helper()
	span, err := ResolveSpan(doc, name, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("ResolveSpan(%q) error = %v", name, err)
	}
	return span
}

func textOf(t *testing.T, doc Document, name string) string {
	t.Helper()
	return Text(ExtractFragments(doc, mustSpan(t, doc, name)))
}

func mainXML(t *testing.T, d *docx.Document) string {
	t.Helper()
	data, err := d.MainXML()
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func warnings() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return zap.New(core), logs
}
