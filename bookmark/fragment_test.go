package bookmark

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestExtractFragments(t *testing.T) {
	doc := fixture(t)

	tests := []struct {
		name      string
		positions []Position
		nodes     []int
		text      string
	}{
		{"labelA", []Position{Only}, []int{3}, "2. Foo: Bar"},
		{"multi", []Position{First, Middle, Last}, []int{1, 1, 1}, "one\ntwo\nthree"},
		{"labelB", []Position{Only}, []int{1}, "    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := ExtractFragments(doc, mustSpan(t, doc, tt.name))
			if len(frags) != len(tt.positions) {
				t.Fatalf("got %d fragments, want %d", len(frags), len(tt.positions))
			}
			for i, f := range frags {
				if f.Position != tt.positions[i] {
					t.Errorf("fragment[%d] position = %s, want %s", i, f.Position, tt.positions[i])
				}
				if len(f.Nodes) != tt.nodes[i] {
					t.Errorf("fragment[%d] has %d nodes, want %d", i, len(f.Nodes), tt.nodes[i])
				}
			}
			if got := Text(frags); got != tt.text {
				t.Errorf("text = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestExtractFragments_DoesNotMutate(t *testing.T) {
	doc := fixture(t)
	before := mainXML(t, doc)
	for _, name := range fixtureMarkers {
		span := mustSpan(t, doc, name)
		first := Text(ExtractFragments(doc, span))
		second := Text(ExtractFragments(doc, span))
		if first != second {
			t.Errorf("%s: repeated extraction differs: %q vs %q", name, first, second)
		}
	}
	if after := mainXML(t, doc); after != before {
		t.Error("extraction changed the document")
	}
}

func TestExtractFragments_SkipsOtherAnchors(t *testing.T) {
	doc := docFrom(t, p(bs("m", "1"), r("x"), bs("inner", "2"), r("y"), be("2"), be("1")))
	frags := ExtractFragments(doc, mustSpan(t, doc, "m"))
	if len(frags) != 1 || len(frags[0].Nodes) != 2 {
		t.Fatalf("unexpected fragments: %+v", frags)
	}
	for _, n := range frags[0].Nodes {
		if isAnchor(n) {
			t.Errorf("anchor %s extracted as content", n.FullTag())
		}
	}
}

func TestExtractFragments_OutOfRange(t *testing.T) {
	doc := fixture(t)
	if frags := ExtractFragments(doc, Span{Start: 4, End: 40}); frags != nil {
		t.Errorf("out of range span produced %d fragments", len(frags))
	}
}

func TestFragmentClone(t *testing.T) {
	doc := fixture(t)
	frags := ExtractFragments(doc, mustSpan(t, doc, "labelA"))
	clones := CloneAll(frags)

	clones[0].Nodes[0].FindElement("w:t").SetText("changed")
	if got := textOf(t, doc, "labelA"); got != "2. Foo: Bar" {
		t.Errorf("changing clone affected document: %q", got)
	}
	for _, n := range clones[0].Nodes {
		if n.Parent() != nil {
			t.Error("cloned node is still attached")
		}
	}
	if clones[0].Position != frags[0].Position {
		t.Errorf("clone position = %s, want %s", clones[0].Position, frags[0].Position)
	}
}

func TestContent(t *testing.T) {
	log := zaptest.NewLogger(t)
	doc := docFrom(t,
		p(bs("empty", "1")),
		p(bs("unclosed", "2"), r("text")),
		p(bs("labelA", "3"), r("a"), be("3")),
	)

	frags, err := Content(doc, "empty", log)
	if err != nil || frags == nil || len(frags) != 0 {
		t.Errorf("empty marker: %v, %v, want empty content", frags, err)
	}
	if _, err := Content(doc, "unclosed", log); err == nil {
		t.Error("unclosed marker with content did not fail")
	}
	if _, err := Content(doc, "missingLabel", log); err == nil {
		t.Error("missing marker did not fail")
	}
	if frags, err := Content(doc, "labelA", log); err != nil || Text(frags) != "a" {
		t.Errorf("labelA: %q, %v", Text(frags), err)
	}
}
