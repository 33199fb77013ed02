package edit

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docmark/bookmark"
	"docmark/docx"
)

// Sample builds small document to experiment with: title, a list of reasons
// typed with text numbers where the second one is marker "labelA", plain
// paragraph, marker "labelB" with placeholder content and three block marker
// "labelC" numbered through paragraph style.
func Sample() *docx.Document {
	d := docx.New()
	ids := bookmark.NewIDGen(d)

	title := blockWithStyle(`<w:jc w:val="center"/>`)
	title.AddChild(docx.NewBoldRun("Reasons for pursuing a master's degree"))
	d.AppendBlock(title)

	d.AppendBlock(docx.NewBlock())

	first := docx.NewBlock()
	first.AddChild(docx.NewRun("1. Improve the ability to solve complex problems."))
	d.AppendBlock(first)

	second := docx.NewBlock()
	second.AddChild(docx.NewRun("2. "))
	second.AddChild(docx.NewBoldRun("Stay competitive and embrace the AI wave:"))
	second.AddChild(docx.NewRun(" large technology companies prefer candidates with advanced degrees, " +
		"and keeping up with the AI technology stack is what the job market will demand."))
	bookmark.Attach(second, second, "labelA", ids.Next())
	d.AppendBlock(second)

	other := docx.NewBlock()
	other.AddChild(docx.NewRun("Another paragraph to check document structure."))
	d.AppendBlock(other)

	placeholder := docx.NewBlock()
	placeholder.AddChild(docx.NewRun("    "))
	bookmark.Attach(placeholder, placeholder, "labelB", ids.Next())
	d.AppendBlock(placeholder)

	steps := make([]*etree.Element, 0, 3)
	for _, text := range []string{"Choose the program.", "Prepare the application.", "Pass the interview."} {
		b := blockWithStyle(`<w:pStyle w:val="` + docx.NumberedStyleID + `"/>`)
		b.AddChild(docx.NewRun(text))
		d.AppendBlock(b)
		steps = append(steps, b)
	}
	bookmark.Attach(steps[0], steps[len(steps)-1], "labelC", ids.Next())
	return d
}

func blockWithStyle(props string) *etree.Element {
	b := docx.NewBlock()
	x := etree.NewDocument()
	if err := x.ReadFromString(`<w:pPr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + props + `</w:pPr>`); err != nil {
		// properties are constant
		panic(err)
	}
	ppr := x.Root()
	ppr.RemoveAttr("xmlns:w")
	b.AddChild(ppr)
	return b
}

// WriteSample saves sample document.
func (e *Editor) WriteSample(path string) error {
	if err := checkDestination(path, e.cfg.Overwrite, e.log); err != nil {
		return err
	}
	if err := Sample().Save(path, e.cfg.FixZip); err != nil {
		return err
	}
	e.log.Debug("Sample document written", zap.String("file", path))
	return nil
}
