package docx

import (
	"archive/zip"
	"fmt"
	"time"

	"docmark/archive"
)

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// NumberedStyleID is paragraph style of empty packages which gets its
	// numbering through "basedOn" chain.
	NumberedStyleID = "ListNumber"
	// NumberingID is decimal list defined in numbering part of empty packages.
	NumberingID = "1"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relTypeOfficeDocument + `" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relTypeStyles + `" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
	`</Relationships>`

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + nsMain + `" xmlns:r="` + nsRel + `">` +
	`<w:body><w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body>` +
	`</w:document>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + nsMain + `">` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:basedOn w:val="Normal"/><w:pPr><w:ind w:left="720"/></w:pPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="` + NumberedStyleID + `"><w:name w:val="List Number"/><w:basedOn w:val="ListParagraph"/><w:pPr><w:numPr><w:numId w:val="` + NumberingID + `"/></w:numPr></w:pPr></w:style>` +
	`</w:styles>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="` + nsMain + `">` +
	`<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/><w:lvlJc w:val="left"/></w:lvl></w:abstractNum>` +
	`<w:num w:numId="` + NumberingID + `"><w:abstractNumId w:val="0"/></w:num>` +
	`</w:numbering>`

// New returns minimal empty package: main part with empty body, styles
// with a numbered paragraph style and single decimal list definition.
func New() *Document {
	now := time.Now().UTC().Truncate(time.Second)
	parts := []archive.Part{
		{Name: "[Content_Types].xml", Data: []byte(contentTypesXML)},
		{Name: relsPart, Data: []byte(packageRelsXML)},
		{Name: defaultMainPart, Data: []byte(documentXML)},
		{Name: "word/_rels/document.xml.rels", Data: []byte(documentRelsXML)},
		{Name: "word/styles.xml", Data: []byte(stylesXML)},
		{Name: "word/numbering.xml", Data: []byte(numberingXML)},
	}
	for i := range parts {
		parts[i].Method = zip.Deflate
		parts[i].Modified = now
	}
	d, err := fromParts(parts)
	if err != nil {
		// embedded parts are constant
		panic(fmt.Sprintf("unable to build empty package: %v", err))
	}
	return d
}
