package edit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"docmark/config"
)

// NameValues holds variables available to copy name template.
type NameValues struct {
	Context string
	// Name of the marker being copied.
	Name string
	// Index of the copy, starting with 1.
	Index int
	// Count is total number of copies requested.
	Count int
}

type namer struct {
	tmpl *template.Template
}

func newNamer(field string) (*namer, error) {
	name := string(config.CopyNameTemplateFieldName)
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	return &namer{tmpl: tmpl}, nil
}

func (n *namer) expand(marker string, index, count int) (string, error) {
	values := NameValues{
		Context: string(config.CopyNameTemplateFieldName),
		Name:    marker,
		Index:   index,
		Count:   count,
	}
	buf := new(bytes.Buffer)
	if err := n.tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	res := strings.TrimSpace(buf.String())
	if res == "" {
		return "", errors.New("copy name template produced empty name")
	}
	return res, nil
}
