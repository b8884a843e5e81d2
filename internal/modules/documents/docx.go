package documents

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/letter.xml
var defaultLetterTemplate string

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

type docxRenderer struct {
	tmpl *template.Template
}

// NewDOCXRenderer parses the WordprocessingML body template at path, or the
// built-in one when path is empty.
func NewDOCXRenderer(path string) (Renderer, error) {
	src := defaultLetterTemplate
	if p := strings.TrimSpace(path); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read letter template: %w", err)
		}
		src = string(raw)
	}
	tmpl, err := template.New("letter").
		Option("missingkey=zero").
		Funcs(template.FuncMap{"xml": xmlEscape}).
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse letter template: %w", err)
	}
	return &docxRenderer{tmpl: tmpl}, nil
}

func (r *docxRenderer) Format() string      { return FormatDOCX }
func (r *docxRenderer) Ext() string         { return "docx" }
func (r *docxRenderer) ContentType() string { return docxContentType }

func (r *docxRenderer) Render(l Letter) ([]byte, error) {
	var body bytes.Buffer
	if err := r.tmpl.Execute(&body, l); err != nil {
		return nil, fmt.Errorf("render letter body: %w", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", body.Bytes()},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func xmlEscape(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}
