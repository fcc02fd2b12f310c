// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// ExportError reports a failure to serialize a report document.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting report: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Heading paragraph styles and run sizes (half-points).
var headingStyles = [...]struct {
	style string
	size  string
}{
	{"Heading1", "36"},
	{"Heading2", "30"},
	{"Heading3", "26"},
}

// Export renders r as a .docx document and returns its bytes.
// Serializer failures are returned as *ExportError.
func Export(r types.Report) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	addHeading(doc, 1, Title)
	doc.AddParagraph().AddText(r.PromptText)

	addHeading(doc, 2, ArticlesHeading)
	for _, s := range sections(r) {
		addHeading(doc, 3, s.Heading)
		doc.AddParagraph().AddText(s.Abstract)
		if s.DOI != "" {
			doc.AddParagraph().AddText(s.DOI)
		}
		if s.HasSynopsis {
			doc.AddParagraph().AddText(summaryPrefix + s.Synopsis)
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, &ExportError{Err: err}
	}
	return buf.Bytes(), nil
}

// WriteDocx writes r as a .docx document to w. The document is built in
// memory before anything is written to w.
func WriteDocx(w io.Writer, r types.Report) error {
	b, err := Export(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return &ExportError{Err: err}
	}
	return nil
}

func addHeading(doc *docx.Docx, level int, text string) {
	h := headingStyles[level-1]
	doc.AddParagraph().Style(h.style).AddText(text).Bold().Size(h.size)
}
