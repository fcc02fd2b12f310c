// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"io"

	md "github.com/nao1215/markdown"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// WriteMarkdown writes r as Markdown to w.
func WriteMarkdown(w io.Writer, r types.Report) error {
	doc := md.NewMarkdown(w)

	doc.H1(Title).PlainText("")
	doc.PlainText(r.PromptText).PlainText("")
	doc.H2(ArticlesHeading).PlainText("")

	for _, s := range sections(r) {
		doc.H3(s.Heading).PlainText("")
		doc.PlainText(s.Abstract).PlainText("")
		if s.DOI != "" {
			doc.PlainText(md.Link(s.DOI, s.DOI)).PlainText("")
		}
		if s.HasSynopsis {
			doc.PlainText(md.Bold("Summary:") + " " + s.Synopsis).PlainText("")
		}
	}
	return doc.Build()
}

// Markdown returns r rendered as Markdown.
func Markdown(r types.Report) string {
	var buf bytes.Buffer
	_ = WriteMarkdown(&buf, r) // bytes.Buffer writes do not fail
	return buf.String()
}
