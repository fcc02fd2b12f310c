// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the prompt and fetched articles into a Report
// and renders it as a .docx document, Markdown, HTML, terminal text, or YAML.
// Every rendering follows the same section order.
package report

import (
	"fmt"

	"github.com/pdiddy/evidence-review/pkg/types"
)

const (
	// Title is the top-level heading of every rendering.
	Title = "Evidence Review Report"

	// ArticlesHeading introduces the per-article subsections.
	ArticlesHeading = "Articles and Summaries"

	// DocxFilename is the suggested download name of an exported report.
	DocxFilename = "research_report.docx"

	// DocxMIMEType is the content type of an exported report.
	DocxMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	summaryPrefix = "Summary: "
)

// Assemble builds a Report from the prompt and the articles, keeping the
// articles in input order. The slice is copied so later changes by the
// caller do not alter the report.
func Assemble(prompt string, articles []types.ArticleRecord) types.Report {
	out := make([]types.ArticleRecord, len(articles))
	copy(out, articles)
	return types.Report{PromptText: prompt, Articles: out}
}

// articleHeading is the "{index}. {title}" subsection heading, 1-based.
func articleHeading(i int, a types.ArticleRecord) string {
	return fmt.Sprintf("%d. %s", i+1, a.Title)
}

// section is one article flattened to the paragraphs every renderer emits.
// DOI is empty when the record has none.
type section struct {
	Heading     string
	Abstract    string
	DOI         string
	Synopsis    string
	HasSynopsis bool
}

func sections(r types.Report) []section {
	out := make([]section, len(r.Articles))
	for i, a := range r.Articles {
		s := section{
			Heading:  articleHeading(i, a),
			Abstract: a.Abstract,
			DOI:      a.DOIURL(),
		}
		if a.Synopsis != nil {
			s.Synopsis, s.HasSynopsis = *a.Synopsis, true
		}
		out[i] = s
	}
	return out
}
