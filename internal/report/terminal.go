// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/evidence-review/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).
			Border(lipgloss.NormalBorder(), false, false, true, false)
	h2Style      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).MarginTop(1)
	h3Style      = lipgloss.NewStyle().Bold(true).MarginTop(1)
	doiStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Underline(true)
	summaryStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("10"))
)

// Terminal returns r styled for a terminal. Paragraphs wrap at width when
// width is positive.
func Terminal(r types.Report, width int) string {
	body := lipgloss.NewStyle()
	if width > 0 {
		body = body.Width(width)
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(titleStyle.Render(Title))
	line(body.Render(strings.TrimRight(r.PromptText, "\n")))
	line(h2Style.Render(ArticlesHeading))

	for _, s := range sections(r) {
		line(h3Style.Render(s.Heading))
		line(body.Render(s.Abstract))
		if s.DOI != "" {
			line(doiStyle.Render(s.DOI))
		}
		if s.HasSynopsis {
			line(body.Render(summaryStyle.Render(summaryPrefix + s.Synopsis)))
		}
	}
	return b.String()
}
