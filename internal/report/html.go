// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// markdownHTML converts report Markdown to an HTML fragment. Raw HTML in
// titles or abstracts is not passed through.
var markdownHTML = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML returns r rendered as an HTML fragment, converted from its Markdown.
func HTML(r types.Report) (string, error) {
	var buf bytes.Buffer
	if err := markdownHTML.Convert([]byte(Markdown(r)), &buf); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.String(), nil
}
