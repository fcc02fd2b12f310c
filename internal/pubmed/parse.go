// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// efetch XML structures. Title and abstract keep their inner markup so
// inline tags such as <i> and <sup> can be flattened into plain text.
type articleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID      string         `xml:"MedlineCitation>PMID"`
	Title     *markup        `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract  []abstractText `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	ArticleID []articleID    `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type markup struct {
	Inner string `xml:",innerxml"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Inner string `xml:",innerxml"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// Parse decodes an efetch response into one ArticleRecord per article, in
// document order. A missing title or abstract yields types.NoTitle or
// types.NoAbstract; a missing DOI leaves DOI nil. Only a body that is not
// decodable at all returns a *ParseError. An empty body yields no records.
func Parse(body []byte) ([]types.ArticleRecord, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var set articleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, &ParseError{Endpoint: fetchEndpoint, Err: err}
	}

	records := make([]types.ArticleRecord, 0, len(set.Articles))
	for _, a := range set.Articles {
		records = append(records, a.record())
	}
	return records, nil
}

func (a pubmedArticle) record() types.ArticleRecord {
	rec := types.ArticleRecord{
		PMID:     strings.TrimSpace(a.PMID),
		Title:    types.NoTitle,
		Abstract: types.NoAbstract,
	}
	if a.Title != nil {
		rec.Title = flatten(a.Title.Inner)
	}
	if len(a.Abstract) > 0 {
		rec.Abstract = joinAbstract(a.Abstract)
	}
	for _, id := range a.ArticleID {
		if id.IDType != "doi" {
			continue
		}
		if doi := strings.TrimSpace(id.Value); doi != "" {
			rec.DOI = &doi
			break
		}
	}
	return rec
}

// joinAbstract renders structured abstracts as "LABEL: text" paragraphs
// separated by blank lines. A single unlabeled section is returned as is.
func joinAbstract(sections []abstractText) string {
	if len(sections) == 1 && sections[0].Label == "" {
		return flatten(sections[0].Inner)
	}
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		text := flatten(s.Inner)
		if s.Label != "" {
			text = s.Label + ": " + text
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// flatten strips inline markup from an element's inner XML, unescapes
// entities, and collapses runs of whitespace.
func flatten(inner string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(inner))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a truncated fragment; keep what was read either way.
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Inline tags contribute no text but may separate words.
			if !inlineTag(z) {
				sb.WriteByte(' ')
			}
		}
	}
}

func inlineTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "i", "b", "u", "sup", "sub", "em", "strong", "mml:math", "math":
		return true
	}
	return false
}
