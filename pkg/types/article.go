// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

const (
	// NoTitle is the title recorded when the article has no title node.
	NoTitle = "No Title"

	// NoAbstract is the abstract recorded when the article has no abstract node.
	NoAbstract = "No Abstract"
)

// ArticleRecord holds the fields extracted from one fetched article.
// Synopsis stays nil until the summarizer runs and is never set for
// records without an abstract.
type ArticleRecord struct {
	// PMID is the database identifier the record was fetched for, when known.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	Title    string  `json:"title" yaml:"title"`
	Abstract string  `json:"abstract" yaml:"abstract"`
	DOI      *string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Synopsis *string `json:"synopsis,omitempty" yaml:"synopsis,omitempty"`
}

// HasAbstract reports whether the record carries a real abstract rather
// than the NoAbstract default.
func (a ArticleRecord) HasAbstract() bool {
	return a.Abstract != NoAbstract
}

// DOIURL returns the resolver link for the record's DOI, or "" if it has none.
func (a ArticleRecord) DOIURL() string {
	if a.DOI == nil {
		return ""
	}
	return "https://doi.org/" + *a.DOI
}

// Report is the assembled output of one pipeline run.
type Report struct {
	PromptText string          `json:"prompt_text" yaml:"prompt_text"`
	Articles   []ArticleRecord `json:"articles" yaml:"articles"`
}
