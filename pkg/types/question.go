// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-review pipeline:
// the PICO research question, article records, the assembled report, and the
// per-stage configuration structs.
package types

import (
	"errors"
	"fmt"
)

// StudyType is a study design the review should draw evidence from.
type StudyType string

const (
	StudySystematicReview StudyType = "systematic_review"
	StudyMetaAnalysis     StudyType = "meta_analysis"
	StudyRCT              StudyType = "rct"
)

// Label returns the human-readable name used in the prompt.
func (s StudyType) Label() string {
	switch s {
	case StudySystematicReview:
		return "systematic reviews"
	case StudyMetaAnalysis:
		return "meta-analyses"
	case StudyRCT:
		return "RCTs"
	default:
		return string(s)
	}
}

// Source is a preferred evidence source.
type Source string

const (
	SourcePubMed     Source = "pubmed"
	SourceCochrane   Source = "cochrane"
	SourceGuidelines Source = "guidelines"
)

// Label returns the human-readable name used in the prompt.
func (s Source) Label() string {
	switch s {
	case SourcePubMed:
		return "PubMed"
	case SourceCochrane:
		return "Cochrane Library"
	case SourceGuidelines:
		return "Guidelines"
	default:
		return string(s)
	}
}

// OutputFormat selects how the reviewer is asked to present findings.
type OutputFormat string

const (
	FormatBullets OutputFormat = "bullets"
	FormatReport  OutputFormat = "report"
	FormatTable   OutputFormat = "table"
)

// Label returns the human-readable name used in the prompt.
func (f OutputFormat) Label() string {
	switch f {
	case FormatBullets:
		return "bullet points"
	case FormatReport:
		return "detailed report"
	case FormatTable:
		return "table"
	default:
		return string(f)
	}
}

const (
	MinYearLimit = 1
	MaxYearLimit = 10
)

// Question validation errors, matched with errors.Is.
var (
	ErrInvalidYearLimit    = errors.New("invalid year limit: must be between 1 and 10")
	ErrInvalidStudyType    = errors.New("invalid study type")
	ErrInvalidSource       = errors.New("invalid preferred source")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrDuplicateOption     = errors.New("duplicate option")
)

// ResearchQuestion is a structured clinical question in PICO form plus the
// review options. It is built once by the caller and not modified afterwards.
type ResearchQuestion struct {
	Topic        string `json:"topic" yaml:"topic"`
	Population   string `json:"population" yaml:"population"`
	Intervention string `json:"intervention" yaml:"intervention"`
	Comparison   string `json:"comparison" yaml:"comparison"`
	Outcome      string `json:"outcome" yaml:"outcome"`

	// StudyTypes is an ordered set; order is preserved in the prompt.
	StudyTypes []StudyType `json:"study_types" yaml:"study_types"`

	// YearLimit restricts evidence to the last N years (1-10).
	YearLimit int `json:"year_limit" yaml:"year_limit"`

	// PreferredSources is an ordered set; order is preserved in the prompt.
	PreferredSources []Source `json:"preferred_sources" yaml:"preferred_sources"`

	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`
}

// DefaultQuestion returns the example question the form is pre-filled with.
func DefaultQuestion() ResearchQuestion {
	return ResearchQuestion{
		Topic:            "Efficacy of SGLT2 inhibitors in CKD patients to reduce cardiovascular mortality",
		Population:       "Adult diabetic patients with CKD stages 3-4",
		Intervention:     "SGLT2 inhibitors",
		Comparison:       "Placebo or other antidiabetic agents",
		Outcome:          "Cardiovascular mortality, hospitalization, CKD progression",
		StudyTypes:       []StudyType{StudySystematicReview, StudyMetaAnalysis, StudyRCT},
		YearLimit:        5,
		PreferredSources: []Source{SourcePubMed, SourceCochrane, SourceGuidelines},
		OutputFormat:     FormatBullets,
	}
}

// Validate checks the option fields. PICO text fields may be empty.
func (q ResearchQuestion) Validate() error {
	if q.YearLimit < MinYearLimit || q.YearLimit > MaxYearLimit {
		return fmt.Errorf("%w (got %d)", ErrInvalidYearLimit, q.YearLimit)
	}

	seenStudy := make(map[StudyType]bool, len(q.StudyTypes))
	for _, s := range q.StudyTypes {
		switch s {
		case StudySystematicReview, StudyMetaAnalysis, StudyRCT:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidStudyType, s)
		}
		if seenStudy[s] {
			return fmt.Errorf("%w: study type %q", ErrDuplicateOption, s)
		}
		seenStudy[s] = true
	}

	seenSource := make(map[Source]bool, len(q.PreferredSources))
	for _, s := range q.PreferredSources {
		switch s {
		case SourcePubMed, SourceCochrane, SourceGuidelines:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSource, s)
		}
		if seenSource[s] {
			return fmt.Errorf("%w: source %q", ErrDuplicateOption, s)
		}
		seenSource[s] = true
	}

	switch q.OutputFormat {
	case FormatBullets, FormatReport, FormatTable:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, q.OutputFormat)
	}
	return nil
}
