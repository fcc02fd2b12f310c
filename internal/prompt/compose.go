// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the clinical-researcher prompt from a research question.
package prompt

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// reviewPromptTmpl is the fixed five-section prompt: role framing, PICO
// summary, numbered instructions, and a closing optional suggestion.
var reviewPromptTmpl = template.Must(template.New("review").Parse(`Act as a clinical researcher specialized in evidence-based medicine. I need you to conduct a structured literature review on the following topic:

**Research Topic:** {{.Topic}}

Use the PICO framework:
- **Population (P):** {{.Population}}
- **Intervention (I):** {{.Intervention}}
- **Comparison (C):** {{.Comparison}}
- **Outcome (O):** {{.Outcome}}

**Instructions:**
1. Retrieve evidence from the following study types: {{.StudyTypes}}.
2. Only include studies published within the last {{.YearLimit}} years.
3. Prefer references from: {{.Sources}}.
4. Provide references with PubMed links or DOI.
5. Present the findings in {{.OutputFormat}}.
6. Summarize key conclusions and highlight gaps in current research.

Optional: If applicable, suggest potential future research directions.
`))

type promptData struct {
	Topic        string
	Population   string
	Intervention string
	Comparison   string
	Outcome      string
	StudyTypes   string
	YearLimit    int
	Sources      string
	OutputFormat string
}

// Compose renders the prompt for q. It is deterministic and performs no I/O.
func Compose(q types.ResearchQuestion) string {
	studies := make([]string, len(q.StudyTypes))
	for i, s := range q.StudyTypes {
		studies[i] = s.Label()
	}
	sources := make([]string, len(q.PreferredSources))
	for i, s := range q.PreferredSources {
		sources[i] = s.Label()
	}

	data := promptData{
		Topic:        q.Topic,
		Population:   q.Population,
		Intervention: q.Intervention,
		Comparison:   q.Comparison,
		Outcome:      q.Outcome,
		StudyTypes:   strings.Join(studies, ", "),
		YearLimit:    q.YearLimit,
		Sources:      strings.Join(sources, ", "),
		OutputFormat: q.OutputFormat.Label(),
	}

	var buf bytes.Buffer
	_ = reviewPromptTmpl.Execute(&buf, data) // bytes.Buffer writes do not fail

	return buf.String()
}
