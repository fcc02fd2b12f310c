// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package question saves and loads research questions as YAML files so a
// question can be edited by hand and re-run without retyping flags.
package question

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// File is the on-disk representation of a saved question.
type File struct {
	Question types.ResearchQuestion `yaml:"question"`
	SavedAt  time.Time              `yaml:"saved_at,omitempty"`
}

// WriteFile saves q to path. The question is validated first so a file on
// disk always loads.
func WriteFile(path string, q types.ResearchQuestion) error {
	if err := q.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(&File{Question: q, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshaling question file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a question from path. Fields the file omits keep the
// values of types.DefaultQuestion.
func ReadFile(path string) (types.ResearchQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ResearchQuestion{}, fmt.Errorf("reading question file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a question file body.
func Parse(data []byte) (types.ResearchQuestion, error) {
	qf := File{Question: types.DefaultQuestion()}
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return types.ResearchQuestion{}, fmt.Errorf("parsing question file: %w", err)
	}
	if err := qf.Question.Validate(); err != nil {
		return types.ResearchQuestion{}, err
	}
	return qf.Question, nil
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// StudyTypes converts names to study types. Validation is left to
// ResearchQuestion.Validate.
func StudyTypes(names []string) []types.StudyType {
	out := make([]types.StudyType, len(names))
	for i, n := range names {
		out[i] = types.StudyType(strings.ToLower(n))
	}
	return out
}

// Sources converts names to preferred sources.
func Sources(names []string) []types.Source {
	out := make([]types.Source, len(names))
	for i, n := range names {
		out[i] = types.Source(strings.ToLower(n))
	}
	return out
}
