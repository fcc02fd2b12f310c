// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// WriteYAML writes r as YAML to w.
func WriteYAML(w io.Writer, r types.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return &ExportError{Err: fmt.Errorf("encoding YAML: %w", err)}
	}
	if err := enc.Close(); err != nil {
		return &ExportError{Err: fmt.Errorf("encoding YAML: %w", err)}
	}
	return nil
}

// ReadYAML decodes a report previously written by WriteYAML.
func ReadYAML(rd io.Reader) (types.Report, error) {
	var r types.Report
	if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
		return types.Report{}, fmt.Errorf("decoding report YAML: %w", err)
	}
	return r, nil
}
