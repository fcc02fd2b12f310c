// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: ncbi-api-key, huggingface-token, openai-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// Key file names.
const (
	NCBIAPIKey       = "ncbi-api-key"
	HuggingFaceToken = "huggingface-token"
	OpenAIAPIKey     = "openai-api-key"
)

// Secrets maps key file names to their trimmed contents.
type Secrets map[string]string

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged at warn level and skipped.
func Load(dir string, logger *slog.Logger) (Secrets, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Names returns the loaded key names in sorted order, never the values.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Apply fills credentials in cfg that are still empty. Values already set
// by flags, environment, or config file win over secret files. The
// summarizer token comes from the key file matching the selected backend.
func (s Secrets) Apply(cfg *types.PipelineConfig) {
	if cfg.Literature.APIKey == "" {
		cfg.Literature.APIKey = s[NCBIAPIKey]
	}
	if cfg.Summarizer.Token != "" {
		return
	}
	switch cfg.Summarizer.Backend {
	case types.SummarizerOpenAI:
		cfg.Summarizer.Token = s[OpenAIAPIKey]
	case types.SummarizerHuggingFace, "":
		cfg.Summarizer.Token = s[HuggingFaceToken]
	}
}
