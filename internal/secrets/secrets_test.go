// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-review/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   Secrets
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NCBIAPIKey, "  ncbi_abc123  \n")
				writeFile(t, dir, HuggingFaceToken, "hf_xyz789")
				writeFile(t, dir, OpenAIAPIKey, "sk-test\n")
				return dir
			},
			want: Secrets{
				NCBIAPIKey:       "ncbi_abc123",
				HuggingFaceToken: "hf_xyz789",
				OpenAIAPIKey:     "sk-test",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, HuggingFaceToken, "valid-token")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{HuggingFaceToken: "valid-token"},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, NCBIAPIKey, "ncbi_real")
				return dir
			},
			want: Secrets{NCBIAPIKey: "ncbi_real"},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIAPIKey, "sk-123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{OpenAIAPIKey: "sk-123"},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: Secrets{},
		},
		{
			name: "path is a file not a directory",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "plain", "x")
				return filepath.Join(dir, "plain")
			},
			errMsg: "reading secrets directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestNamesSortedWithoutValues(t *testing.T) {
	s := Secrets{OpenAIAPIKey: "sk", NCBIAPIKey: "n", HuggingFaceToken: "hf"}
	assert.Equal(t, []string{HuggingFaceToken, NCBIAPIKey, OpenAIAPIKey}, s.Names())
}

func TestApply(t *testing.T) {
	s := Secrets{NCBIAPIKey: "ncbi", HuggingFaceToken: "hf", OpenAIAPIKey: "sk"}

	t.Run("fills empty credentials for huggingface", func(t *testing.T) {
		cfg := types.DefaultPipelineConfig()
		s.Apply(&cfg)
		assert.Equal(t, "ncbi", cfg.Literature.APIKey)
		assert.Equal(t, "hf", cfg.Summarizer.Token)
	})

	t.Run("selects openai key for openai backend", func(t *testing.T) {
		cfg := types.DefaultPipelineConfig()
		cfg.Summarizer.Backend = types.SummarizerOpenAI
		s.Apply(&cfg)
		assert.Equal(t, "sk", cfg.Summarizer.Token)
	})

	t.Run("explicit values win", func(t *testing.T) {
		cfg := types.DefaultPipelineConfig()
		cfg.Literature.APIKey = "flag-key"
		cfg.Summarizer.Token = "flag-token"
		s.Apply(&cfg)
		assert.Equal(t, "flag-key", cfg.Literature.APIKey)
		assert.Equal(t, "flag-token", cfg.Summarizer.Token)
	})

	t.Run("none backend gets no token", func(t *testing.T) {
		cfg := types.DefaultPipelineConfig()
		cfg.Summarizer.Backend = types.SummarizerNone
		s.Apply(&cfg)
		assert.Empty(t, cfg.Summarizer.Token)
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
