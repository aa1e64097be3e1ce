// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "api-key", "  token-123  \n")
				writeFile(t, dir, "other", "value")
				return dir
			},
			want: Secrets{"api-key": "token-123", "other": "value"},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty and blank files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "api-key", "k")
				writeFile(t, dir, "empty", "")
				writeFile(t, dir, "blank", " \n\t ")
				return dir
			},
			want: Secrets{"api-key": "k"},
		},
		{
			name: "skips dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Secrets{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file", "x")

	_, err := Load(filepath.Join(dir, "file"), nil)
	assert.Error(t, err)
}

func TestSecrets_APIKey(t *testing.T) {
	assert.Equal(t, "tok", Secrets{APIKeyName: "tok"}.APIKey())
	assert.Empty(t, Secrets{}.APIKey())
	assert.Empty(t, Secrets(nil).APIKey())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
