// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDirectory(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLoad_ReadsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openalex-email"), []byte("me@example.org\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nominatim-user-agent"), []byte("  citemap/0.1  "), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("skip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("   \n"), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "me@example.org", s["openalex-email"])
	assert.Equal(t, "citemap/0.1", s["nominatim-user-agent"])
	assert.NotContains(t, s, ".hidden")
	assert.NotContains(t, s, "empty")
}

func TestGet_EnvFallback(t *testing.T) {
	t.Setenv("OPENALEX_EMAIL", "env@example.org")

	assert.Equal(t, "file@example.org",
		Get(map[string]string{"openalex-email": "file@example.org"}, "openalex-email"))
	assert.Equal(t, "env@example.org", Get(map[string]string{}, "openalex-email"))
	assert.Equal(t, "", Get(map[string]string{}, "nominatim-user-agent"))
}
