// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: openalex-email, nominatim-user-agent.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads every file in dir into a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map so absent
// secrets degrade to the environment fallback in Get. Unreadable files
// produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return secrets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the secret for key, falling back to the environment variable
// formed by uppercasing the key and replacing dashes with underscores
// (openalex-email → OPENALEX_EMAIL). Returns "" when neither is set.
func Get(secrets map[string]string, key string) string {
	if v, ok := secrets[key]; ok {
		return v
	}
	env := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	return strings.TrimSpace(os.Getenv(env))
}
