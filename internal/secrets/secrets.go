// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads vocabulary endpoint credentials from a directory of
// plain-text files. Each file in the directory represents one secret: the
// filename is the key name and the file contents (trimmed) are the value.
//
// Bearer tokens for a vocabulary host are stored as "<host>-token", for
// example "vocab.example.org-token".
package secrets

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const tokenSuffix = "-token"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// TokenFor returns the bearer token for the host of rawURL. The host is
// matched case-insensitively, with and without its port.
func TokenFor(secrets map[string]string, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}

	for _, key := range []string{strings.ToLower(u.Host), strings.ToLower(u.Hostname())} {
		if tok, ok := secrets[key+tokenSuffix]; ok {
			return tok, true
		}
	}
	return "", false
}
