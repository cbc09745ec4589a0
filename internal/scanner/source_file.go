// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package scanner discovers handler manifest files.
package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// ManifestSuffixes are the file name suffixes that mark a manifest.
var ManifestSuffixes = []string{".apidesc.yaml", ".apidesc.yml"}

// SourceFile is a discovered manifest file.
type SourceFile struct {
	// Path is the absolute path to the file
	Path string

	// Content is the file content
	Content []byte

	// ModTime is the last modification time
	ModTime time.Time
}

// IsManifestFile reports whether path names a manifest file.
func IsManifestFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range ManifestSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
