// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Config holds scanner configuration.
type Config struct {
	// BasePath is the directory patterns are matched relative to (defaults to current directory)
	BasePath string

	// IncludePatterns are glob patterns for files to include (e.g., "**/*.apidesc.yaml")
	IncludePatterns []string

	// ExcludePatterns are glob patterns for files to exclude (e.g., "vendor/**")
	ExcludePatterns []string

	// Logger receives debug output about skipped files (defaults to the standard logger)
	Logger logrus.FieldLogger
}

// DefaultIncludePatterns match every manifest file below the base path.
var DefaultIncludePatterns = []string{"**/*.apidesc.yaml", "**/*.apidesc.yml"}

// Scanner discovers manifest files in a project.
type Scanner struct {
	config   Config
	basePath string
}

// New creates a new Scanner with the given configuration.
func New(config Config) *Scanner {
	if config.BasePath == "" {
		config.BasePath = "."
	}
	if len(config.IncludePatterns) == 0 {
		config.IncludePatterns = DefaultIncludePatterns
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	basePath, err := filepath.Abs(config.BasePath)
	if err != nil {
		basePath = config.BasePath
	}
	return &Scanner{
		config:   config,
		basePath: basePath,
	}
}

// Scan discovers all manifest files below the base path.
func (s *Scanner) Scan() ([]SourceFile, error) {
	return s.ScanPath(s.basePath)
}

// ScanPath scans a file or directory for manifest files. Files are returned in
// lexical path order.
func (s *Scanner) ScanPath(path string) ([]SourceFile, error) {
	var files []SourceFile
	err := s.walk(path, func(filePath string, info fs.FileInfo) error {
		content, err := os.ReadFile(filePath)
		if err != nil {
			s.config.Logger.WithField("file", filePath).WithError(err).Debug("skipping unreadable manifest")
			return nil
		}
		files = append(files, SourceFile{
			Path:    filePath,
			Content: content,
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ScanPaths scans multiple paths, returning each file once.
func (s *Scanner) ScanPaths(paths []string) ([]SourceFile, error) {
	var all []SourceFile
	for _, path := range paths {
		files, err := s.ScanPath(path)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return lo.UniqBy(all, func(f SourceFile) string { return f.Path }), nil
}

// Dirs returns the directories below paths that are not excluded. The watch
// command subscribes to them.
func (s *Scanner) Dirs(paths []string) ([]string, error) {
	var dirs []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		err = filepath.WalkDir(absPath, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if s.shouldExcludeDir(s.rel(p)) {
				return filepath.SkipDir
			}
			dirs = append(dirs, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory: %w", err)
		}
	}
	return lo.Uniq(dirs), nil
}

// FileCount counts matching files without reading them.
func (s *Scanner) FileCount() (int, error) {
	count := 0
	err := s.walk(s.basePath, func(string, fs.FileInfo) error {
		count++
		return nil
	})
	return count, err
}

// Matches reports whether path would be picked up by a scan.
func (s *Scanner) Matches(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return s.shouldIncludeFile(absPath)
}

// walk calls fn for every included file at or below path.
func (s *Scanner) walk(path string, fn func(string, fs.FileInfo) error) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("path does not exist: %s", absPath)
		}
		return fmt.Errorf("failed to stat path: %w", err)
	}

	if !info.IsDir() {
		if s.shouldIncludeFile(absPath) {
			return fn(absPath, info)
		}
		return nil
	}

	err = filepath.WalkDir(absPath, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip inaccessible paths
			return nil
		}
		if d.IsDir() {
			if s.shouldExcludeDir(s.rel(filePath)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.shouldIncludeFile(filePath) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(filePath, info)
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	return nil
}

// rel returns filePath relative to the base path with forward slashes.
func (s *Scanner) rel(filePath string) string {
	relPath, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		relPath = filepath.Base(filePath)
	}
	return filepath.ToSlash(relPath)
}

// shouldIncludeFile checks if a file is a manifest matched by the patterns.
func (s *Scanner) shouldIncludeFile(filePath string) bool {
	if !IsManifestFile(filePath) {
		return false
	}

	relPath := s.rel(filePath)
	if matchesAny(relPath, s.config.ExcludePatterns) {
		return false
	}
	return matchesAny(relPath, s.config.IncludePatterns)
}

// shouldExcludeDir checks if a directory should be excluded.
func (s *Scanner) shouldExcludeDir(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}

	for _, pattern := range s.config.ExcludePatterns {
		// "vendor" matches "vendor/**"
		dirPattern := strings.TrimSuffix(pattern, "/**")
		dirPattern = strings.TrimSuffix(dirPattern, "/*")
		if relPath == dirPattern {
			return true
		}

		if matched, _ := doublestar.Match(pattern, relPath+"/dummy.apidesc.yaml"); matched {
			return true
		}
	}
	return false
}

// matchesAny checks if a path matches any of the given patterns. Invalid patterns never match.
func matchesAny(path string, patterns []string) bool {
	return lo.ContainsBy(patterns, func(pattern string) bool {
		matched, err := doublestar.Match(pattern, path)
		return err == nil && matched
	})
}
