// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api2spec/apidesc/internal/apidoc"
	"github.com/api2spec/apidesc/internal/config"
)

// setupProject creates a project with the example manifest below ./api and
// makes it the working directory.
func setupProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0755))
	writeManifest(t, dir, exampleManifest)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "items.apidesc.yaml"), []byte(content), 0644))
}

// withoutDelete drops the delete member of the example manifest.
func withoutDelete(t *testing.T) string {
	t.Helper()
	const member = `      - name: delete
        instance: true
        delete:
          errors:
            - name: itemLocked
`
	require.Contains(t, exampleManifest, member)
	return strings.Replace(exampleManifest, member, "", 1)
}

func TestApplyIgnorePatterns(t *testing.T) {
	tests := []struct {
		name             string
		result           *apidoc.DiffResult
		patterns         []string
		expectedPaths    int
		expectedEntries  int
		expectedBreaking bool
	}{
		{
			name: "no patterns",
			result: &apidoc.DiffResult{
				PathChanges: []apidoc.PathChange{
					{Type: apidoc.DiffTypeAdded, Path: "/users", Operation: "read"},
					{Type: apidoc.DiffTypeRemoved, Path: "/posts", Operation: "create"},
				},
				EntryChanges: []apidoc.EntryChange{
					{Type: apidoc.DiffTypeAdded, Kind: "definition", Name: "user"},
				},
				HasBreakingChanges: true,
			},
			patterns:         []string{},
			expectedPaths:    2,
			expectedEntries:  1,
			expectedBreaking: true,
		},
		{
			name: "filter by exact path",
			result: &apidoc.DiffResult{
				PathChanges: []apidoc.PathChange{
					{Type: apidoc.DiffTypeAdded, Path: "/users", Operation: "read"},
					{Type: apidoc.DiffTypeRemoved, Path: "/posts", Operation: "create"},
				},
				HasBreakingChanges: true,
			},
			patterns:         []string{"/users"},
			expectedPaths:    1,
			expectedEntries:  0,
			expectedBreaking: true, // /posts is still removed
		},
		{
			name: "filter by prefix pattern",
			result: &apidoc.DiffResult{
				PathChanges: []apidoc.PathChange{
					{Type: apidoc.DiffTypeAdded, Path: "/internal/health", Operation: "read"},
					{Type: apidoc.DiffTypeRemoved, Path: "/internal/metrics/cpu", Operation: "read"},
					{Type: apidoc.DiffTypeAdded, Path: "/users", Operation: "read"},
				},
				HasBreakingChanges: true,
			},
			patterns:         []string{"/internal/*"},
			expectedPaths:    1,
			expectedEntries:  0,
			expectedBreaking: false,
		},
		{
			name: "filter by doublestar pattern",
			result: &apidoc.DiffResult{
				PathChanges: []apidoc.PathChange{
					{Type: apidoc.DiffTypeRemoved, Path: "/users/{id}/roles", Operation: "delete"},
					{Type: apidoc.DiffTypeAdded, Path: "/posts", Operation: "read"},
				},
				HasBreakingChanges: true,
			},
			patterns:         []string{"/users/**"},
			expectedPaths:    1,
			expectedEntries:  0,
			expectedBreaking: false,
		},
		{
			name: "filter registry entries",
			result: &apidoc.DiffResult{
				EntryChanges: []apidoc.EntryChange{
					{Type: apidoc.DiffTypeRemoved, Kind: "error", Name: "legacyError"},
					{Type: apidoc.DiffTypeAdded, Kind: "definition", Name: "user"},
				},
				HasBreakingChanges: true,
			},
			patterns:         []string{"legacy*"},
			expectedPaths:    0,
			expectedEntries:  1,
			expectedBreaking: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := applyIgnorePatterns(tt.result, tt.patterns)
			assert.Len(t, filtered.PathChanges, tt.expectedPaths)
			assert.Len(t, filtered.EntryChanges, tt.expectedEntries)
			assert.Equal(t, tt.expectedBreaking, filtered.HasBreakingChanges)
		})
	}
}

func TestMatchesAnyPattern(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		patterns []string
		expected bool
	}{
		{"exact match", "/users", []string{"/users"}, true},
		{"no match", "/users", []string{"/posts"}, false},
		{"prefix wildcard", "/users/{id}/roles", []string{"/users/*"}, true},
		{"single segment glob", "/users/{id}", []string{"/users/*"}, true},
		{"doublestar", "/a/b/c/d", []string{"/a/**"}, true},
		{"entry name prefix", "legacyUser", []string{"legacy*"}, true},
		{"one of many", "/posts", []string{"/users", "/posts"}, true},
		{"empty patterns", "/users", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesAnyPattern(tt.s, tt.patterns))
		})
	}
}

func TestGetChangeSymbol(t *testing.T) {
	tests := []struct {
		changeType apidoc.DiffType
		expected   string
	}{
		{apidoc.DiffTypeAdded, "+"},
		{apidoc.DiffTypeRemoved, "-"},
		{apidoc.DiffTypeModified, "~"},
		{apidoc.DiffType("other"), " "},
	}

	for _, tt := range tests {
		t.Run(string(tt.changeType), func(t *testing.T) {
			assert.Equal(t, tt.expected, getChangeSymbol(tt.changeType))
		})
	}
}

func TestGenerateFilteredSummary(t *testing.T) {
	tests := []struct {
		name     string
		result   *apidoc.DiffResult
		contains []string
	}{
		{
			name:     "empty",
			result:   &apidoc.DiffResult{},
			contains: []string{"No changes detected (after applying filters)"},
		},
		{
			name: "operations and entries",
			result: &apidoc.DiffResult{
				PathChanges: []apidoc.PathChange{
					{Type: apidoc.DiffTypeAdded, Path: "/users", Operation: "read"},
					{Type: apidoc.DiffTypeAdded, Path: "/users", Operation: "create"},
					{Type: apidoc.DiffTypeModified, Path: "/posts", Operation: "read"},
				},
				EntryChanges: []apidoc.EntryChange{
					{Type: apidoc.DiffTypeAdded, Kind: "definition", Name: "user"},
				},
			},
			contains: []string{"2 operation(s) added", "1 operation(s) modified", "1 definition(s) added"},
		},
		{
			name: "breaking",
			result: &apidoc.DiffResult{
				PathChanges: []apidoc.PathChange{
					{Type: apidoc.DiffTypeRemoved, Path: "/users", Operation: "delete"},
				},
				HasBreakingChanges: true,
			},
			contains: []string{"1 operation(s) removed", "[BREAKING CHANGES DETECTED]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := generateFilteredSummary(tt.result)
			for _, expected := range tt.contains {
				assert.Contains(t, summary, expected)
			}
		})
	}
}

func TestRunGenerate(t *testing.T) {
	buf := resetState(t)
	dir := setupProject(t)

	require.NoError(t, runGenerate(generateCmd, nil))
	assert.Contains(t, buf.String(), "Wrote api-description.yaml (1 paths, 1 services)")

	desc, err := apidoc.ReadFile(filepath.Join(dir, "api-description.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "api", desc.ID)
	assert.Equal(t, []string{"/items"}, desc.PathNames())
	assert.True(t, desc.Definitions.Has("item"))
	assert.True(t, desc.Errors.Has("itemLocked"))
}

func TestRunGenerate_JSONAndOpenAPI(t *testing.T) {
	buf := resetState(t)
	dir := setupProject(t)

	output = "out/description.json"
	format = "json"
	generateOpenAPI = "out/openapi.yaml"

	require.NoError(t, runGenerate(generateCmd, nil))
	assert.Contains(t, buf.String(), "Wrote out/openapi.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "out", "description.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "{"))

	data, err = os.ReadFile(filepath.Join(dir, "out", "openapi.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")
	assert.Contains(t, string(data), "/items/{id}")
}

func TestRunGenerate_DryRun(t *testing.T) {
	buf := resetState(t)
	dir := setupProject(t)

	generateDryRun = true
	require.NoError(t, runGenerate(generateCmd, nil))

	assert.Contains(t, buf.String(), "id: api")
	assert.Contains(t, buf.String(), "/items")
	assert.NoFileExists(t, filepath.Join(dir, "api-description.yaml"))
}

func TestRunGenerate_InvalidManifest(t *testing.T) {
	resetState(t)
	dir := setupProject(t)
	writeManifest(t, dir, "mounts:\n  - path: items\n    type: Items\n")

	err := runGenerate(generateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items.apidesc.yaml")
}

func TestRunCheck(t *testing.T) {
	buf := resetState(t)
	dir := setupProject(t)
	require.NoError(t, runGenerate(generateCmd, nil))

	require.NoError(t, runCheck(checkCmd, nil))
	assert.Contains(t, buf.String(), "Description is in sync with the manifests")

	writeManifest(t, dir, withoutDelete(t))
	buf.Reset()

	err := runCheck(checkCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description differs")
	assert.Contains(t, buf.String(), "Breaking changes detected!")
	assert.Contains(t, buf.String(), "- delete")

	checkStrict = false
	assert.NoError(t, runCheck(checkCmd, nil))
}

func TestRunCheck_IgnorePatterns(t *testing.T) {
	resetState(t)
	dir := setupProject(t)
	require.NoError(t, runGenerate(generateCmd, nil))
	writeManifest(t, dir, withoutDelete(t))

	checkIgnore = []string{"/items/**"}
	assert.Error(t, runCheck(checkCmd, nil), "the items service entry still differs")

	checkIgnore = []string{"/items/**", "items"}
	assert.NoError(t, runCheck(checkCmd, nil))
}

func TestRunCheck_CIExitCodes(t *testing.T) {
	resetState(t)
	dir := setupProject(t)

	var codes []int
	exit = func(code int) { codes = append(codes, code) }
	checkCI = true

	assert.Error(t, runCheck(checkCmd, nil), "missing description")

	checkCI = false
	require.NoError(t, runGenerate(generateCmd, nil))
	checkCI = true

	assert.NoError(t, runCheck(checkCmd, nil))

	writeManifest(t, dir, withoutDelete(t))
	assert.Error(t, runCheck(checkCmd, nil))

	writeManifest(t, dir, "types: [")
	assert.Error(t, runCheck(checkCmd, nil))

	assert.Equal(t, []int{ExitCodeDifference, ExitCodeMatch, ExitCodeDifference, ExitCodeCheckError}, codes)
}

func TestRunDiff_TwoFiles(t *testing.T) {
	buf := resetState(t)
	dir := setupProject(t)

	output = "old.yaml"
	require.NoError(t, runGenerate(generateCmd, nil))
	writeManifest(t, dir, withoutDelete(t))
	output = "new.yaml"
	require.NoError(t, runGenerate(generateCmd, nil))
	buf.Reset()

	require.NoError(t, runDiff(diffCmd, []string{"old.yaml", "new.yaml"}))
	assert.Contains(t, buf.String(), "=== API Description Diff ===")
	assert.Contains(t, buf.String(), "- delete")

	diffBreaking = true
	err := runDiff(diffCmd, []string{"old.yaml", "new.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "breaking changes detected")

	buf.Reset()
	require.NoError(t, runDiff(diffCmd, []string{"new.yaml", "new.yaml"}))
	assert.Contains(t, buf.String(), "No differences found.")
}

func TestRunDiff_AgainstGenerated(t *testing.T) {
	buf := resetState(t)
	setupProject(t)
	require.NoError(t, runGenerate(generateCmd, nil))
	buf.Reset()

	require.NoError(t, runDiff(diffCmd, nil))
	assert.Contains(t, buf.String(), "No differences found.")
}

func TestRunDiff_NonExistentFiles(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	err := runDiff(diffCmd, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read description file")
}

func TestRunPrint(t *testing.T) {
	buf := resetState(t)
	setupProject(t)

	require.NoError(t, runPrint(printCmd, nil))
	assert.Contains(t, buf.String(), "/items")

	buf.Reset()
	format = "json"
	printOpenAPI = true
	require.NoError(t, runPrint(printCmd, nil))
	assert.Contains(t, buf.String(), `"openapi": "3.0.3"`)
}

func TestRunPrint_ExistingFile(t *testing.T) {
	buf := resetState(t)
	setupProject(t)
	require.NoError(t, runGenerate(generateCmd, nil))
	buf.Reset()

	require.NoError(t, runPrint(printCmd, []string{"api-description.yaml"}))
	assert.Contains(t, buf.String(), "itemLocked")
}

func TestRunPrint_Commons(t *testing.T) {
	buf := resetState(t)
	setupProject(t)

	printCommons = true
	require.NoError(t, runPrint(printCmd, nil))
	assert.Contains(t, buf.String(), "notFound")
	assert.Contains(t, buf.String(), "frapi:common")
}

func newTestWatcher(t *testing.T, rebuild func(context.Context) error) *manifestWatcher {
	t.Helper()

	cfg := config.Default()
	cfg.Watch.Debounce = 20
	w, err := newManifestWatcher(cfg, cfg.Source.Paths, rebuild)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestManifestWatcher_Relevant(t *testing.T) {
	resetState(t)
	dir := setupProject(t)
	w := newTestWatcher(t, func(context.Context) error { return nil })

	manifest := filepath.Join(dir, "api", "items.apidesc.yaml")
	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"manifest written", fsnotify.Event{Name: manifest, Op: fsnotify.Write}, true},
		{"manifest removed", fsnotify.Event{Name: filepath.Join(dir, "api", "gone.apidesc.yaml"), Op: fsnotify.Remove}, true},
		{"manifest chmod", fsnotify.Event{Name: manifest, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "api", "main.go"), Op: fsnotify.Write}, false},
		{"excluded directory", fsnotify.Event{Name: filepath.Join(dir, "vendor", "x.apidesc.yaml"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.relevant(tt.event))
		})
	}

	sub := filepath.Join(dir, "api", "v2")
	require.NoError(t, os.Mkdir(sub, 0755))
	assert.False(t, w.relevant(fsnotify.Event{Name: sub, Op: fsnotify.Create}))
	assert.Contains(t, w.fs.WatchList(), sub)
}

func TestManifestWatcher_Run(t *testing.T) {
	resetState(t)
	dir := setupProject(t)

	var rebuilds atomic.Int32
	w := newTestWatcher(t, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeManifest(t, dir, withoutDelete(t))
	assert.Eventually(t, func() bool { return rebuilds.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitCodeMatch)
	assert.Equal(t, 1, ExitCodeDifference)
	assert.Equal(t, 2, ExitCodeCheckError)
}
