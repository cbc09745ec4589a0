// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package apidoc

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/api2spec/apidesc/pkg/types"
)

// DiffType represents the type of change detected.
type DiffType string

const (
	// DiffTypeAdded indicates a new item was added.
	DiffTypeAdded DiffType = "added"

	// DiffTypeRemoved indicates an item was removed.
	DiffTypeRemoved DiffType = "removed"

	// DiffTypeModified indicates an item was modified.
	DiffTypeModified DiffType = "modified"
)

// PathChange is a change to one operation of the resource at a path.
type PathChange struct {
	Type        DiffType
	Path        string
	Operation   string
	Description string

	// Detail is a structural diff of the operation for modifications
	Detail string
}

// EntryChange is a change to a shared service, definition or error.
type EntryChange struct {
	Type        DiffType
	Kind        string
	Name        string
	Description string
}

// DiffResult contains the differences between two API descriptions.
type DiffResult struct {
	// PathChanges contains all operation changes.
	PathChanges []PathChange

	// EntryChanges contains all registry changes.
	EntryChanges []EntryChange

	// HasBreakingChanges indicates if anything a client may use was removed.
	HasBreakingChanges bool

	// Summary provides a human-readable summary of changes.
	Summary string
}

// IsEmpty returns true if there are no differences.
func (d *DiffResult) IsEmpty() bool {
	return len(d.PathChanges) == 0 && len(d.EntryChanges) == 0
}

// Differ compares two API descriptions.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff compares a (the old description) with b (the new one). Service
// references are resolved, so moving a resource into the services registry
// without changing it produces no path changes.
func (d *Differ) Diff(a, b *types.APIDescription) (*DiffResult, error) {
	result := &DiffResult{
		PathChanges:  []PathChange{},
		EntryChanges: []EntryChange{},
	}

	if err := d.diffPaths(flatten(a), flatten(b), result); err != nil {
		return nil, err
	}

	a, b = orEmpty(a), orEmpty(b)
	for _, reg := range []struct {
		kind string
		a, b map[string]any
	}{
		{"service", entries(a.Services.All()), entries(b.Services.All())},
		{"definition", entries(a.Definitions.All()), entries(b.Definitions.All())},
		{"error", entries(a.Errors.All()), entries(b.Errors.All())},
	} {
		if err := d.diffEntries(reg.kind, reg.a, reg.b, result); err != nil {
			return nil, err
		}
	}

	result.HasBreakingChanges = d.detectBreakingChanges(result)
	result.Summary = d.generateSummary(result)
	return result, nil
}

func orEmpty(desc *types.APIDescription) *types.APIDescription {
	if desc == nil || desc.Services == nil || desc.Definitions == nil || desc.Errors == nil {
		empty := types.NewAPIDescription("", "")
		if desc != nil {
			for path, r := range desc.Paths {
				empty.Paths[path] = r
			}
		}
		return empty
	}
	return desc
}

func entries[V any](m map[string]V) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// flatten maps every reachable path to its operations by key.
func flatten(desc *types.APIDescription) map[string]map[string]namedOp {
	out := make(map[string]map[string]namedOp)
	if desc == nil {
		return out
	}
	walkDescription(orEmpty(desc), func(path string, r *types.Resource) {
		for _, op := range operationsOf(r) {
			if out[path] == nil {
				out[path] = make(map[string]namedOp)
			}
			out[path][op.key] = op
		}
	})
	return out
}

// diffPaths compares the operations reachable in both descriptions.
func (d *Differ) diffPaths(aPaths, bPaths map[string]map[string]namedOp, result *DiffResult) error {
	for path, aOps := range aPaths {
		bOps := bPaths[path]
		for key, aOp := range aOps {
			bOp, exists := bOps[key]
			if !exists {
				result.PathChanges = append(result.PathChanges, PathChange{
					Type:        DiffTypeRemoved,
					Path:        path,
					Operation:   key,
					Description: fmt.Sprintf("Removed %s %s", key, path),
				})
				continue
			}
			detail, err := structuralDiff(aOp.value, bOp.value)
			if err != nil {
				return fmt.Errorf("comparing %s %s: %w", key, path, err)
			}
			if detail != "" {
				result.PathChanges = append(result.PathChanges, PathChange{
					Type:        DiffTypeModified,
					Path:        path,
					Operation:   key,
					Description: fmt.Sprintf("Modified %s %s", key, path),
					Detail:      detail,
				})
			}
		}
	}

	for path, bOps := range bPaths {
		aOps := aPaths[path]
		for key := range bOps {
			if _, exists := aOps[key]; !exists {
				result.PathChanges = append(result.PathChanges, PathChange{
					Type:        DiffTypeAdded,
					Path:        path,
					Operation:   key,
					Description: fmt.Sprintf("Added %s %s", key, path),
				})
			}
		}
	}
	return nil
}

// diffEntries compares one registry of both descriptions.
func (d *Differ) diffEntries(kind string, a, b map[string]any, result *DiffResult) error {
	for name, aEntry := range a {
		bEntry, exists := b[name]
		if !exists {
			result.EntryChanges = append(result.EntryChanges, EntryChange{
				Type:        DiffTypeRemoved,
				Kind:        kind,
				Name:        name,
				Description: fmt.Sprintf("Removed %s: %s", kind, name),
			})
			continue
		}
		detail, err := structuralDiff(aEntry, bEntry)
		if err != nil {
			return fmt.Errorf("comparing %s %s: %w", kind, name, err)
		}
		if detail != "" {
			result.EntryChanges = append(result.EntryChanges, EntryChange{
				Type:        DiffTypeModified,
				Kind:        kind,
				Name:        name,
				Description: fmt.Sprintf("Modified %s: %s", kind, name),
			})
		}
	}

	for name := range b {
		if _, exists := a[name]; !exists {
			result.EntryChanges = append(result.EntryChanges, EntryChange{
				Type:        DiffTypeAdded,
				Kind:        kind,
				Name:        name,
				Description: fmt.Sprintf("Added %s: %s", kind, name),
			})
		}
	}
	return nil
}

// structuralDiff compares the serialized forms of a and b and returns a
// readable diff, or "" when they are equal.
func structuralDiff(a, b any) (string, error) {
	aDoc, err := generic(a)
	if err != nil {
		return "", err
	}
	bDoc, err := generic(b)
	if err != nil {
		return "", err
	}
	return cmp.Diff(aDoc, bDoc), nil
}

func generic(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// detectBreakingChanges reports whether anything was removed.
func (d *Differ) detectBreakingChanges(result *DiffResult) bool {
	for _, change := range result.PathChanges {
		if change.Type == DiffTypeRemoved {
			return true
		}
	}
	for _, change := range result.EntryChanges {
		if change.Type == DiffTypeRemoved {
			return true
		}
	}
	return false
}

// generateSummary creates a human-readable summary of changes.
func (d *Differ) generateSummary(result *DiffResult) string {
	if result.IsEmpty() {
		return "No changes detected"
	}

	counts := make(map[string]int)
	for _, c := range result.PathChanges {
		counts[fmt.Sprintf("operation(s) %s", c.Type)]++
	}
	for _, c := range result.EntryChanges {
		counts[fmt.Sprintf("%s(s) %s", c.Kind, c.Type)]++
	}

	var parts []string
	for _, label := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%d %s", counts[label], label))
	}

	summary := strings.Join(parts, ", ")
	if result.HasBreakingChanges {
		summary += " [BREAKING CHANGES DETECTED]"
	}
	return summary
}

func changeSymbol(t DiffType) string {
	switch t {
	case DiffTypeAdded:
		return "+ "
	case DiffTypeRemoved:
		return "- "
	case DiffTypeModified:
		return "~ "
	default:
		return "  "
	}
}

// FormatDiff returns a formatted string representation of the diff. With
// verbose set, modifications are followed by their structural diff.
func FormatDiff(result *DiffResult, verbose bool) string {
	if result.IsEmpty() {
		return "No differences found."
	}

	var sb strings.Builder

	sb.WriteString("=== API Description Diff ===\n\n")
	sb.WriteString(result.Summary)
	sb.WriteString("\n\n")

	if len(result.PathChanges) > 0 {
		sb.WriteString("--- Operation Changes ---\n")

		// Sort changes for deterministic output
		changes := slices.Clone(result.PathChanges)
		sort.Slice(changes, func(i, j int) bool {
			if changes[i].Path != changes[j].Path {
				return changes[i].Path < changes[j].Path
			}
			return changes[i].Operation < changes[j].Operation
		})

		for _, c := range changes {
			fmt.Fprintf(&sb, "%s%s %s\n", changeSymbol(c.Type), c.Operation, c.Path)
			if verbose && c.Detail != "" {
				sb.WriteString(indent(c.Detail, "    "))
			}
		}
		sb.WriteString("\n")
	}

	if len(result.EntryChanges) > 0 {
		sb.WriteString("--- Registry Changes ---\n")

		changes := slices.Clone(result.EntryChanges)
		sort.Slice(changes, func(i, j int) bool {
			if changes[i].Kind != changes[j].Kind {
				return changes[i].Kind < changes[j].Kind
			}
			return changes[i].Name < changes[j].Name
		})

		for _, c := range changes {
			fmt.Fprintf(&sb, "%s%s %s\n", changeSymbol(c.Type), c.Kind, c.Name)
		}
	}

	return sb.String()
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
