// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/api2spec/apidesc/internal/apidoc"
)

// Exit codes for check command
const (
	ExitCodeMatch      = 0 // Description matches the manifests
	ExitCodeDifference = 1 // Description differs from the manifests
	ExitCodeCheckError = 2 // Error during analysis
)

var (
	checkStrict bool
	checkIgnore []string
	checkCI     bool

	// exit terminates the process in CI mode.
	exit = os.Exit
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check if the description matches the current manifests",
	Long: `Check validates that your API description matches your current manifests.

This command describes your manifests again and compares the result with
the existing description file. It's useful for CI pipelines to ensure the
description is always in sync with the handlers.

Exit codes:
  0  Description matches the manifests
  1  Description differs from the manifests
  2  Error during analysis

Example:
  apidesc check                       # Basic validation
  apidesc check --strict=false        # Report differences without failing
  apidesc check --ci                  # CI mode with appropriate exit codes
  apidesc check --ignore '/internal/**'   # Ignore changes below a path`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", true, "fail on any difference")
	checkCmd.Flags().StringSliceVar(&checkIgnore, "ignore", nil, "patterns of paths or registry entries to ignore in comparison")
	checkCmd.Flags().BoolVar(&checkCI, "ci", false, "CI mode: use exit codes for status")
}

// fail reports err, exiting with code in CI mode.
func fail(code int, err error) error {
	if checkCI {
		printError("%v", err)
		exit(code)
	}
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fail(ExitCodeCheckError, err)
	}

	paths := sourcePaths(cfg, args)

	if err := cfg.Validate(); err != nil {
		return fail(ExitCodeCheckError, fmt.Errorf("invalid configuration: %w", err))
	}

	printVerbose("Check configuration:")
	printVerbose("  Strict mode: %t", checkStrict)
	printVerbose("  CI mode: %t", checkCI)
	if len(checkIgnore) > 0 {
		printVerbose("  Ignored patterns: %s", strings.Join(checkIgnore, ", "))
	}
	printVerbose("  Paths: %s", strings.Join(paths, ", "))
	printVerbose("  Description file: %s", cfg.Output)

	if _, err := os.Stat(cfg.Output); os.IsNotExist(err) {
		printInfo("Run 'apidesc generate' first to create the description file")
		return fail(ExitCodeDifference, fmt.Errorf("description file not found: %s", cfg.Output))
	}

	existing, err := apidoc.ReadFile(cfg.Output)
	if err != nil {
		return fail(ExitCodeCheckError, fmt.Errorf("failed to read existing description: %w", err))
	}

	generated, err := buildDescription(commandContext(cmd), cfg, paths)
	if err != nil {
		return fail(ExitCodeCheckError, err)
	}

	diffResult, err := apidoc.NewDiffer().Diff(existing, generated)
	if err != nil {
		return fail(ExitCodeCheckError, fmt.Errorf("failed to compare descriptions: %w", err))
	}

	diffResult = applyIgnorePatterns(diffResult, checkIgnore)

	if diffResult.IsEmpty() {
		printInfo("Description is in sync with the manifests")
		if checkCI {
			exit(ExitCodeMatch)
		}
		return nil
	}

	printInfo("Description differs from the manifests:\n")
	printInfo(diffResult.Summary)
	printInfo("")

	if len(diffResult.PathChanges) > 0 {
		printInfo("Operation changes:")
		for _, change := range diffResult.PathChanges {
			printInfo("  %s %s %s", getChangeSymbol(change.Type), change.Operation, change.Path)
		}
		printInfo("")
	}

	if len(diffResult.EntryChanges) > 0 {
		printInfo("Registry changes:")
		for _, change := range diffResult.EntryChanges {
			printInfo("  %s %s %s", getChangeSymbol(change.Type), change.Kind, change.Name)
		}
		printInfo("")
	}

	if diffResult.HasBreakingChanges {
		printError("Breaking changes detected!")
	}

	printInfo("Run 'apidesc generate' to update the description file")

	if checkStrict || checkCI {
		return fail(ExitCodeDifference, fmt.Errorf("description differs from the manifests"))
	}

	return nil
}

// applyIgnorePatterns filters out changes that match ignore patterns.
func applyIgnorePatterns(result *apidoc.DiffResult, patterns []string) *apidoc.DiffResult {
	if len(patterns) == 0 {
		return result
	}

	filtered := &apidoc.DiffResult{
		PathChanges: lo.Filter(result.PathChanges, func(c apidoc.PathChange, _ int) bool {
			return !matchesAnyPattern(c.Path, patterns)
		}),
		EntryChanges: lo.Filter(result.EntryChanges, func(c apidoc.EntryChange, _ int) bool {
			return !matchesAnyPattern(c.Name, patterns)
		}),
	}

	filtered.HasBreakingChanges = lo.ContainsBy(filtered.PathChanges, func(c apidoc.PathChange) bool {
		return c.Type == apidoc.DiffTypeRemoved
	}) || lo.ContainsBy(filtered.EntryChanges, func(c apidoc.EntryChange) bool {
		return c.Type == apidoc.DiffTypeRemoved
	})

	filtered.Summary = generateFilteredSummary(filtered)

	return filtered
}

// matchesAnyPattern checks if a path or entry name matches any of the given
// patterns. Patterns are doublestar globs; "/users/*" also matches everything
// below /users.
func matchesAnyPattern(s string, patterns []string) bool {
	return lo.ContainsBy(patterns, func(pattern string) bool {
		if s == pattern {
			return true
		}
		if matched, _ := doublestar.Match(pattern, s); matched {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.Contains(prefix, "*") {
			return strings.HasPrefix(s, prefix)
		}
		return false
	})
}

// generateFilteredSummary generates a summary for filtered results.
func generateFilteredSummary(result *apidoc.DiffResult) string {
	if result.IsEmpty() {
		return "No changes detected (after applying filters)"
	}

	counts := make(map[string]int)
	for _, c := range result.PathChanges {
		counts[fmt.Sprintf("operation(s) %s", c.Type)]++
	}
	for _, c := range result.EntryChanges {
		counts[fmt.Sprintf("%s(s) %s", c.Kind, c.Type)]++
	}

	parts := lo.Map(slices.Sorted(maps.Keys(counts)), func(label string, _ int) string {
		return fmt.Sprintf("%d %s", counts[label], label)
	})

	summary := strings.Join(parts, ", ")
	if result.HasBreakingChanges {
		summary += " [BREAKING CHANGES DETECTED]"
	}

	return summary
}

// getChangeSymbol returns a symbol for the change type.
func getChangeSymbol(t apidoc.DiffType) string {
	switch t {
	case apidoc.DiffTypeAdded:
		return "+"
	case apidoc.DiffTypeRemoved:
		return "-"
	case apidoc.DiffTypeModified:
		return "~"
	default:
		return " "
	}
}
