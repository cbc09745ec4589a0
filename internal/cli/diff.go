// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/api2spec/apidesc/internal/apidoc"
	"github.com/api2spec/apidesc/pkg/types"
)

var (
	diffDetail   bool
	diffBreaking bool
)

var diffCmd = &cobra.Command{
	Use:   "diff [file1] [file2]",
	Short: "Compare two API descriptions",
	Long: `Compare two API descriptions and show the differences.

If only one file is provided, it will be compared against the description
generated from the current manifests.

If no files are provided, the existing description file will be compared
against what would be generated from the current manifests.

Example:
  apidesc diff                            # Compare current vs generated
  apidesc diff api-description.yaml       # Compare file vs generated
  apidesc diff old.yaml new.yaml          # Compare two files
  apidesc diff --detail                   # Show how each operation changed
  apidesc diff --breaking old.yaml new.yaml   # Fail on removals`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVarP(&diffDetail, "detail", "d", false, "show the structural diff of modified operations")
	diffCmd.Flags().BoolVar(&diffBreaking, "breaking", false, "exit with an error when breaking changes are found")
}

func runDiff(cmd *cobra.Command, args []string) error {
	printVerbose("Diff configuration:")
	printVerbose("  Detail: %t", diffDetail)
	printVerbose("  Breaking: %t", diffBreaking)

	var old, current *types.APIDescription
	var err error

	switch len(args) {
	case 2:
		printVerbose("Comparing %s against %s...", args[0], args[1])
		if old, err = readDescription(args[0]); err != nil {
			return err
		}
		if current, err = readDescription(args[1]); err != nil {
			return err
		}
	case 0, 1:
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Output
		if len(args) == 1 {
			path = args[0]
		}
		printVerbose("Comparing %s against generated...", path)
		if old, err = readDescription(path); err != nil {
			return err
		}
		if current, err = buildDescription(commandContext(cmd), cfg, cfg.Source.Paths); err != nil {
			return err
		}
	default:
		return fmt.Errorf("too many arguments: expected at most 2 files")
	}

	result, err := apidoc.NewDiffer().Diff(old, current)
	if err != nil {
		return fmt.Errorf("failed to compare descriptions: %w", err)
	}

	fmt.Fprint(stdout, apidoc.FormatDiff(result, diffDetail))
	if result.IsEmpty() {
		fmt.Fprintln(stdout)
	}

	if diffBreaking && result.HasBreakingChanges {
		return fmt.Errorf("breaking changes detected")
	}
	return nil
}

func readDescription(path string) (*types.APIDescription, error) {
	desc, err := apidoc.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description file %s: %w", path, err)
	}
	return desc, nil
}
