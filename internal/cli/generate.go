// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/api2spec/apidesc/internal/apidoc"
	"github.com/api2spec/apidesc/internal/config"
)

var (
	generateDryRun   bool
	generateStrict   bool
	generateCommons  bool
	generateParallel bool
	generateOpenAPI  string
	generateInclude  []string
	generateExclude  []string
)

var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Generate the API description from handler manifests",
	Long: `Generate an API description by describing the handlers declared in your manifests.

The generate command discovers handler manifests, describes every mounted
handler type, validates the cross-references of the result and writes the
API description. With --openapi it also writes an OpenAPI 3 projection.

Example:
  apidesc generate                            # Generate from current directory
  apidesc generate ./api ./internal           # Generate from specific paths
  apidesc generate --strict                   # Fail on mounts that describe nothing
  apidesc generate --openapi openapi.yaml     # Also write an OpenAPI document
  apidesc generate --dry-run                  # Preview without writing`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the description instead of writing it")
	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "fail when a mounted type is not a handler")
	generateCmd.Flags().BoolVar(&generateCommons, "commons", false, "check references into the common errors")
	generateCmd.Flags().BoolVar(&generateParallel, "parallel", false, "describe mounts concurrently")
	generateCmd.Flags().StringVar(&generateOpenAPI, "openapi", "", "also write an OpenAPI document to this path")
	generateCmd.Flags().StringSliceVarP(&generateInclude, "include", "i", nil, "glob patterns to include")
	generateCmd.Flags().StringSliceVarP(&generateExclude, "exclude", "e", nil, "glob patterns to exclude")
}

// applyGenerateFlags applies the generate flags on top of cfg.
func applyGenerateFlags(cfg *config.Config) {
	if generateStrict {
		cfg.Generation.Strict = true
	}
	if generateCommons {
		cfg.Generation.Commons = true
	}
	if generateParallel {
		cfg.Generation.Parallel = true
	}
	if generateOpenAPI != "" {
		cfg.Generation.OpenAPI.Enabled = true
		cfg.Generation.OpenAPI.Output = generateOpenAPI
	}
	if len(generateInclude) > 0 {
		cfg.Source.Include = generateInclude
	}
	if len(generateExclude) > 0 {
		cfg.Source.Exclude = generateExclude
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyGenerateFlags(cfg)

	paths := sourcePaths(cfg, args)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	printVerbose("Configuration:")
	printVerbose("  ID: %s", cfg.Description.ID)
	printVerbose("  Output: %s", cfg.Output)
	printVerbose("  Format: %s", cfg.Format)
	printVerbose("  Strict: %t", cfg.Generation.Strict)
	printVerbose("  Paths: %s", strings.Join(paths, ", "))

	desc, err := buildDescription(commandContext(cmd), cfg, paths)
	if err != nil {
		return err
	}

	if generateDryRun {
		rendered, err := apidoc.NewWriter().Render(desc, apidoc.FormatFor(cfg.Output, cfg.Format))
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, rendered)
		return nil
	}

	return writeOutputs(commandContext(cmd), cfg, desc)
}
