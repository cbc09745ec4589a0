// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/api2spec/apidesc/internal/apidoc"
	"github.com/api2spec/apidesc/internal/commons"
	"github.com/api2spec/apidesc/pkg/types"
)

var (
	printCommons bool
	printOpenAPI bool
)

var printCmd = &cobra.Command{
	Use:   "print [file]",
	Short: "Print the API description to stdout",
	Long: `Print the API description to standard output.

If a file is provided, it will print that file. Otherwise, it will
describe the current manifests and print the result.

This is useful for piping the output to other tools or for quick inspection.

Example:
  apidesc print                           # Generate and print
  apidesc print api-description.yaml      # Print existing file
  apidesc print -f json                   # Print in JSON format
  apidesc print --openapi                 # Print the OpenAPI projection
  apidesc print --commons                 # Print the common errors description
  apidesc print -f json | jq '.paths'     # Pipe to jq for processing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrint,
}

func init() {
	printCmd.Flags().BoolVar(&printCommons, "commons", false, "print the description of the common errors")
	printCmd.Flags().BoolVar(&printOpenAPI, "openapi", false, "print the OpenAPI projection instead")
}

func runPrint(cmd *cobra.Command, args []string) error {
	outputFormat := format
	if outputFormat == "" {
		outputFormat = "yaml"
	}

	printVerbose("Print configuration:")
	printVerbose("  Format: %s", outputFormat)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var desc *types.APIDescription
	switch {
	case printCommons:
		desc = commons.Description()
	case len(args) > 0:
		if desc, err = readDescription(args[0]); err != nil {
			return err
		}
	default:
		if desc, err = buildDescription(commandContext(cmd), cfg, cfg.Source.Paths); err != nil {
			return err
		}
	}

	var doc any = desc
	if printOpenAPI {
		if doc, err = exportOpenAPI(commandContext(cmd), cfg, desc); err != nil {
			return err
		}
	}

	rendered, err := apidoc.NewWriter().Render(doc, outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, rendered)
	return nil
}
