// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package cli provides the command-line interface for apidesc.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	output  string
	format  string
	verbose bool
	quiet   bool
)

var (
	// log is the command logger. Diagnostics go to stderr, results to stdout.
	log = logrus.New()

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "apidesc",
	Short: "Resource-oriented API description generator",
	Long: `apidesc builds a validated, cross-referenced description of the
operations your request handlers expose (create, read, update, delete,
patch, actions and queries) from handler manifests.

Handler manifests (*.apidesc.yaml) declare handler types, their annotated
members, shared schema definitions and errors, and where each handler is
mounted. apidesc describes every mount and writes a single API description,
optionally projected onto OpenAPI 3.

Example:
  apidesc generate                     # Describe every manifest below the current directory
  apidesc init                         # Initialize a new config file
  apidesc check --ci                   # Fail when the description is out of date
  apidesc watch                        # Watch manifests and regenerate`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		stdout = cmd.OutOrStdout()
		stderr = cmd.ErrOrStderr()
		configureLogger(log, stderr)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use for
// cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: apidesc.config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output file path (default: api-description.yaml)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: yaml, json (default: yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(printCmd)
}

// configureLogger applies the verbosity flags to logger.
func configureLogger(logger *logrus.Logger, out io.Writer) {
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case quiet:
		logger.SetLevel(logrus.ErrorLevel)
	case verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
}

// GetConfigFile returns the config file path from the flag.
func GetConfigFile() string {
	return cfgFile
}

// GetOutput returns the output file path from the flag.
func GetOutput() string {
	return output
}

// GetFormat returns the output format from the flag.
func GetFormat() string {
	return format
}

// IsVerbose returns whether verbose output is enabled.
func IsVerbose() bool {
	return verbose
}

// IsQuiet returns whether quiet mode is enabled.
func IsQuiet() bool {
	return quiet
}

// printInfo prints a message if not in quiet mode.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// printError prints an error message.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
}
