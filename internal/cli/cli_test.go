// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a command and returns output and error.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// resetState points the package output at a buffer and restores every global
// the commands read when the test ends.
func resetState(t *testing.T) *bytes.Buffer {
	t.Helper()

	saved := []any{
		stdout, stderr, cfgFile, output, format, verbose, quiet, exit,
		generateDryRun, generateStrict, generateCommons, generateParallel, generateOpenAPI, generateInclude, generateExclude,
		checkStrict, checkCI, checkIgnore,
		diffDetail, diffBreaking, printCommons, printOpenAPI, watchDebounce,
	}
	t.Cleanup(func() {
		stdout, stderr = saved[0].(io.Writer), saved[1].(io.Writer)
		cfgFile, output, format = saved[2].(string), saved[3].(string), saved[4].(string)
		verbose, quiet = saved[5].(bool), saved[6].(bool)
		exit = saved[7].(func(int))
		generateDryRun, generateStrict = saved[8].(bool), saved[9].(bool)
		generateCommons, generateParallel = saved[10].(bool), saved[11].(bool)
		generateOpenAPI = saved[12].(string)
		generateInclude, generateExclude = saved[13].([]string), saved[14].([]string)
		checkStrict, checkCI, checkIgnore = saved[15].(bool), saved[16].(bool), saved[17].([]string)
		diffDetail, diffBreaking = saved[18].(bool), saved[19].(bool)
		printCommons, printOpenAPI = saved[20].(bool), saved[21].(bool)
		watchDebounce = saved[22].(int)
	})

	buf := new(bytes.Buffer)
	stdout, stderr = buf, buf
	cfgFile, output, format = "", "", ""
	verbose, quiet = false, false
	exit = func(int) { t.Fatal("unexpected exit") }
	generateDryRun, generateStrict, generateCommons, generateParallel = false, false, false, false
	generateOpenAPI, generateInclude, generateExclude = "", nil, nil
	checkStrict, checkCI, checkIgnore = true, false, nil
	diffDetail, diffBreaking = false, false
	printCommons, printOpenAPI = false, false
	watchDebounce = 0
	log.SetOutput(io.Discard)
	return buf
}

func TestRootCommand_Help(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "apidesc")
	assert.Contains(t, output, "handler manifests")
	assert.Contains(t, output, "Available Commands")
	assert.Contains(t, output, "generate")
	assert.Contains(t, output, "init")
	assert.Contains(t, output, "check")
	assert.Contains(t, output, "diff")
	assert.Contains(t, output, "watch")
	assert.Contains(t, output, "print")
	assert.Contains(t, output, "version")
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		expected string
	}{
		{
			name:     "config flag short",
			flag:     "-c",
			expected: "config file",
		},
		{
			name:     "config flag long",
			flag:     "--config",
			expected: "config file",
		},
		{
			name:     "output flag short",
			flag:     "-o",
			expected: "output file path",
		},
		{
			name:     "output flag long",
			flag:     "--output",
			expected: "output file path",
		},
		{
			name:     "format flag short",
			flag:     "-f",
			expected: "output format",
		},
		{
			name:     "format flag long",
			flag:     "--format",
			expected: "output format",
		},
		{
			name:     "verbose flag short",
			flag:     "-v",
			expected: "verbose output",
		},
		{
			name:     "verbose flag long",
			flag:     "--verbose",
			expected: "verbose output",
		},
		{
			name:     "quiet flag short",
			flag:     "-q",
			expected: "suppress",
		},
		{
			name:     "quiet flag long",
			flag:     "--quiet",
			expected: "suppress",
		},
	}

	output, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, output, tt.flag)
			assert.Contains(t, output, tt.expected)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)

	assert.Contains(t, output, "apidesc")
	assert.Contains(t, output, "Commit")
	assert.Contains(t, output, "Build Date")
	assert.Contains(t, output, "Go Version")
	assert.Contains(t, output, "OS/Arch")
}

func TestCommand_Help(t *testing.T) {
	tests := []struct {
		command  string
		contains []string
	}{
		{"init", []string{"Initialize a new apidesc configuration file", "--force", "--example", "--id"}},
		{"generate", []string{"Generate an API description", "--dry-run", "--strict", "--openapi", "--include", "--exclude"}},
		{"check", []string{"Check validates that your API description matches your current manifests", "--strict", "--ignore", "--ci"}},
		{"diff", []string{"Compare two API descriptions", "--detail", "--breaking"}},
		{"watch", []string{"Watch for manifest changes", "--debounce"}},
		{"print", []string{"Print the API description", "--commons", "--openapi"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			output, err := executeCommand(rootCmd, tt.command, "--help")
			require.NoError(t, err)
			for _, expected := range tt.contains {
				assert.Contains(t, output, expected)
			}
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Contains(t, info, "apidesc")
	assert.Contains(t, info, "commit")
	assert.Contains(t, info, "built")
}

func TestConfigureLogger(t *testing.T) {
	resetState(t)

	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		level   logrus.Level
	}{
		{"default", false, false, logrus.WarnLevel},
		{"verbose", true, false, logrus.DebugLevel},
		{"quiet", false, true, logrus.ErrorLevel},
		{"quiet wins", true, true, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbose, quiet = tt.verbose, tt.quiet
			logger := logrus.New()
			configureLogger(logger, io.Discard)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestPrintHelpers(t *testing.T) {
	buf := resetState(t)

	printInfo("info %d", 1)
	printVerbose("hidden")
	verbose = true
	printVerbose("shown")
	quiet = true
	printInfo("muted")
	printError("broken")

	out := buf.String()
	assert.Contains(t, out, "info 1")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.NotContains(t, out, "muted")
	assert.Contains(t, out, "Error: broken")
}
