// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/api2spec/apidesc/internal/config"
)

const initConfigFile = "apidesc.config.yaml"

var (
	initForce       bool
	initInteractive bool
	initExample     bool
	initID          string
	initVersion     string
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new apidesc configuration file",
	Long: `Initialize a new apidesc configuration file in the current directory.

This command creates an apidesc.config.yaml file with sensible defaults
that you can customize for your project.

Features:
  - Infers the API id from the go.mod module name
  - Detects common manifest directories
  - Optionally writes a starter handler manifest

Example:
  apidesc init                          # Create config with detected defaults
  apidesc init --force                  # Overwrite existing config
  apidesc init --interactive            # Interactive mode with prompts
  apidesc init --id example:users       # Set the API id
  apidesc init --example                # Also write example.apidesc.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "interactive mode with prompts")
	initCmd.Flags().BoolVar(&initExample, "example", false, "write a starter handler manifest")
	initCmd.Flags().StringVar(&initID, "id", "", "API id of the description")
	initCmd.Flags().StringVar(&initVersion, "version", "", "API version of the description")
	initCmd.Flags().StringVar(&initDescription, "description", "", "API description text")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(initConfigFile); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", initConfigFile)
	}

	projectRoot, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("failed to determine project root: %w", err)
	}

	cfg := config.Default()

	info := detectProjectInfo(projectRoot)
	switch {
	case initID != "":
		cfg.Description.ID = initID
	case info.ID != "":
		cfg.Description.ID = info.ID
	}

	if initVersion != "" {
		cfg.Description.Version = initVersion
	}

	switch {
	case initDescription != "":
		cfg.Description.Description = initDescription
	case info.Title != "":
		cfg.Description.Description = info.Title
	}

	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}

	entryPoints := detectEntryPoints(projectRoot)
	cfg.Source.Paths = entryPoints
	printVerbose("Detected manifest paths: %s", strings.Join(entryPoints, ", "))

	if initInteractive && isTerminal() {
		cfg = interactiveInit(cfg, os.Stdin, stdout)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	content, err := buildConfigYAML(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(initConfigFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	printInfo("Created %s", initConfigFile)

	if initExample {
		path := filepath.Join(cfg.Source.Paths[0], "example.apidesc.yaml")
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("manifest %s already exists, use --force to overwrite", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(exampleManifest), 0644); err != nil {
			return fmt.Errorf("failed to write example manifest: %w", err)
		}
		printInfo("Created %s", path)
	}

	printVerbose("ID: %s", cfg.Description.ID)
	printVerbose("Output: %s", cfg.Output)

	return nil
}

// projectInfo holds information detected from the project.
type projectInfo struct {
	ID     string
	Title  string
	Module string
}

// detectProjectInfo detects project information from go.mod.
func detectProjectInfo(projectRoot string) projectInfo {
	info := projectInfo{}

	file, err := os.Open(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return info
	}
	defer file.Close()

	lines := bufio.NewScanner(file)
	for lines.Scan() {
		module, ok := strings.CutPrefix(lines.Text(), "module ")
		if !ok {
			continue
		}
		info.Module = strings.TrimSpace(module)

		// "github.com/user/my-api" -> "my-api"
		parts := strings.Split(info.Module, "/")
		name := parts[len(parts)-1]
		info.ID = strings.ToLower(name)

		words := strings.NewReplacer("-", " ", "_", " ").Replace(name)
		info.Title = cases.Title(language.English).String(words) + " API"
		break
	}

	return info
}

// detectEntryPoints detects the directories manifests usually live in.
func detectEntryPoints(projectRoot string) []string {
	var paths []string

	for _, p := range []string{"./api", "./apis", "./manifests", "./internal", "./pkg"} {
		if stat, err := os.Stat(filepath.Join(projectRoot, p)); err == nil && stat.IsDir() {
			paths = append(paths, p)
		}
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}

	return paths
}

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// interactiveInit prompts for configuration options on in, keeping the
// current value when the answer is empty.
func interactiveInit(cfg *config.Config, in io.Reader, out io.Writer) *config.Config {
	reader := bufio.NewReader(in)
	prompt := func(label string, value *string) {
		fmt.Fprintf(out, "%s [%s]: ", label, *value)
		answer, _ := reader.ReadString('\n')
		if answer = strings.TrimSpace(answer); answer != "" {
			*value = answer
		}
	}

	prompt("API ID", &cfg.Description.ID)
	prompt("API Version", &cfg.Description.Version)
	prompt("API Description", &cfg.Description.Description)
	prompt("Output file", &cfg.Output)
	prompt("Output format (yaml/json)", &cfg.Format)

	return cfg
}

// buildConfigYAML builds a YAML config with a header comment.
func buildConfigYAML(cfg *config.Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	header := `# apidesc configuration file
# Handler manifests are discovered with source.include below source.paths.

`
	return header + string(data), nil
}

const exampleManifest = `# Handler manifest: declares handler types and where they are mounted.
definitions:
  item:
    type: object
    required: [id]
    properties:
      id:
        type: string
      name:
        type: string
errors:
  itemLocked:
    code: 423
    description: The item is locked
types:
  - name: Items
    handler:
      id: items
      mvccSupported: false
      schema:
        ref: item
    members:
      - name: create
        create: {}
      - name: list
        query:
          type: FILTER
          pagingModes: [OFFSET]
      - name: read
        instance: true
        read:
          errors:
            - name: notFound
      - name: delete
        instance: true
        delete:
          errors:
            - name: itemLocked
mounts:
  - path: /items
    type: Items
    variant: collection
`
