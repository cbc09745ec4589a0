// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package apidoc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/api2spec/apidesc/pkg/types"
)

// Writer writes API descriptions, or any other document the description
// packages can encode (e.g., an OpenAPI projection), as YAML or JSON.
type Writer struct {
	// Indent specifies the indentation for JSON output (default: 2 spaces)
	Indent int
}

// NewWriter creates a new Writer with default settings.
func NewWriter() *Writer {
	return &Writer{
		Indent: 2,
	}
}

// FormatFor returns format, or the format implied by the extension of path when
// format is empty. Unknown extensions default to YAML.
func FormatFor(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// WriteYAML writes doc as YAML to out.
func (w *Writer) WriteYAML(doc any, out io.Writer) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// WriteJSON writes doc as JSON to out.
func (w *Writer) WriteJSON(doc any, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", w.Indent))

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Write writes doc to out in the given format ("yaml" or "json").
func (w *Writer) Write(doc any, out io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		return w.WriteYAML(doc, out)
	case "json":
		return w.WriteJSON(doc, out)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFile writes doc to path, creating parent directories. An empty format is
// inferred from the file extension.
func (w *Writer) WriteFile(doc any, path string, format string) error {
	format = FormatFor(path, format)
	if format != "yaml" && format != "yml" && format != "json" {
		return fmt.Errorf("unsupported format: %s", format)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return w.Write(doc, file, format)
}

// Render returns doc encoded in the given format.
func (w *Writer) Render(doc any, format string) (string, error) {
	var buf strings.Builder
	if err := w.Write(doc, &buf, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadFile reads an API description from path. The format is inferred from the
// file extension. Decoding rebuilds every resource, so a file breaking the
// descriptor invariants is rejected.
func ReadFile(path string) (*types.APIDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc types.APIDescription
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			doc = types.APIDescription{}
			if jerr := json.Unmarshal(data, &doc); jerr != nil {
				return nil, fmt.Errorf("failed to parse file as YAML or JSON: %w", yerr)
			}
		}
	}

	if doc.Services == nil {
		// empty file, the decoder never reached the description
		return types.NewAPIDescription("", ""), nil
	}
	return &doc, nil
}
