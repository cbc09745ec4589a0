// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/api2spec/apidesc/internal/apidoc"
	"github.com/api2spec/apidesc/internal/config"
	"github.com/api2spec/apidesc/internal/manifest"
	"github.com/api2spec/apidesc/internal/scanner"
	"github.com/api2spec/apidesc/pkg/types"
)

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}
	return cfg, nil
}

// commandContext returns the context of cmd, which is nil when a command
// function is called directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// sourcePaths returns args, or the configured source paths when args is empty.
func sourcePaths(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Source.Paths
}

func newScanner(cfg *config.Config) *scanner.Scanner {
	return scanner.New(scanner.Config{
		IncludePatterns: cfg.Source.Include,
		ExcludePatterns: cfg.Source.Exclude,
		Logger:          log,
	})
}

// loadManifests discovers and parses the manifests below paths. Every broken
// manifest is reported, not only the first.
func loadManifests(cfg *config.Config, paths []string) ([]*manifest.File, error) {
	files, err := newScanner(cfg).ScanPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", strings.Join(paths, ", "), err)
	}
	log.WithField("count", len(files)).Debug("discovered manifests")

	var (
		manifests []*manifest.File
		errs      []error
	)
	for _, f := range files {
		m, err := manifest.Parse(f.Path, f.Content)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		manifests = append(manifests, m)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return manifests, nil
}

// builderOptions maps the configuration onto the description builder.
func builderOptions(cfg *config.Config) apidoc.Options {
	return apidoc.Options{
		ID:          cfg.Description.ID,
		Version:     cfg.Description.Version,
		Description: cfg.Description.Description,
		Strict:      cfg.Generation.Strict,
		Commons:     cfg.Generation.Commons,
		Parallel:    cfg.Generation.Parallel,
		Logger:      log,
	}
}

// buildDescription runs discovery and description for paths.
func buildDescription(ctx context.Context, cfg *config.Config, paths []string) (*types.APIDescription, error) {
	manifests, err := loadManifests(cfg, paths)
	if err != nil {
		return nil, err
	}
	if len(manifests) == 0 {
		log.Warnf("no manifests found in %s", strings.Join(paths, ", "))
	}

	desc, err := apidoc.NewBuilder(builderOptions(cfg)).Build(ctx, manifests)
	if err != nil {
		return nil, fmt.Errorf("failed to build API description: %w", err)
	}
	return desc, nil
}

// writeOutputs writes the description and, when enabled, its OpenAPI projection.
func writeOutputs(ctx context.Context, cfg *config.Config, desc *types.APIDescription) error {
	writer := apidoc.NewWriter()
	if err := writer.WriteFile(desc, cfg.Output, cfg.Format); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}
	printInfo("Wrote %s (%d paths, %d services)", cfg.Output, len(desc.Paths), desc.Services.Count())

	if !cfg.Generation.OpenAPI.Enabled {
		return nil
	}
	doc, err := exportOpenAPI(ctx, cfg, desc)
	if err != nil {
		return err
	}
	if err := writer.WriteFile(doc, cfg.Generation.OpenAPI.Output, ""); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Generation.OpenAPI.Output, err)
	}
	printInfo("Wrote %s", cfg.Generation.OpenAPI.Output)
	return nil
}

// exportOpenAPI projects desc onto OpenAPI and validates the result.
func exportOpenAPI(ctx context.Context, cfg *config.Config, desc *types.APIDescription) (any, error) {
	doc, err := apidoc.ToOpenAPI(desc, cfg.Generation.OpenAPI.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to export OpenAPI: %w", err)
	}
	if err := apidoc.ValidateOpenAPI(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
