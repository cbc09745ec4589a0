// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/api2spec/apidesc/internal/config"
	"github.com/api2spec/apidesc/internal/scanner"
)

var watchDebounce int

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch manifests and regenerate the description",
	Long: `Watch for manifest changes and automatically regenerate the API description.

This command monitors your handler manifests and regenerates the description
(and the OpenAPI projection, when enabled) after they change. Bursts of
changes are coalesced. A failed regeneration is reported and the previous
output is left in place.

Example:
  apidesc watch                           # Watch current directory
  apidesc watch ./api ./internal          # Watch specific paths
  apidesc watch --debounce 1000           # Wait 1s before regenerating`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 0, "debounce duration in milliseconds (default from config: 500)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchDebounce > 0 {
		cfg.Watch.Debounce = watchDebounce
	}

	paths := sourcePaths(cfg, args)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	printVerbose("Watch configuration:")
	printVerbose("  Debounce: %dms", cfg.Watch.Debounce)
	printVerbose("  Paths: %s", strings.Join(paths, ", "))

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func(ctx context.Context) error {
		desc, err := buildDescription(ctx, cfg, paths)
		if err != nil {
			return err
		}
		return writeOutputs(ctx, cfg, desc)
	}

	if err := rebuild(ctx); err != nil {
		log.WithError(err).Error("generation failed")
	}

	w, err := newManifestWatcher(cfg, paths, rebuild)
	if err != nil {
		return err
	}
	defer w.Close()

	printInfo("Watching for changes in: %s", strings.Join(paths, ", "))
	printInfo("Press Ctrl+C to stop")

	return w.Run(ctx)
}

// manifestWatcher regenerates the description when manifests change.
type manifestWatcher struct {
	fs       *fsnotify.Watcher
	scanner  *scanner.Scanner
	debounce time.Duration
	rebuild  func(context.Context) error
}

// newManifestWatcher subscribes to every non-excluded directory below paths.
func newManifestWatcher(cfg *config.Config, paths []string, rebuild func(context.Context) error) (*manifestWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &manifestWatcher{
		fs:       fsw,
		scanner:  newScanner(cfg),
		debounce: time.Duration(cfg.Watch.Debounce) * time.Millisecond,
		rebuild:  rebuild,
	}
	if err := w.add(paths); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// add watches the directories below paths.
func (w *manifestWatcher) add(paths []string) error {
	dirs, err := w.scanner.Dirs(paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		log.WithField("dir", dir).Debug("watching")
	}
	return nil
}

// Close stops watching.
func (w *manifestWatcher) Close() error {
	return w.fs.Close()
}

// Run dispatches events until ctx is done. Rebuilds run on the watcher
// goroutine, so at most one is in flight.
func (w *manifestWatcher) Run(ctx context.Context) error {
	// Armed by the first relevant event.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				log.WithField("file", event.Name).WithField("event", event.Op.String()).Debug("manifest changed")
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("file watcher error")

		case <-timer.C:
			printInfo("Change detected, regenerating...")
			if err := w.rebuild(ctx); err != nil {
				log.WithError(err).Error("generation failed")
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// relevant reports whether event touches a manifest. New directories are
// subscribed to as a side effect.
func (w *manifestWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.add([]string{event.Name}); err != nil {
				log.WithError(err).Warn("failed to watch new directory")
			}
			return false
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return scanner.IsManifestFile(event.Name) && (w.scanner.Matches(event.Name) || event.Op&(fsnotify.Remove|fsnotify.Rename) != 0)
}
