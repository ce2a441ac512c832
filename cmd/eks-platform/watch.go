package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/coderco/eks-platform/internal/assembly"
)

// newWatchCmd creates the "watch" subcommand for re-synthesizing on
// configuration changes.
func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		debounce     time.Duration
		outputDir    string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-synthesize on configuration changes",
		Long: `Watch monitors the configuration file and writes the assembly again
whenever it changes. Rapid changes are debounced.

Examples:
    eks-platform watch --config platform.yaml
    eks-platform watch --config platform.yaml --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configFile == "" {
				return fmt.Errorf("watch requires --config")
			}
			format, err := assembly.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			return runWatch(cmd, opts, watchOptions{
				debounce:  debounce,
				outputDir: outputDir,
				format:    format,
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputDir, "output", "o", DefaultOutputDir, "Assembly output directory")
	cmd.Flags().StringVar(&outputFormat, "format", "json", "Template format: json or yaml")

	return cmd
}

type watchOptions struct {
	debounce  time.Duration
	outputDir string
	format    assembly.Format
}

// runWatch monitors the configuration file and synthesizes on changes.
func runWatch(cmd *cobra.Command, opts *globalOptions, wo watchOptions) error {
	configPath, err := filepath.Abs(opts.configFile)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// editors replace files on save, so the directory is watched
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Watching: %s\n", configPath)
	synthOnce(cmd, opts, wo)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Fprintln(w, "\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, configPath) {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(wo.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(w, "\n[%s] Change detected, synthesizing...\n", time.Now().Format("15:04:05"))
			synthOnce(cmd, opts, wo)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			fmt.Fprintln(w, "\nStopping watch...")
			return ignoreCanceled(ctx)
		}
	}
}

// isConfigEvent reports whether event writes or recreates the config file.
func isConfigEvent(event fsnotify.Event, configPath string) bool {
	if filepath.Clean(event.Name) != configPath {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func synthOnce(cmd *cobra.Command, opts *globalOptions, wo watchOptions) {
	result := runSynth(cmd, opts, wo.outputDir, wo.format)
	if err := reportBuild(cmd.OutOrStdout(), result, false); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}

func ignoreCanceled(ctx context.Context) error {
	if ctx.Err() == context.Canceled {
		return nil
	}
	return ctx.Err()
}
