package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cognicore/deduce/pkg/deduce"
)

const watchDebounce = 100 * time.Millisecond

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var queries []string
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Rebuild the knowledge base whenever its files change and re-run queries",
		Example: `  deduce --kb family.kb watch -q "(ancestor ann ?who)"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), flags, queries)
		},
	}
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Pattern to re-run after every rebuild (repeatable)")
	return cmd
}

// runWatch rebuilds the engine after every change to one of its source files
// until ctx is done. The engine is only touched from this goroutine.
func runWatch(ctx context.Context, w io.Writer, flags *rootFlags, queries []string) error {
	engine, cleanup, err := buildEngine(flags.configPath, flags.kbPaths)
	if err != nil {
		return err
	}
	defer func() { cleanup() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched so editors that save by rename are noticed.
	watched := make(map[string]bool)
	for _, src := range engine.Sources() {
		abs, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", src, err)
		}
	}

	report(w, engine, queries)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || !watched[abs] {
				continue
			}
			debounce = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(w, "watch error:", err)

		case <-debounce:
			debounce = nil
			next, nextCleanup, err := buildEngine(flags.configPath, flags.kbPaths)
			if err != nil {
				fmt.Fprintln(w, "rebuild failed, keeping previous knowledge:", err)
				continue
			}
			cleanup()
			engine, cleanup = next, nextCleanup
			report(w, engine, queries)
		}
	}
}

func report(w io.Writer, e *deduce.Engine, queries []string) {
	fmt.Fprintf(w, "== %s\n", e.KB().Stats())
	for _, q := range queries {
		fmt.Fprintf(w, "-- %s\n", q)
		if err := runQuery(w, e, q); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
