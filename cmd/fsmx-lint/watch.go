package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch lints o.path once, then again after every change until ctx is done.
// The parent directory is watched so that editors replacing the file are
// noticed.
func watch(ctx context.Context, o options, logger *zap.Logger, stdout io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(o.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("add watch path failed: %w", err)
	}

	check := func() {
		if err := lint(o, logger, stdout); err != nil {
			fmt.Fprintln(stdout, err)
		}
	}
	check()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(o.debounce)
			}

		case <-debounce.C:
			logger.Debug("definition changed", zap.String("file", o.path))
			check()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}
