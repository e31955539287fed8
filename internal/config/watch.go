package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"oee-analyzer-go/internal/logger"
)

// settleDelay collapses the burst of events one save produces into a
// single reload.
const settleDelay = 100 * time.Millisecond

// Watch reloads the config at path whenever it changes and hands each valid
// result, environment overrides applied, to onChange. A file that fails to
// load or validate is logged and skipped, so the shift clock and timezone
// in use stay as they were. Watch returns when ctx is done.
//
// The parent directory is watched rather than the file so that editors that
// save by renaming a temp file over it keep being seen.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	log := logger.New().WithField("component", "config").WithField("path", path)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	log.Info("watching for changes")

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			settle.Reset(settleDelay)

		case <-settle.C:
			cfg, err := Load(path)
			if err == nil {
				err = cfg.ApplyEnv()
			}
			if err != nil {
				log.WithError(err).Error("config rejected, shift settings unchanged")
				continue
			}
			log.WithField("timezone", cfg.Location().String()).
				WithField("shifts", len(cfg.Shifts)).
				Info("config reloaded")
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("watcher error")
		}
	}
}
