package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	eventbus "github.com/apollosolutions/graphguard/internal/eventbus"
	events "github.com/apollosolutions/graphguard/internal/events"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watch reloads the store whenever the config file or the schema file
// it names changes. Invalid or unreadable proposals are reported via
// the event bus and the last good snapshot keeps serving; the watcher
// never stops on a bad reload. Watch blocks until ctx is done.
func Watch(ctx context.Context, store *Store, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer watcher.Close()

	// Watch directories rather than files: editors replace files on
	// save and some platforms drop watches on the old inode.
	dirs := map[string]struct{}{filepath.Dir(abs): {}}
	if cfg, err := Load(abs); err == nil && cfg.Schema != "" {
		schemaPath := cfg.Schema
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(filepath.Dir(abs), schemaPath)
		}
		dirs[filepath.Dir(schemaPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("config: watch %s: %w", dir, err)
		}
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
				fire = debounce.C
			} else {
				debounce.Reset(debounceDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			eventbus.Publish(ctx, events.ConfigReloadFailed{Path: abs, Err: err})

		case <-fire:
			debounce = nil
			fire = nil
			reload(ctx, store, abs)
		}
	}
}

func reload(ctx context.Context, store *Store, path string) {
	cfg, err := Load(path)
	if err == nil {
		err = store.Reload(cfg, filepath.Dir(path))
	}
	if err != nil {
		eventbus.Publish(ctx, events.ConfigReloadFailed{Path: path, Err: err})
		return
	}
	eventbus.Publish(ctx, events.ConfigReloaded{Path: path})
}
