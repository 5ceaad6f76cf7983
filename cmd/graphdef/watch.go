package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the bursts of events editors produce on save.
const debounce = 100 * time.Millisecond

func watchCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags("watch")
	subgraph := fs.Bool("subgraph", false, "generate the federation subgraph schema")
	out := fs.String("o", "", "write the SDL to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	patterns := e.file.Patterns()
	dirs := make(map[string]bool)
	for _, p := range patterns {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	regen := func() {
		if err := generate(ctx, e, *subgraph, *out); err != nil {
			e.logger.Error("generate schema", "error", err)
			return
		}
		e.logger.Info("schema generated", "output", *out)
	}
	regen()
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op != fsnotify.Chmod && matches(patterns, ev.Name) {
				e.logger.Debug("type definitions changed", "file", ev.Name, "op", ev.Op.String())
				timer = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watch", "error", err)
		case <-timer:
			timer = nil
			regen()
		}
	}
}

func matches(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
