package strategy

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// CommandSource tracks the player's standing directive in a text file.
// When a watcher is running the value is served from cache and refreshed on
// file events; without one every read falls back to re-reading the file.
type CommandSource struct {
	path string

	mu       sync.Mutex
	cached   string
	watching bool
}

func NewCommandSource(path string) *CommandSource {
	return &CommandSource{path: path}
}

// Current returns the player's directive, or the autonomous default when
// the file is missing or empty.
func (c *CommandSource) Current() string {
	c.mu.Lock()
	watching := c.watching
	cached := c.cached
	c.mu.Unlock()

	if !watching {
		cached = c.readFile()
	}
	if cached == "" {
		return defaultDirective
	}
	return cached
}

// Watch follows the command file until ctx is cancelled. It watches the
// containing directory because editors and the cmd subcommand replace the
// file rather than write it in place.
func (c *CommandSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	c.mu.Lock()
	c.cached = c.readFile()
	c.watching = true
	c.mu.Unlock()

	go func() {
		defer watcher.Close()
		defer func() {
			c.mu.Lock()
			c.watching = false
			c.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(c.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				cmd := c.readFile()
				c.mu.Lock()
				c.cached = cmd
				c.mu.Unlock()
				slog.Info("user command updated", "command", cmd)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("command watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (c *CommandSource) readFile() string {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
