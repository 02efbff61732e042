// Package filesystem watches a local folder and turns file activity into
// document changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docpilot/internal/logger"
)

// ChangeType is the kind of file activity observed.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is one observed file event. Data is nil for deletions.
type Change struct {
	Type ChangeType
	Path string
	Data []byte
}

// ErrClosed is returned by operations on a closed connector.
var ErrClosed = errors.New("connector closed")

// Connector reads supported files under a root directory. Hidden files and
// directories are ignored.
type Connector struct {
	rootPath string
	supports func(filename string) bool

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector for rootPath. supports decides which files are
// of interest; nil accepts every file.
func New(rootPath string, supports func(filename string) bool) *Connector {
	if supports == nil {
		supports = func(string) bool { return true }
	}
	return &Connector{rootPath: rootPath, supports: supports}
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// Scan emits a created change for every supported file already present,
// in lexical path order. Both channels are closed when the walk ends.
func (c *Connector) Scan(ctx context.Context) (<-chan Change, <-chan error) {
	changes := make(chan Change)
	errs := make(chan error, 1)

	go func() {
		defer close(changes)
		defer close(errs)

		if err := c.Validate(); err != nil {
			errs <- err
			return
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}
			if path != c.rootPath && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !c.supports(path) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("Reading %s: %v", path, err)
				return nil
			}
			select {
			case changes <- Change{Type: ChangeCreated, Path: path, Data: data}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errs <- err
		}
	}()

	return changes, errs
}

// Watch starts watching the root and its subdirectories. The returned
// channel closes when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	changes := make(chan Change)
	go c.loop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) loop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(event.Name) {
					if err := c.addTree(watcher, event.Name); err != nil {
						logger.Warn("Watching %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent converts a filesystem event into a change, or nil when the
// event is not of interest. A rename is reported as a deletion of the old
// name; the new name arrives as its own create event.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	if isHidden(event.Name) || !c.supports(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(event.Name)
		if err != nil {
			logger.Warn("Reading %s: %v", event.Name, err)
			return nil
		}
		changeType := ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = ChangeCreated
		}
		return &Change{Type: changeType, Path: event.Name, Data: data}
	default:
		return nil
	}
}

// Close stops watching. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
