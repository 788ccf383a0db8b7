package nav

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File keeps the fragment in a file so it can be shared between processes.
// Writes made by anyone else (another notedesk process, an editor, a paste)
// are picked up by watching the file's directory.
type File struct {
	path    string
	watcher *fsnotify.Watcher

	mu   sync.Mutex
	last string

	subs *subscribers
	done chan struct{}
}

func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fragment file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, fmt.Errorf("failed to create fragment directory: %w", err)
	}

	initial, err := readFragment(abs)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch fragment directory: %w", err)
	}

	f := &File{
		path:    abs,
		watcher: w,
		last:    initial,
		subs:    newSubscribers(),
		done:    make(chan struct{}),
	}

	go f.watch()

	return f, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Fragment() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *File) SetFragment(fragment string) {
	fragment = normalize(fragment)

	f.mu.Lock()
	if fragment == f.last {
		f.mu.Unlock()
		return
	}
	f.last = fragment
	err := writeFragment(f.path, fragment)
	f.mu.Unlock()

	if err != nil {
		navLogger.Error().Err(err).Str("path", f.path).Msg("Failed to write fragment file")
	}

	f.subs.broadcast(fragment)
}

func (f *File) Subscribe(fn func(fragment string)) func() {
	return f.subs.add(fn)
}

// Close stops watching the file.
func (f *File) Close() error {
	err := f.watcher.Close()
	<-f.done
	return err
}

func (f *File) watch() {
	defer close(f.done)

	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				f.reload()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			navLogger.Error().Err(err).Str("path", f.path).Msg("Fragment watcher error")
		}
	}
}

func (f *File) reload() {
	fragment, err := readFragment(f.path)
	if err != nil {
		navLogger.Error().Err(err).Str("path", f.path).Msg("Failed to read fragment file")
		return
	}

	f.mu.Lock()
	if fragment == f.last {
		f.mu.Unlock()
		return
	}
	f.last = fragment
	f.mu.Unlock()

	navLogger.Debug().Str("path", f.path).Msg("Fragment file changed externally")
	f.subs.broadcast(fragment)
}

func readFragment(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read fragment file: %w", err)
	}
	return normalize(string(data)), nil
}

// writeFragment replaces the file atomically so watchers never observe a
// partially written fragment.
func writeFragment(path, fragment string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fragment-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(fragment + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
