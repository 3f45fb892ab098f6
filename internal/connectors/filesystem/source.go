// Package filesystem loads a knowledge base from a local directory of .txt
// files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/logger"
	"github.com/custodia-labs/sercha-voice/internal/normalisers/plaintext"
)

// Ensure Source implements the interfaces.
var _ driven.WatchableSource = (*Source)(nil)

// Extension is the only file type loaded.
const Extension = ".txt"

// Source reads the .txt files directly inside one directory. Hidden files
// and subdirectories are ignored.
type Source struct {
	dir string
}

// New creates a source for dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Name returns the directory path.
func (s *Source) Name() string {
	return s.dir
}

// Documents reads every eligible file, sorted by file name. Document.Source
// is the file name.
func (s *Source) Documents(ctx context.Context) ([]domain.Document, error) {
	if err := s.checkDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base directory: %w", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || !eligible(entry.Name()) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		docs = append(docs, domain.Document{Source: entry.Name(), Content: plaintext.Normalise(string(content))})
	}

	logger.Debug("Loaded %d documents from %s", len(docs), s.dir)
	return docs, nil
}

// Watch reports created, updated and deleted .txt files until ctx is
// cancelled. Events are not coalesced: an editor save can produce several.
func (s *Source) Watch(ctx context.Context) (<-chan domain.DocumentChange, error) {
	if err := s.checkDir(); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	changes := make(chan domain.DocumentChange)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := toChange(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Knowledge base watcher: %v", err)
			}
		}
	}()

	return changes, nil
}

func (s *Source) checkDir() error {
	info, err := os.Stat(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: knowledge base directory %s does not exist", domain.ErrNotFound, s.dir)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrConfiguration, s.dir)
	}
	return nil
}

func toChange(event fsnotify.Event) (domain.DocumentChange, bool) {
	name := filepath.Base(event.Name)
	if !eligible(name) {
		return domain.DocumentChange{}, false
	}

	change := domain.DocumentChange{Source: name}
	switch {
	case event.Has(fsnotify.Create):
		change.Type = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		change.Type = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		change.Type = domain.ChangeDeleted
	default:
		return domain.DocumentChange{}, false
	}
	return change, true
}

func eligible(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, Extension)
}
