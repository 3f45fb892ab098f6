package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts/*.txt
var defaultPromptFS embed.FS

// PromptStore loads prompt templates from user-editable files, falling back
// to the embedded defaults. The directory and default files are created on
// first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a prompt store rooted at promptDir.
// An empty promptDir means ~/.sercha-voice/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name. User files take precedence over the
// embedded defaults; unknown names fail with domain.ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the cache so edited files are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// read loads name from disk, or from the embedded defaults when the user
// file is missing or the directory could not be created.
func (s *PromptStore) read(name string) (string, error) {
	if s.initErr == nil {
		data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read prompt %q: %w", name, err)
		}
	}

	data, err := defaultPromptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
	return strings.TrimSpace(string(data)), nil
}

// initialise creates the prompt directory and copies in any default that
// does not exist yet. Existing user files are never overwritten.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	entries, err := defaultPromptFS.ReadDir("prompts")
	if err != nil {
		s.initErr = err
		return
	}
	for _, entry := range entries {
		path := filepath.Join(s.promptDir, entry.Name())
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		content, err := defaultPromptFS.ReadFile("prompts/" + entry.Name())
		if err != nil {
			s.initErr = err
			return
		}
		if err := os.WriteFile(path, content, 0600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %s: %w", entry.Name(), err)
			return
		}
	}
}
