package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtin holds the shipped prompt texts. They answer two needs: the
// content written into fresh prompt files, and the fallback when a
// user deletes a file or the directory cannot be created.
var builtin = map[string]string{
	driven.PromptAnswerSystem: `You are a helpful assistant answering questions about the user's personal notes.
Answer using ONLY the provided note excerpts. If the excerpts do not contain
enough information to answer, say so plainly instead of guessing.
Keep answers concise and cite note titles when it helps the reader.`,

	driven.PromptNoResults: `I could not find any relevant notes for your question.`,
}

// PromptStore serves generation prompts from user-editable text files.
// The directory is seeded with the builtin texts on first use, never in
// the constructor, so building a store does no I/O.
type PromptStore struct {
	dir string

	once    sync.Once
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore returns a store rooted at promptDir. An empty
// promptDir means ~/.recall/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".recall", "prompts")
	}

	return &PromptStore{
		dir:   promptDir,
		cache: make(map[string]string),
	}, nil
}

// Load returns the prompt text for name, preferring the user's file
// over the builtin. Results are cached until Reload.
func (s *PromptStore) Load(name string) (string, error) {
	s.once.Do(s.seed)
	if s.seedErr != nil {
		if text, ok := builtin[name]; ok {
			return text, nil
		}
		return "", fmt.Errorf("prompt directory unavailable: %w", s.seedErr)
	}

	s.mu.RLock()
	text, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	raw, err := os.ReadFile(s.fileFor(name))
	if err != nil {
		if text, ok := builtin[name]; ok {
			return text, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	text = strings.TrimSpace(string(raw))

	s.mu.Lock()
	s.cache[name] = text
	s.mu.Unlock()
	return text, nil
}

// Reload drops the cache so edited files are picked up on next Load.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir reports where the prompt files live.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) fileFor(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed creates the directory, one file per builtin prompt, and a
// README. Existing files are left alone; they may carry user edits.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, text := range builtin {
		path := s.fileFor(name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(text), 0600); err != nil {
			s.seedErr = fmt.Errorf("write prompt %q: %w", name, err)
			return
		}
	}

	readme := filepath.Join(s.dir, "README.md")
	if _, err := os.Stat(readme); !os.IsNotExist(err) {
		return
	}
	content := `# Recall Prompts

This directory contains customisable prompts used when Recall answers
questions about your notes.

## Files

- ` + "`answer_system.txt`" + ` - System instruction for answer generation
- ` + "`no_results.txt`" + ` - Answer returned when no relevant notes are found

## Customisation

Edit any file to customise behaviour. Changes take effect on the next
` + "`recall ask`" + ` or after restarting ` + "`recall serve`" + `.
`
	if err := os.WriteFile(readme, []byte(content), 0600); err != nil {
		s.seedErr = fmt.Errorf("write prompts README: %w", err)
	}
}
