package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"yatra/internal/domain"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
}

// FileSource watches a directory for recordings and text queries. A file
// named "query.hi.wav" is treated as Hindi; without a language infix the
// source default applies. Consumed files are renamed to *.processed.
type FileSource struct {
	dir          string
	language     domain.Language
	pollInterval time.Duration

	mu        sync.Mutex
	processed map[string]bool
}

func NewFileSource(dir string, lang domain.Language) *FileSource {
	if !lang.Supported() {
		lang = domain.DefaultLanguage
	}
	return &FileSource{
		dir:          dir,
		language:     lang,
		pollInterval: 500 * time.Millisecond,
		processed:    make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) (*domain.Utterance, error) {
	if u, err := f.checkForNewFile(); err != nil || u != nil {
		return u, err
	}

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			u, err := f.checkForNewFile()
			if err != nil {
				return nil, err
			}
			if u != nil {
				return u, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile() (*domain.Utterance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		if !audioExtensions[ext] && ext != ".txt" {
			continue
		}

		path := filepath.Join(f.dir, name)
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		_ = os.Rename(path, path+".processed")

		u := &domain.Utterance{Language: f.languageOf(name)}
		if ext == ".txt" {
			u.Text = strings.TrimSpace(string(data))
			if u.Text == "" {
				continue
			}
		} else {
			u.Audio = data
		}
		return u, nil
	}

	return nil, nil
}

func (f *FileSource) languageOf(name string) domain.Language {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	infix := strings.TrimPrefix(filepath.Ext(stem), ".")
	if infix == "" {
		return f.language
	}

	lang := domain.Language(strings.ToLower(infix))
	if lang.Supported() {
		return lang
	}
	return f.language
}
