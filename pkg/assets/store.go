// Package assets reads the portfolio's static files: résumé text, project
// list, FAQ document, profile image and CV. Missing files are not errors for
// the assistant; callers decide whether absence matters.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ErrMissing is returned when an asset file does not exist.
var ErrMissing = errors.New("asset missing")

// Config names the asset directory and the files inside it.
type Config struct {
	// Dir is the directory holding every asset (e.g., "assets")
	Dir string `toml:"dir"`

	ResumeFile   string `toml:"resume"`
	ProjectsFile string `toml:"projects"`
	FAQFile      string `toml:"faq"`
	ProfileFile  string `toml:"profile"`
	CVFile       string `toml:"cv"`
}

// DefaultConfig mirrors the layout the site has always shipped with.
func DefaultConfig() Config {
	return Config{
		Dir:          "assets",
		ResumeFile:   "cv.txt",
		ProjectsFile: "projects.json",
		FAQFile:      "faq.json",
		ProfileFile:  "profile.jpg",
		CVFile:       "Claire_CV.pdf",
	}
}

// Project is one entry of the projects collection.
type Project struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Tools       []string `json:"tools"`
}

// Store is a read-only, directory backed asset store. Reads are cached once
// Watch is running; fsnotify events on the directory drop stale entries.
type Store struct {
	config Config
	logger *zap.Logger

	// readFile is os.ReadFile; tests hook it to interleave invalidations.
	readFile func(name string) ([]byte, error)

	mu       sync.RWMutex
	cache    map[string][]byte
	watching bool

	// gen counts invalidations per file name. A read only fills the cache
	// when no invalidation happened while it was on disk.
	gen map[string]uint64
}

// NewStore creates a Store over config.Dir. Empty file names fall back to defaults.
func NewStore(config Config, logger *zap.Logger) *Store {
	def := DefaultConfig()
	if config.Dir == "" {
		config.Dir = def.Dir
	}
	if config.ResumeFile == "" {
		config.ResumeFile = def.ResumeFile
	}
	if config.ProjectsFile == "" {
		config.ProjectsFile = def.ProjectsFile
	}
	if config.FAQFile == "" {
		config.FAQFile = def.FAQFile
	}
	if config.ProfileFile == "" {
		config.ProfileFile = def.ProfileFile
	}
	if config.CVFile == "" {
		config.CVFile = def.CVFile
	}

	return &Store{
		config:   config,
		logger:   logger,
		readFile: os.ReadFile,
		cache:    make(map[string][]byte),
		gen:      make(map[string]uint64),
	}
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.config
}

// Resume returns the résumé text. When the plain-text résumé is absent the
// text layer of the CV PDF is used instead; when both are absent it returns "".
func (s *Store) Resume(ctx context.Context) (string, error) {
	data, err := s.read(ctx, s.config.ResumeFile)
	if err == nil {
		return strings.ToValidUTF8(string(data), ""), nil
	}
	if !errors.Is(err, ErrMissing) {
		return "", err
	}

	pdfData, err := s.read(ctx, s.config.CVFile)
	if errors.Is(err, ErrMissing) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	text, err := extractPDFText(pdfData)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", s.config.CVFile, err)
	}

	s.logger.Debug("résumé text taken from CV PDF",
		zap.String("file", s.config.CVFile),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// Projects returns the project collection in file order. A missing file is an
// empty collection; a malformed one is an error.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	data, err := s.read(ctx, s.config.ProjectsFile)
	if errors.Is(err, ErrMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.config.ProjectsFile, err)
	}
	return projects, nil
}

// FAQ returns the raw FAQ document, validated as JSON.
func (s *Store) FAQ(ctx context.Context) ([]byte, error) {
	data, err := s.read(ctx, s.config.FAQFile)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decoding %s: invalid JSON", s.config.FAQFile)
	}
	return data, nil
}

// Profile returns the profile image bytes.
func (s *Store) Profile(ctx context.Context) ([]byte, error) {
	return s.read(ctx, s.config.ProfileFile)
}

// CV returns the CV document bytes, unmodified.
func (s *Store) CV(ctx context.Context) ([]byte, error) {
	return s.read(ctx, s.config.CVFile)
}

func (s *Store) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.cache[name]
	gen := s.gen[name]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := s.readFile(filepath.Join(s.config.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissing, name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	s.mu.Lock()
	if s.watching && s.gen[name] == gen {
		s.cache[name] = data
	}
	s.mu.Unlock()

	return data, nil
}

// Watch enables caching and invalidates cached files as the directory
// changes. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.config.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", s.config.Dir, err)
	}

	s.mu.Lock()
	s.watching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.watching = false
		s.cache = make(map[string][]byte)
		s.mu.Unlock()
	}()

	s.logger.Info("watching assets", zap.String("dir", s.config.Dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.invalidate(filepath.Base(event.Name))
			s.logger.Debug("asset changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("asset watcher error", zap.Error(err))
		}
	}
}

func (s *Store) invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, name)
	s.gen[name]++
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
