package filesystem

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.BatchSource = (*Source)(nil)

// DefaultSettle is how long a batch file must stay unchanged before Watch emits it.
const DefaultSettle = 250 * time.Millisecond

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 16 << 20

// Source reads crawler batch files from the local filesystem.
//
// Supported formats:
//   - .json: an array of records, or an object with a "documents" array
//   - .jsonl / .ndjson: one record per line
type Source struct {
	settle time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(s *Source) {
		s.settle = d
	}
}

// New creates a filesystem batch source.
func New(opts ...Option) *Source {
	s := &Source{settle: DefaultSettle}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadBatch loads every record of the batch file at path.
func (s *Source) ReadBatch(ctx context.Context, path string) ([]domain.DocumentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = ResolvePath(path)
	if !IsBatchFile(path) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("batch %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading batch %s: %w", path, err)
	}

	var docs []domain.DocumentSnapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		docs, err = decodeJSON(data)
	default:
		docs, err = decodeJSONLines(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}

	logger.Debug("Read %d records from %s", len(docs), path)
	return docs, nil
}

// Watch emits the path of every batch file created or rewritten directly under
// dir, once it has stopped changing. Both channels close when ctx is done.
func (s *Source) Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	paths := make(chan string)
	errs := make(chan error, 1)

	go s.watchLoop(ctx, watcher, paths, errs)

	logger.Info("Watching %s for batch files", dir)
	return paths, errs, nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, paths chan<- string, errs chan<- error) {
	defer close(errs)
	defer close(paths)
	defer watcher.Close()

	debounce := newDebouncer(s.settle)
	defer debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if path, ok := batchEvent(event); ok {
				debounce.touch(path)
			}

		case msg := <-debounce.ready:
			if !debounce.accept(msg) {
				continue
			}
			select {
			case paths <- msg.path:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			default:
				logger.Warn("Watcher error dropped: %v", err)
			}
		}
	}
}

// batchEvent returns the path of event when it creates or writes a visible batch file.
func batchEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(filepath.Base(event.Name)) || !IsBatchFile(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// IsBatchFile reports whether path has a supported batch extension.
func IsBatchFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return true
	default:
		return false
	}
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func decodeJSON(data []byte) ([]domain.DocumentSnapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var docs []domain.DocumentSnapshot
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var envelope struct {
		Documents []domain.DocumentSnapshot `json:"documents"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Documents, nil
}

func decodeJSONLines(data []byte) ([]domain.DocumentSnapshot, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []domain.DocumentSnapshot
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var doc domain.DocumentSnapshot
		if err := json.Unmarshal(text, &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
