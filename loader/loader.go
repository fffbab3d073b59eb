package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/progress"
	"github.com/tidwall/gjson"
)

// Format selects how file content is checked after reading.
type Format string

const (
	// FormatAuto picks JSON for .json files and text otherwise.
	FormatAuto Format = "auto"
	// FormatJSON requires every file to be valid JSON.
	FormatJSON Format = "json"
	// FormatText requires every file to be valid UTF-8.
	FormatText Format = "text"
)

// Metadata keys attached to every loaded document.
const (
	MetaFilePath     = "file_path"
	MetaFileName     = "file_name"
	MetaFileType     = "file_type"
	MetaFileSize     = "file_size"
	MetaLastModified = "last_modified_date"
)

// Option is a functional option for configuring the Loader.
type Option func(*Loader) error

// WithWorkers sets the number of files read concurrently.
// Documents are returned in input order regardless.
func WithWorkers(n int) Option {
	return func(l *Loader) error {
		if n < 1 {
			return fmt.Errorf("%w: workers must be at least 1, got %d", core.ErrConfig, n)
		}
		l.workers = n
		return nil
	}
}

// WithFormat sets how content is validated.
func WithFormat(f Format) Option {
	return func(l *Loader) error {
		switch f {
		case FormatAuto, FormatJSON, FormatText:
			l.format = f
			return nil
		default:
			return fmt.Errorf("%w: unknown format %q", core.ErrConfig, f)
		}
	}
}

// WithProgress reports loaded files to w.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) error {
		l.progress = w
		return nil
	}
}

// Loader reads source files into documents.
type Loader struct {
	workers  int
	format   Format
	progress io.Writer
	pool     *ants.Pool
	logger   *slog.Logger
}

// New creates a Loader. The default is a single worker and FormatAuto.
// Call Release when done.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		workers: 1,
		format:  FormatAuto,
		logger:  slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(l.workers, ants.WithLogger(poolLogger{l.logger}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}
	l.pool = pool
	return l, nil
}

// Release frees the worker pool.
func (l *Loader) Release() {
	l.pool.Release()
}

// Load reads every path and returns documents in the same order.
//
// A missing path wraps core.ErrNotFound; content that cannot be read or does
// not match the format wraps core.ErrParse. When several paths fail, the
// error for the earliest path is returned.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*core.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no input paths", core.ErrConfig)
	}
	seen := make(map[string]int, len(paths))
	for i, path := range paths {
		clean := filepath.Clean(path)
		if first, ok := seen[clean]; ok {
			return nil, fmt.Errorf("%w: input %q is given twice (positions %d and %d)", core.ErrConfig, path, first, i)
		}
		seen[clean] = i
	}

	var tracker *progress.Tracker
	if l.progress != nil {
		tracker = progress.NewTracker(l.progress, "Loading", "files", len(paths), 1)
		tracker.Start()
	}

	docs := make([]*core.Document, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		err := l.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: %s: %v", core.ErrParse, path, r)
				}
			}()
			docs[i], errs[i] = l.loadFile(ctx, path)
			tracker.Increment(1)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("%w: submit %s: %w", core.ErrConfig, path, err)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			l.logger.Error("failed to load document", "path", paths[i], "err", err)
			return nil, err
		}
	}
	tracker.Finish()

	l.logger.Info("loaded documents", "count", len(docs))
	return docs, nil
}

func (l *Loader) loadFile(ctx context.Context, path string) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", core.ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", core.ErrParse, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	if err := l.check(path, content); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	fileType := mime.TypeByExtension(ext)
	if fileType == "" {
		fileType = "text/plain"
	}

	doc := &core.Document{
		Id:      core.DocumentID(path, content),
		Path:    path,
		Content: content,
		Metadata: map[string]string{
			MetaFilePath:     path,
			MetaFileName:     filepath.Base(path),
			MetaFileType:     fileType,
			MetaFileSize:     strconv.FormatInt(info.Size(), 10),
			MetaLastModified: info.ModTime().UTC().Format(time.DateOnly),
		},
		LoadedAt: time.Now().UTC(),
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}

	l.logger.Debug("loaded document", "path", path, "bytes", len(content), "id", doc.Id)
	return doc, nil
}

func (l *Loader) check(path string, content []byte) error {
	format := l.format
	if format == FormatAuto {
		format = FormatText
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = FormatJSON
		}
	}

	switch format {
	case FormatJSON:
		if !utf8.Valid(content) {
			return fmt.Errorf("%w: %s is not valid UTF-8", core.ErrParse, path)
		}
		if !gjson.ValidBytes(content) {
			return fmt.Errorf("%w: %s is not valid JSON", core.ErrParse, path)
		}
	case FormatText:
		if !utf8.Valid(content) {
			return fmt.Errorf("%w: %s is not valid UTF-8 text", core.ErrParse, path)
		}
	}
	return nil
}

// poolLogger routes ants' log output to slog.
type poolLogger struct {
	logger *slog.Logger
}

func (p poolLogger) Printf(format string, args ...any) {
	p.logger.Warn(fmt.Sprintf(format, args...))
}
