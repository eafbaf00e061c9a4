package input

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileSource follows an append-only JSONL events file, like tail -F.
// It starts at the current end of the file unless FromStart is set, and
// starts over when the file is truncated or replaced.
type FileSource struct {
	path   string
	logger *slog.Logger

	// FromStart replays events already in the file.
	FromStart bool

	offset  int64
	partial []byte
	ready   chan struct{}
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Name returns the source identifier.
func (s *FileSource) Name() string {
	return "file"
}

// Ready is closed once the watch is in place.
func (s *FileSource) Ready() <-chan struct{} {
	return s.ready
}

// Run watches the file until ctx is done.
func (s *FileSource) Run(ctx context.Context, events chan<- Event) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &AdapterError{Source: s.Name(), Message: "failed to create watcher", Err: err}
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory containing the file (more reliable for writes
	// and survives the file being recreated).
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return &AdapterError{Source: s.Name(), Message: "failed to watch " + dir, Err: err}
	}

	if s.FromStart {
		s.drain(ctx, events)
	} else if info, err := os.Stat(s.path); err == nil {
		s.offset = info.Size()
	}
	close(s.ready)
	s.logger.Debug("following events file", "path", s.path, "offset", s.offset)

	filename := filepath.Base(s.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}

			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				s.reset()
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				s.drain(ctx, events)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("events file watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (s *FileSource) reset() {
	s.offset = 0
	s.partial = nil
}

// drain reads everything appended since the last read and emits each
// complete line. A trailing partial line is kept for the next read.
func (s *FileSource) drain(ctx context.Context, events chan<- Event) {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to open events file", "path", s.path, "error", err)
		}
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < s.offset {
		s.logger.Debug("events file truncated, starting over", "path", s.path)
		s.reset()
	}

	if _, err := f.Seek(s.offset, io.SeekStart); err != nil {
		s.logger.Warn("failed to seek events file", "path", s.path, "error", err)
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Warn("failed to read events file", "path", s.path, "error", err)
	}
	s.offset += int64(len(data))

	data = append(s.partial, data...)
	s.partial = nil
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		if !emitLine(ctx, s.logger, s.Name(), data[:i], events) {
			return
		}
		data = data[i+1:]
	}
	if len(data) > 0 {
		s.partial = append([]byte(nil), data...)
	}
}
