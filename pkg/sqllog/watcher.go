package sqllog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/nxadm/tail"

	"github.com/sqllog/sqllog-go/internal/boundary"
	"github.com/sqllog/sqllog-go/internal/encoding"
	"github.com/sqllog/sqllog-go/internal/record"
	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

// watcherErrBuffer is the buffer size for the error channel. A small
// buffer prevents error loss while the consumer is busy draining
// entries.
const watcherErrBuffer = 16

// WatchOption configures a Watcher using the functional options pattern.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	fromStart bool
	poll      bool
	encoding  string
	logger    *slog.Logger
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := &watchConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithWatchFromStart replays the existing file content before following
// new writes. Default: start at the current end of file.
func WithWatchFromStart() WatchOption {
	return func(c *watchConfig) {
		c.fromStart = true
	}
}

// WithWatchPolling uses polling instead of inotify to detect file
// growth. Needed on filesystems without change notification (NFS,
// some container mounts).
func WithWatchPolling() WatchOption {
	return func(c *watchConfig) {
		c.poll = true
	}
}

// WithWatchEncoding sets the source encoding of the followed file.
// Supported values are "utf-8" (default), "gbk" and "gb18030". Tailed
// lines are converted to UTF-8 before record assembly; undecodable
// bytes become U+FFFD.
func WithWatchEncoding(name string) WatchOption {
	return func(c *watchConfig) {
		c.encoding = name
	}
}

// WithWatchLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// Watcher follows a growing sqllog file and emits entries as the server
// appends records. A record is emitted once the next record's header
// arrives, since nothing else marks its end; the record being written
// when the watcher stops is therefore not emitted.
type Watcher struct {
	path string
	cfg  watchConfig
	dec  *encoding.Decoder
	log  *slog.Logger

	mu       sync.Mutex
	closed   bool
	watching bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
}

// NewWatcher creates a watcher for path. The file must exist. No
// goroutines start until Watch is called.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)
	dec, err := encoding.NewDecoder(cfg.encoding)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat sqllog file: %w", err)
	}
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	return &Watcher{path: path, cfg: *cfg, dec: dec, log: log}, nil
}

// Watch starts following the file and returns the entry and error
// channels. Both channels close when ctx is cancelled, the watcher is
// closed, or the tail fails fatally. Per-record parse failures arrive on
// the error channel and do not stop the watch. Watch can only be called
// once per Watcher.
func (w *Watcher) Watch(ctx context.Context) (<-chan *entry.Entry, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	entryCh := make(chan *entry.Entry)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, entryCh, errCh)

	return entryCh, errCh, nil
}

// Close stops the watcher and releases resources. Safe to call multiple
// times. Blocks until the follow goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, entryCh chan<- *entry.Entry, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(entryCh)
	defer close(errCh)

	loc := &tail.SeekInfo{Whence: io.SeekEnd}
	if w.cfg.fromStart {
		loc = nil
	}
	t, err := tail.TailFile(w.path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      w.cfg.poll,
		Location:  loc,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()
	w.log.Debug("following sqllog file", "path", w.path, "from_start", w.cfg.fromStart)

	// pending holds the lines of the record under construction. Lines
	// before the first header are dropped: in follow mode they belong
	// to a record whose header scrolled past before we started.
	var pending []string

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines:
			if !ok {
				w.flush(ctx, pending, entryCh, errCh)
				return
			}
			if line.Err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: line.Err})
				continue
			}
			text := w.dec.DecodeString(line.Text)
			if boundary.IsRecordHeader([]byte(text)) {
				w.flush(ctx, pending, entryCh, errCh)
				pending = []string{text}
				continue
			}
			if pending != nil {
				pending = append(pending, text)
				continue
			}
			w.log.Debug("dropping line before first record header")
		}
	}
}

// flush parses the pending record and emits it, or its parse error.
func (w *Watcher) flush(ctx context.Context, pending []string, entryCh chan<- *entry.Entry, errCh chan<- error) {
	if len(pending) == 0 {
		return
	}
	e, err := record.ParseLines(pending)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpParse, Path: w.path, Err: err})
		return
	}
	select {
	case entryCh <- e:
	case <-ctx.Done():
	}
}

// sendError sends an error to the error channel without blocking during
// shutdown. With the buffered channel, errors are only dropped when the
// buffer is full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
