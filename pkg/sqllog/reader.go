package sqllog

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/sqllog/sqllog-go/internal/encoding"
	"github.com/sqllog/sqllog-go/internal/record"
	"github.com/sqllog/sqllog-go/internal/segment"
	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Reader streams entries from a sqllog file lazily, in constant memory
// regardless of file size. A Reader is not safe for concurrent use.
type Reader struct {
	closer io.Closer
	sc     *segment.Scanner
	log    *slog.Logger

	readErrSent bool
}

// Open opens a sqllog file for lazy reading. A file that cannot be
// opened yields the error here and nothing else.
func Open(path string, opts ...Option) (*Reader, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sqllog file: %w", err)
	}
	r, err := newReader(f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads sqllog records from an arbitrary stream. Close is a
// no-op; the caller owns the stream.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return newReader(src, cfg)
}

func newReader(src io.Reader, cfg *config) (*Reader, error) {
	decoded, err := encoding.NewReader(src, cfg.encoding)
	if err != nil {
		return nil, err
	}
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	return &Reader{
		sc:  segment.NewScanner(decoded, cfg.bufferSize),
		log: log,
	}, nil
}

// Next returns the next item of the stream, in file order. Malformed
// records surface as non-nil errors from the entry package and do not
// stop the stream; the next call continues with the following record.
// A read failure is terminal: it is returned exactly once, after which
// Next returns io.EOF. io.EOF marks a clean end of stream. Text before
// the first record boundary is skipped.
func (r *Reader) Next() (*entry.Entry, error) {
	if r.sc.Scan() {
		e, err := record.Parse(r.sc.Bytes())
		if err != nil {
			r.log.Debug("record failed to parse", "error", err)
			return nil, err
		}
		return e, nil
	}
	if err := r.sc.Err(); err != nil && !r.readErrSent {
		r.readErrSent = true
		return nil, fmt.Errorf("reading sqllog file: %w", err)
	}
	return nil, io.EOF
}

// All returns an iterator over the remaining items of the stream, for
// use with range. Iteration stops at end of stream; per-record parse
// errors are yielded with a nil entry.
func (r *Reader) All() iter.Seq2[*entry.Entry, error] {
	return func(yield func(*entry.Entry, error) bool) {
		for {
			e, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

// Close releases the underlying file. Safe to call multiple times.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}
