// Package segment turns an unbounded byte stream into raw record spans.
//
// A record starts wherever a line begins with a valid 23-byte timestamp
// and runs until the next such line start (or end of stream). Because a
// timestamp can be split across two reads, the scanner keeps a small
// bounded holding area for the bytes after a newline whose 23-byte
// lookahead is not complete yet; segmentation is therefore identical
// whatever the refill granularity of the underlying reader.
package segment

import (
	"bytes"
	"io"

	"github.com/sqllog/sqllog-go/internal/boundary"
)

// DefaultBufferSize is the read buffer size used when the caller does
// not specify one.
const DefaultBufferSize = 64 * 1024

// Scanner yields raw record spans from a reader, one per Scan call.
// Usage mirrors bufio.Scanner:
//
//	sc := segment.NewScanner(r, 0)
//	for sc.Scan() {
//	    raw := sc.Bytes()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
//
// A Scanner owns no goroutines and is not safe for concurrent use.
type Scanner struct {
	r   io.Reader
	buf []byte

	// win holds bytes read but not yet attributed to a record. When
	// winLineStart is true, win[0] sits at a line start and is a
	// boundary candidate awaiting its 23-byte lookahead.
	win          []byte
	winLineStart bool

	// acc accumulates the record under construction.
	acc []byte

	// lead collects bytes seen before the first confirmed boundary.
	lead []byte

	rec     []byte
	started bool
	eof     bool
	done    bool
	err     error
}

// NewScanner returns a Scanner reading from r. bufSize <= 0 selects
// DefaultBufferSize.
func NewScanner(r io.Reader, bufSize int) *Scanner {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Scanner{
		r:            r,
		buf:          make([]byte, bufSize),
		winLineStart: true,
	}
}

// Scan advances to the next record span. It returns false at end of
// stream or on a read error; Err distinguishes the two. Read errors are
// terminal: the scanner never retries a failed read.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}
	for {
		if rec, ok := s.scanWindow(); ok {
			s.rec = rec
			return true
		}
		if s.eof {
			return s.flush()
		}
		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.win = append(s.win, s.buf[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				s.eof = true
				continue
			}
			s.err = err
			s.done = true
			return false
		}
	}
}

// Bytes returns the raw span of the record found by the last call to
// Scan. The span starts at the record's timestamp and includes the
// trailing newline when one precedes the next record. The slice is only
// valid until the next Scan call.
func (s *Scanner) Bytes() []byte {
	return s.rec
}

// Err returns the first read error encountered, or nil when scanning
// stopped at end of stream.
func (s *Scanner) Err() error {
	return s.err
}

// LeadingText returns the bytes that preceded the first confirmed record
// boundary (empty for well-formed streams). Only complete once Scan has
// returned false.
func (s *Scanner) LeadingText() []byte {
	return s.lead
}

// scanWindow searches the unscanned window for a confirmed boundary and
// returns the completed record, if any. When the window is exhausted it
// moves resolved bytes into the accumulator, keeps the ambiguous tail
// (at most 22 bytes: a partial line start awaiting lookahead), and
// reports false so the caller can refill.
func (s *Scanner) scanWindow() ([]byte, bool) {
	i := 0
	for {
		var cand int
		if s.winLineStart && i == 0 {
			cand = 0
		} else {
			nl := bytes.IndexByte(s.win[i:], '\n')
			if nl < 0 {
				// No further line starts: the whole window is
				// record content.
				s.shift(len(s.win), false)
				return nil, false
			}
			cand = i + nl + 1
		}

		if len(s.win)-cand < boundary.TimestampLen {
			// Not enough lookahead to decide; hold the tail.
			s.shift(cand, true)
			return nil, false
		}

		if boundary.IsTimestamp(s.win[cand : cand+boundary.TimestampLen]) {
			if !s.started {
				// First boundary: record nothing, drop the
				// prefix into the leading-text area.
				s.started = true
				s.lead = append(s.lead, s.acc...)
				s.lead = append(s.lead, s.win[:cand]...)
				s.acc = s.acc[:0]
				s.win = s.win[cand:]
				s.winLineStart = false
				i = 0
				continue
			}
			rec := make([]byte, 0, len(s.acc)+cand)
			rec = append(rec, s.acc...)
			rec = append(rec, s.win[:cand]...)
			s.acc = s.acc[:0]
			s.win = s.win[cand:]
			s.winLineStart = false
			return rec, true
		}

		// Internal newline, keep scanning past it.
		if cand == 0 {
			s.winLineStart = false
		}
		i = cand
	}
}

// shift moves the first n window bytes into the accumulator. The
// remaining tail becomes the new window; tailLineStart records whether
// it begins at a line start.
func (s *Scanner) shift(n int, tailLineStart bool) {
	s.acc = append(s.acc, s.win[:n]...)
	s.win = s.win[n:]
	s.winLineStart = tailLineStart
}

// flush emits whatever has accumulated once the stream is exhausted.
// A record needs no trailing newline at end of stream.
func (s *Scanner) flush() bool {
	s.done = true
	s.acc = append(s.acc, s.win...)
	s.win = nil
	if !s.started {
		s.lead = append(s.lead, s.acc...)
		s.acc = nil
		return false
	}
	if len(s.acc) == 0 {
		return false
	}
	s.rec = s.acc
	s.acc = nil
	return true
}
