package sqllog

import (
	"errors"
	"fmt"
)

var (
	// ErrWatcherClosed is returned by Watch after Close has been called.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyWatching is returned when Watch is called twice on the
	// same Watcher.
	ErrAlreadyWatching = errors.New("watcher is already watching")
)

// Watch operation names used in WatchError.Op.
const (
	WatchOpTail  = "tail"
	WatchOpParse = "parse"
)

// WatchError wraps a failure from the follow loop with the operation
// that produced it.
type WatchError struct {
	Op   string
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *WatchError) Unwrap() error {
	return e.Err
}
