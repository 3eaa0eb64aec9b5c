// Package history implements linear undo/redo over full-buffer snapshots.
//
// The log holds at most Limit entries. The cursor points at the entry that
// is currently displayed; -1 means nothing has been drawn. Saving while the
// cursor is behind the end drops every entry after it, so redo is only
// possible until the next new edit.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/masker/internal/logging"
)

// DefaultLimit is the default maximum number of retained snapshots.
const DefaultLimit = 50

// ErrSizeMismatch is returned by Restore implementations when a snapshot
// does not match the target dimensions.
var ErrSizeMismatch = errors.New("history: snapshot size does not match target")

// Snapshot is a full copy of a mask buffer.
type Snapshot struct {
	Width  int
	Height int
	Pix    []uint8 // non-premultiplied RGBA, 4 bytes per pixel
}

// Empty reports whether the snapshot has no area.
func (s Snapshot) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	pix := make([]uint8, len(s.Pix))
	copy(pix, s.Pix)
	return Snapshot{Width: s.Width, Height: s.Height, Pix: pix}
}

// Target is the paintable surface the log captures and restores.
type Target interface {
	// Size returns the current buffer dimensions.
	Size() (width, height int)
	// Capture copies the current pixels. It may fail, for example when
	// the pixels are not readable.
	Capture() (Snapshot, error)
	// Restore replaces the pixels with s.
	Restore(s Snapshot) error
	// Clear wipes the buffer to transparent.
	Clear()
}

// Entry is one retained state.
type Entry struct {
	Snapshot  Snapshot
	Timestamp int64 // Unix milliseconds
}

// Option configures a Log.
type Option func(*Log)

// WithLimit sets the maximum number of entries. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(l *Log) {
		if n >= 1 {
			l.limit = n
		}
	}
}

// WithClock sets the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithUndoableClear makes Clear record a cleared snapshot instead of
// resetting the log, so a clear can be undone like any stroke.
func WithUndoableClear() Option {
	return func(l *Log) {
		l.undoableClear = true
	}
}

// Log is a bounded snapshot history bound to one Target.
//
// Log is not safe for concurrent use.
type Log struct {
	target        Target
	entries       []Entry
	cursor        int
	limit         int
	undoableClear bool
	now           func() time.Time
}

// New creates an empty log for target.
func New(target Target, opts ...Option) *Log {
	l := &Log{
		target: target,
		cursor: -1,
		limit:  DefaultLimit,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Len returns the number of retained entries.
func (l *Log) Len() int { return len(l.entries) }

// Cursor returns the index of the displayed entry, or -1.
func (l *Log) Cursor() int { return l.cursor }

// Limit returns the maximum number of entries.
func (l *Log) Limit() int { return l.limit }

// CanUndo reports whether Undo would change state.
func (l *Log) CanUndo() bool { return l.cursor >= 0 }

// CanRedo reports whether Redo would change state.
func (l *Log) CanRedo() bool { return l.cursor < len(l.entries)-1 }

// Entries returns a copy of the entry list. Snapshots share pixel storage
// with the log and must not be modified.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Save captures the target and appends it as the newest entry.
//
// Save is a no-op while the target has no area. A capture failure is logged
// and leaves the log untouched.
func (l *Log) Save() error {
	w, h := l.target.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	snap, err := l.target.Capture()
	if err != nil {
		logging.Get().Warn("history: snapshot capture failed", "error", err)
		return fmt.Errorf("history: capture: %w", err)
	}
	l.push(snap)
	return nil
}

// Push appends an externally produced snapshot, with the same truncation
// and eviction rules as Save.
func (l *Log) Push(s Snapshot) {
	if s.Empty() {
		return
	}
	l.push(s)
}

func (l *Log) push(s Snapshot) {
	if l.cursor < len(l.entries)-1 {
		for i := l.cursor + 1; i < len(l.entries); i++ {
			l.entries[i] = Entry{}
		}
		l.entries = l.entries[:l.cursor+1]
	}
	l.entries = append(l.entries, Entry{Snapshot: s, Timestamp: l.now().UnixMilli()})
	l.cursor = len(l.entries) - 1

	if over := len(l.entries) - l.limit; over > 0 {
		for i := 0; i < over; i++ {
			l.entries[i] = Entry{}
		}
		l.entries = append(l.entries[:0], l.entries[over:]...)
		l.cursor -= over
		if l.cursor < -1 {
			l.cursor = -1
		}
	}
	logging.Get().Debug("history: saved", "entries", len(l.entries), "cursor", l.cursor)
}

// Undo moves one step back and restores that state. Stepping back from the
// first entry restores a cleared buffer. It reports whether the state moved.
func (l *Log) Undo() bool {
	if l.cursor < 0 {
		return false
	}
	l.cursor--
	l.apply()
	return true
}

// Redo moves one step forward if a later entry exists.
func (l *Log) Redo() bool {
	if l.cursor >= len(l.entries)-1 {
		return false
	}
	l.cursor++
	l.apply()
	return true
}

// Clear wipes the target. By default the log is reset to empty with cursor
// -1, discarding every entry; with WithUndoableClear the cleared state is
// recorded as a new entry instead.
func (l *Log) Clear() {
	l.target.Clear()
	if l.undoableClear && len(l.entries) > 0 {
		if err := l.Save(); err == nil {
			return
		}
	}
	l.Reset()
}

// Reset discards every entry without touching the target.
func (l *Log) Reset() {
	for i := range l.entries {
		l.entries[i] = Entry{}
	}
	l.entries = l.entries[:0]
	l.cursor = -1
}

func (l *Log) apply() {
	if l.cursor < 0 {
		l.target.Clear()
		return
	}
	if err := l.target.Restore(l.entries[l.cursor].Snapshot); err != nil {
		logging.Get().Warn("history: restore failed", "cursor", l.cursor, "error", err)
	}
}
