package substream

import (
	"errors"
	"fmt"

	"github.com/trongtindev/FishNet/pkg/serialize"
)

var (
	// ErrInvalidArgument indicates a caller passed an argument that
	// violates the operation's contract, e.g. a negative slice length.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates an operation was invoked in the wrong
	// mode or after disposal. It signals a call-order bug in the caller.
	ErrInvalidState = errors.New("invalid stream state")
)

// UnsetLength is reported by Length and Remaining when the stream has no
// meaningful value, e.g. an uninitialized or disposed stream.
const UnsetLength = -1

// Mode tags which handle, if any, a SubStream owns.
type Mode uint8

const (
	// ModeNone is the zero value: an uninitialized stream that owns no
	// handle. It is inert but valid to embed in a message and to dispose.
	ModeNone Mode = iota

	// ModeWrite streams own a pooled writer.
	ModeWrite

	// ModeRead streams own a pooled reader viewing borrowed bytes.
	ModeRead
)

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeRead:
		return "read"
	default:
		return "none"
	}
}

// SubStream is an independently-lengthed payload embedded inside a larger
// message. In write mode it owns a pooled growable writer the producer
// serializes into; in read mode it owns a cursor that views a slice of the
// parent message's bytes without copying. A stream owns exactly one handle
// at a time and must be disposed exactly once to return that handle to its
// pool; Dispose is idempotent, so extra calls are harmless.
//
// The zero value is the uninitialized stream: it reports Initialized
// false, StartReading fails recoverably, and Dispose is a no-op. This is
// what an optional payload left empty decodes to.
//
// A SubStream instance must not be used from multiple goroutines. In read
// mode the viewed parent bytes must outlive the stream.
type SubStream struct {
	mode     Mode
	pool     *BufferPool
	writer   *serialize.Writer
	reader   *serialize.Reader
	startPos int
	disposed bool
}

// BeginWrite enters write mode, acquiring a writer with capacity at least
// minCapacity from the pool (zero means the default small size). The
// returned writer is the stream's owned handle; serialize the payload into
// it, copy the bytes out, then dispose the stream to recycle the writer.
// A nil pool selects DefaultPool.
func BeginWrite(pool *BufferPool, minCapacity int) (*SubStream, *serialize.Writer) {
	if pool == nil {
		pool = DefaultPool
	}
	w := pool.AcquireWriter(minCapacity)
	s := &SubStream{
		mode:   ModeWrite,
		pool:   pool,
		writer: w,
	}
	return s, w
}

// FromReader enters read mode by slicing length bytes off the parent
// cursor's current position. The new stream's reader views the parent's
// backing bytes directly, and the parent cursor is advanced past the
// slice so subsequent parent reads continue beyond the payload. A failed
// slice leaves the parent cursor untouched. A nil pool selects
// DefaultPool.
//
// The parent's backing bytes must remain valid for the stream's lifetime.
func FromReader(pool *BufferPool, parent *serialize.Reader, length int) (*SubStream, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: nil parent reader", ErrInvalidArgument)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative slice length %d", ErrInvalidArgument, length)
	}

	view, err := parent.Read(length)
	if err != nil {
		return nil, fmt.Errorf("failed to slice %d bytes from parent reader: %w", length, err)
	}

	if pool == nil {
		pool = DefaultPool
	}
	r := pool.AcquireReader(view)
	return &SubStream{
		mode:     ModeRead,
		pool:     pool,
		reader:   r,
		startPos: r.Position(),
	}, nil
}

// Initialized reports whether the stream was created through BeginWrite or
// FromReader. The zero value reports false.
func (s *SubStream) Initialized() bool {
	return s.mode != ModeNone
}

// Mode returns the stream's current mode tag.
func (s *SubStream) Mode() Mode {
	return s.mode
}

// Disposed reports whether the stream's handle has been released.
func (s *SubStream) Disposed() bool {
	return s.disposed
}

// StartReading rewinds the owned reader to the stream's start position and
// returns it. It returns false for a stream that is not readable: the
// uninitialized zero value (an optional payload left empty, an expected
// condition), a write-mode stream, or a disposed stream. It may be called
// once per receiver in a fan-out delivery; every caller sees the payload
// from its start regardless of how far a previous receiver read.
func (s *SubStream) StartReading() (*serialize.Reader, bool) {
	if s.mode != ModeRead || s.disposed {
		return nil, false
	}
	_ = s.reader.SetPosition(s.startPos)
	return s.reader, true
}

// ResetToStart rewinds the owned reader to the stream's start position
// without handing it out.
func (s *SubStream) ResetToStart() error {
	if s.mode != ModeRead || s.disposed {
		return fmt.Errorf("%w: cannot reset %s-mode stream to start", ErrInvalidState, s.mode)
	}
	return s.reader.SetPosition(s.startPos)
}

// Writer returns the owned write handle.
func (s *SubStream) Writer() (*serialize.Writer, error) {
	if s.mode != ModeWrite || s.disposed {
		return nil, fmt.Errorf("%w: no writer on %s-mode stream", ErrInvalidState, s.mode)
	}
	return s.writer, nil
}

// Reader returns the owned read handle at its current position. Use
// StartReading to rewind first.
func (s *SubStream) Reader() (*serialize.Reader, error) {
	if s.mode != ModeRead || s.disposed {
		return nil, fmt.Errorf("%w: no reader on %s-mode stream", ErrInvalidState, s.mode)
	}
	return s.reader, nil
}

// Length returns the written length in write mode, the total view length
// in read mode, and UnsetLength otherwise.
func (s *SubStream) Length() int {
	if s.disposed {
		return UnsetLength
	}
	switch s.mode {
	case ModeWrite:
		return s.writer.Len()
	case ModeRead:
		return s.reader.Length()
	default:
		return UnsetLength
	}
}

// Remaining returns the unread byte count in read mode and UnsetLength
// otherwise.
func (s *SubStream) Remaining() int {
	if s.mode != ModeRead || s.disposed {
		return UnsetLength
	}
	return s.reader.Remaining()
}

// Dispose releases the owned handle back to its pool. A writer is
// returned to the length bracket matching what was written into it; a
// reader cursor is cleared and recycled, leaving the viewed bytes to their
// owner. Dispose is idempotent in both modes: the handle is released
// exactly once no matter how many times it is called. The stream is
// unusable afterwards; accessors fail with ErrInvalidState.
func (s *SubStream) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	switch s.mode {
	case ModeWrite:
		s.pool.ReleaseWriter(s.writer)
		s.writer = nil
	case ModeRead:
		s.pool.ReleaseReader(s.reader)
		s.reader = nil
	}
}
