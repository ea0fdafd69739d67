package broadcast

import (
	"fmt"

	"github.com/trongtindev/FishNet/internal/util"
	"github.com/trongtindev/FishNet/pkg/serialize"
	"github.com/trongtindev/FishNet/pkg/substream"
)

// Broadcast is a message deliverable to any number of subscribers.
type Broadcast interface {
	ByteSize() int
	Serialize(*serialize.FixedSizeWriter)
	Deserialize(*serialize.Reader) error
}

// Releasable is implemented by broadcasts that hold pooled resources,
// e.g. deserialized sub-stream fields. The dispatcher calls Release after
// the last subscriber has run.
type Releasable interface {
	Release()
}

const nameIDSize = 8

// NameToID derives the wire identifier for a broadcast name.
func NameToID(name string) uint64 {
	return util.HashStringToUInt64(name)
}

// Pack serializes a broadcast into a deliverable envelope: name ID first,
// payload after.
func Pack(name string, msg Broadcast) []byte {
	writer := serialize.NewFixedSizeWriter(nameIDSize + msg.ByteSize())
	serialize.SerializeUInt64(writer, NameToID(name))
	msg.Serialize(writer)
	return writer.Bytes()
}

// ByteSizeSubStream sizes an embedded sub-stream field: a presence marker,
// and for initialized streams an explicit length plus the payload bytes.
// The length travels here, in the outer message; the sub-stream itself
// never self-describes it.
func ByteSizeSubStream(s *substream.SubStream) int {
	if !writable(s) {
		return 1
	}
	return 1 + 4 + s.Length()
}

// SerializeSubStream writes an embedded sub-stream field. An uninitialized
// or disposed stream serializes as the single absent marker, which is the
// valid encoding for an optional payload left empty.
func SerializeSubStream(writer serialize.Sink, s *substream.SubStream) {
	if !writable(s) {
		serialize.SerializeBool(writer, false)
		return
	}
	serialize.SerializeBool(writer, true)

	bs := payloadBytes(s)
	serialize.SerializeUInt32(writer, uint32(len(bs)))
	copy(writer.Next(len(bs)), bs)
}

// DeserializeSubStream reads an embedded sub-stream field. A present
// payload is sliced zero-copy off the reader, which therefore must view
// storage that outlives the stream; an absent one leaves s uninitialized.
// A nil pool selects the default pool. The caller owns the resulting
// stream and must dispose it.
func DeserializeSubStream(s *substream.SubStream, pool *substream.BufferPool, reader *serialize.Reader) error {
	var present bool
	if err := serialize.DeserializeBool(&present, reader); err != nil {
		return err
	}
	if !present {
		*s = substream.SubStream{}
		return nil
	}

	var length uint32
	if err := serialize.DeserializeUInt32(&length, reader); err != nil {
		return err
	}

	ss, err := substream.FromReader(pool, reader, int(length))
	if err != nil {
		return fmt.Errorf("failed to deserialize sub-stream payload: %w", err)
	}
	*s = *ss
	return nil
}

func writable(s *substream.SubStream) bool {
	return s != nil && s.Initialized() && !s.Disposed()
}

// payloadBytes returns the stream's payload regardless of mode, so a
// received broadcast can be re-packed and forwarded without copying it
// into a fresh writer first.
func payloadBytes(s *substream.SubStream) []byte {
	if w, err := s.Writer(); err == nil {
		return w.Bytes()
	}
	r, ok := s.StartReading()
	if !ok {
		return nil
	}
	// length equals the view size, the read cannot fail
	bs, _ := r.Read(s.Length())
	return bs
}
