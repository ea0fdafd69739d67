package broadcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongtindev/FishNet/pkg/log"
	"github.com/trongtindev/FishNet/pkg/serialize"
	"github.com/trongtindev/FishNet/pkg/substream"
)

// stateUpdate is a sample broadcast with an optional embedded payload.
type stateUpdate struct {
	Tick    uint32
	Payload substream.SubStream

	pool *substream.BufferPool
}

func (m *stateUpdate) ByteSize() int {
	return serialize.ByteSizeUInt32(m.Tick) + ByteSizeSubStream(&m.Payload)
}

func (m *stateUpdate) Serialize(writer *serialize.FixedSizeWriter) {
	serialize.SerializeUInt32(writer, m.Tick)
	SerializeSubStream(writer, &m.Payload)
}

func (m *stateUpdate) Deserialize(reader *serialize.Reader) error {
	if err := serialize.DeserializeUInt32(&m.Tick, reader); err != nil {
		return err
	}
	return DeserializeSubStream(&m.Payload, m.pool, reader)
}

func (m *stateUpdate) Release() {
	m.Payload.Dispose()
}

func packMoveUpdate(t *testing.T, pool *substream.BufferPool, tick uint32, x, y, z float32) []byte {
	ws, w := substream.BeginWrite(pool, 0)
	defer ws.Dispose()

	serialize.SerializeFloat32(w, x)
	serialize.SerializeFloat32(w, y)
	serialize.SerializeFloat32(w, z)

	msg := &stateUpdate{Tick: tick, Payload: *ws}
	return Pack("game.state", msg)
}

func newTestDispatcher(t *testing.T, pool *substream.BufferPool) *Dispatcher {
	d := NewDispatcher(DispatcherConfig{
		Pool:   pool,
		Logger: log.NopLogger{},
	})
	require.NoError(t, d.RegisterBroadcast("game.state", func() Broadcast {
		return &stateUpdate{pool: pool}
	}))
	return d
}

func TestDispatchFanOutRereadsPayload(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := newTestDispatcher(t, pool)

	calls := 0
	handler := func(ctx context.Context, b Broadcast) error {
		msg, ok := b.(*stateUpdate)
		require.True(t, ok)
		assert.Equal(t, uint32(42), msg.Tick)

		// every subscriber re-reads the same sub-stream instance from
		// its start, regardless of what earlier subscribers consumed
		r, ok := msg.Payload.StartReading()
		require.True(t, ok)

		var x, y, z float32
		require.NoError(t, serialize.DeserializeFloat32(&x, r))
		require.NoError(t, serialize.DeserializeFloat32(&y, r))
		require.NoError(t, serialize.DeserializeFloat32(&z, r))

		assert.Equal(t, float32(1.5), x)
		assert.Equal(t, float32(-2.5), y)
		assert.Equal(t, float32(0.25), z)

		calls++
		return nil
	}

	d.Subscribe("game.state", handler)
	d.Subscribe("game.state", handler)

	data := packMoveUpdate(t, pool, 42, 1.5, -2.5, 0.25)
	require.NoError(t, d.Dispatch(context.Background(), data))

	assert.Equal(t, 2, calls)

	// the envelope reader and the payload reader both went back to the pool
	assert.Equal(t, 2, pool.Stats().Readers)
}

func TestDispatchAbsentPayload(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := newTestDispatcher(t, pool)

	called := false
	d.Subscribe("game.state", func(ctx context.Context, b Broadcast) error {
		msg := b.(*stateUpdate)
		assert.False(t, msg.Payload.Initialized())

		_, ok := msg.Payload.StartReading()
		assert.False(t, ok)

		called = true
		return nil
	})

	msg := &stateUpdate{Tick: 7}
	require.NoError(t, d.Publish(context.Background(), "game.state", msg))
	assert.True(t, called)
}

func TestPackForwardsReadModePayload(t *testing.T) {

	pool := substream.NewBufferPool(0)

	data := packMoveUpdate(t, pool, 1, 4, 5, 6)

	// deserialize, then re-pack the message without touching its payload
	reader := serialize.NewReader(data)
	var id uint64
	require.NoError(t, serialize.DeserializeUInt64(&id, reader))

	received := &stateUpdate{pool: pool}
	require.NoError(t, received.Deserialize(reader))
	require.Equal(t, substream.ModeRead, received.Payload.Mode())

	forwarded := Pack("game.state", received)
	assert.Equal(t, data, forwarded)

	received.Release()
}

func TestUnsubscribe(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := newTestDispatcher(t, pool)

	called := false
	token := d.Subscribe("game.state", func(ctx context.Context, b Broadcast) error {
		called = true
		return nil
	})

	assert.True(t, d.Unsubscribe("game.state", token))
	assert.False(t, d.Unsubscribe("game.state", token))

	require.NoError(t, d.Publish(context.Background(), "game.state", &stateUpdate{Tick: 1}))
	assert.False(t, called)
}

func TestDispatchUnknownBroadcast(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := NewDispatcher(DispatcherConfig{Pool: pool})

	data := Pack("never.registered", &stateUpdate{Tick: 1})
	assert.Error(t, d.Dispatch(context.Background(), data))
}

func TestDispatchTruncatedEnvelope(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := newTestDispatcher(t, pool)

	err := d.Dispatch(context.Background(), []byte{0x01, 0x02})
	assert.ErrorIs(t, err, serialize.ErrOutOfBounds)
}

func TestHandlerErrorDoesNotStopFanOut(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := newTestDispatcher(t, pool)

	d.Subscribe("game.state", func(ctx context.Context, b Broadcast) error {
		return assert.AnError
	})

	secondRan := false
	d.Subscribe("game.state", func(ctx context.Context, b Broadcast) error {
		secondRan = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), "game.state", &stateUpdate{Tick: 9}))
	assert.True(t, secondRan)
}

func TestRegisterBroadcastReplacesFactory(t *testing.T) {

	pool := substream.NewBufferPool(0)
	d := newTestDispatcher(t, pool)

	require.NoError(t, d.RegisterBroadcast("game.state", func() Broadcast {
		return &stateUpdate{pool: pool}
	}))
}

func TestSubStreamFieldCodecSizes(t *testing.T) {

	var empty substream.SubStream
	assert.Equal(t, 1, ByteSizeSubStream(&empty))
	assert.Equal(t, 1, ByteSizeSubStream(nil))

	pool := substream.NewBufferPool(0)
	ws, w := substream.BeginWrite(pool, 0)
	defer ws.Dispose()
	w.WriteBytes([]byte{0x01, 0x02, 0x03})

	assert.Equal(t, 1+4+3, ByteSizeSubStream(ws))
}
