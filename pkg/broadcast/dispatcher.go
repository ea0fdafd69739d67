package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/trongtindev/FishNet/pkg/log"
	"github.com/trongtindev/FishNet/pkg/serialize"
	"github.com/trongtindev/FishNet/pkg/substream"
)

// Handler receives a dispatched broadcast. All handlers subscribed to a
// name receive the same message value, so a handler that starts reading an
// embedded sub-stream always sees the payload from its start no matter
// what earlier handlers consumed.
type Handler func(context.Context, Broadcast) error

// Factory produces an empty broadcast value for deserialization.
type Factory func() Broadcast

type DispatcherConfig struct {
	Pool   *substream.BufferPool
	Logger log.Logger
}

// Dispatcher fans received envelopes out to subscribed handlers. It is
// in-process only; whatever transport carried the envelope bytes here is
// someone else's concern.
type Dispatcher struct {
	conf      DispatcherConfig
	mu        sync.Mutex
	names     map[uint64]string
	factories map[uint64]Factory
	handlers  map[uint64]map[uuid.UUID]Handler
}

func NewDispatcher(conf DispatcherConfig) *Dispatcher {
	if conf.Pool == nil {
		conf.Pool = substream.DefaultPool
	}
	return &Dispatcher{
		conf:      conf,
		names:     make(map[uint64]string),
		factories: make(map[uint64]Factory),
		handlers:  make(map[uint64]map[uuid.UUID]Handler),
	}
}

// RegisterBroadcast associates a name with the factory used to
// deserialize its payload. Registering the same name again replaces the
// factory; two distinct names hashing to the same ID is an error.
func (d *Dispatcher) RegisterBroadcast(name string, factory Factory) error {
	id := NameToID(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.names[id]; ok && existing != name {
		return fmt.Errorf("broadcast name %q collides with already registered %q", name, existing)
	}
	d.names[id] = name
	d.factories[id] = factory
	return nil
}

// Subscribe registers a handler for a broadcast name and returns the
// token that removes it again.
func (d *Dispatcher) Subscribe(name string, fn Handler) uuid.UUID {
	id := NameToID(name)
	token := uuid.New()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handlers[id] == nil {
		d.handlers[id] = make(map[uuid.UUID]Handler)
	}
	d.handlers[id][token] = fn
	return token
}

// Unsubscribe removes a previously subscribed handler. It reports whether
// the token was known.
func (d *Dispatcher) Unsubscribe(name string, token uuid.UUID) bool {
	id := NameToID(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	hs, ok := d.handlers[id]
	if !ok {
		return false
	}
	if _, ok := hs[token]; !ok {
		return false
	}
	delete(hs, token)
	return true
}

// Dispatch decodes one envelope and delivers the message to every
// subscriber of its name. The payload is deserialized once; handlers
// share the resulting message value. Handler errors are logged and do not
// stop the fan-out. Pooled resources held by the message are released
// after the last handler returns.
//
// The envelope bytes are borrowed for the duration of the call: embedded
// sub-stream fields view them directly.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	reader := d.conf.Pool.AcquireReader(data)
	defer d.conf.Pool.ReleaseReader(reader)

	var id uint64
	if err := serialize.DeserializeUInt64(&id, reader); err != nil {
		return fmt.Errorf("failed to deserialize broadcast id: %w", err)
	}

	d.mu.Lock()
	name := d.names[id]
	factory, ok := d.factories[id]
	handlers := make([]Handler, 0, len(d.handlers[id]))
	for _, fn := range d.handlers[id] {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("no broadcast registered for id %d", id)
	}

	msg := factory()
	if err := msg.Deserialize(reader); err != nil {
		return fmt.Errorf("failed to deserialize broadcast %q: %w", name, err)
	}
	if rel, ok := msg.(Releasable); ok {
		defer rel.Release()
	}

	d.logDebug(fmt.Sprintf("Dispatching broadcast %q to %d handlers", name, len(handlers)))

	for _, fn := range handlers {
		if err := fn(ctx, msg); err != nil {
			d.logError(fmt.Sprintf("Handler for broadcast %q failed: %s", name, err.Error()))
		}
	}
	return nil
}

// Publish packs a broadcast and dispatches it locally. It exists for
// loopback delivery; remote delivery hands Pack's bytes to a transport
// and Dispatch to its receive path.
func (d *Dispatcher) Publish(ctx context.Context, name string, msg Broadcast) error {
	return d.Dispatch(ctx, Pack(name, msg))
}

func (d *Dispatcher) logDebug(msg string) {
	if d.conf.Logger != nil {
		d.conf.Logger.Debug(msg)
	}
}

func (d *Dispatcher) logError(msg string) {
	if d.conf.Logger != nil {
		d.conf.Logger.Error(msg)
	}
}
