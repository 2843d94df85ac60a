package netsync

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a Transport after Close.
var ErrClosed = errors.New("transport closed")

// Transport moves opaque frames between peers. Send delivers to every
// other peer on the channel (never back to the sender); Receive blocks for
// the next inbound frame. Ordering between peers is not guaranteed.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// MemoryBus is an in-process broadcast channel for tests and local
// multi-seat play.
type MemoryBus struct {
	mu    sync.Mutex
	peers map[*memoryConn]struct{}
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{peers: make(map[*memoryConn]struct{})}
}

// Connect attaches a new peer.
func (b *MemoryBus) Connect() Transport {
	c := &memoryConn{bus: b, inbox: make(chan []byte, 256), done: make(chan struct{})}
	b.mu.Lock()
	b.peers[c] = struct{}{}
	b.mu.Unlock()
	return c
}

type memoryConn struct {
	bus   *MemoryBus
	inbox chan []byte
	once  sync.Once
	done  chan struct{}
}

func (c *memoryConn) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	for peer := range c.bus.peers {
		if peer == c {
			continue
		}
		msg := append([]byte(nil), frame...)
		select {
		case peer.inbox <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *memoryConn) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.inbox:
		return frame, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *memoryConn) Close() error {
	c.once.Do(func() {
		c.bus.mu.Lock()
		delete(c.bus.peers, c)
		c.bus.mu.Unlock()
		close(c.done)
	})
	return nil
}
