package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/peoplebingo/internal/model"
)

const (
	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Transport names the connection type behind a client
type Transport string

const (
	TransportSSE       Transport = "sse"
	TransportWebSocket Transport = "websocket"
)

// Message is one encoded event ready for delivery
type Message struct {
	Event string
	Data  []byte
}

// Client is one live observer of a session. The hub writes into the send
// buffer and a transport pump drains it.
type Client struct {
	id          string
	code        model.SessionCode
	transport   Transport
	send        chan Message
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
}

// NewClient creates a client with its own outbound buffer
func NewClient(code model.SessionCode, transport Transport) *Client {
	return newClientWithBuffer(code, transport, sendBufferSize)
}

func newClientWithBuffer(code model.SessionCode, transport Transport, size int) *Client {
	return &Client{
		id:          uuid.NewString(),
		code:        code,
		transport:   transport,
		send:        make(chan Message, size),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// Messages returns the outbound buffer
func (c *Client) Messages() <-chan Message {
	return c.send
}

// Done is closed once the client has been removed from its hub
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close marks the client as gone. The send channel is never closed, so
// concurrent enqueues are safe.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// enqueue attempts a non-blocking delivery. It fails if the client is closed
// or its buffer is full.
func (c *Client) enqueue(msg Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}
