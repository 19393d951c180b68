package realtime

import (
	"sync"
	"time"

	"github.com/mcoot/idlecoins/internal/model"
)

// Buffer size for outgoing messages
const sendBufferSize = 256

// Client is one live connection registered with the hub
type Client struct {
	send        chan []byte
	connectedAt time.Time

	mu       sync.RWMutex
	playerID model.PlayerID
}

// NewClient creates a client. Its player id is bound once the session is
// hydrated.
func NewClient() *Client {
	return &Client{
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Outbound yields encoded frames for the connection writer. It is closed
// when the hub drops the client.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// Bind attaches the client to a player
func (c *Client) Bind(id model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
}

// PlayerID returns the bound player, or empty before Bind
func (c *Client) PlayerID() model.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}
