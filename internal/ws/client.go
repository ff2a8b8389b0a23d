package ws

import (
	"sync"
	"time"

	"github.com/alok-bhadauria/WatchParty/internal/party"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
)

// Client wraps one websocket connection with a buffered outbound channel and a
// write pump, so a slow reader never blocks a party's event loop.
type Client struct {
	conn *websocket.Conn
	send chan party.Event

	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan party.Event, sendBuffer),
		closed: make(chan struct{}),
	}
}

// Send queues an event for delivery. It never blocks: a full buffer or a
// closed client reports false, and the caller treats the connection as dead.
func (c *Client) Send(ev party.Event) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Close stops the client. The underlying socket is closed by the write pump
// once it has drained what was queued before the close, so an error frame sent
// right before Close still reaches the peer.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case ev := <-c.send:
			if !c.write(ev) {
				return
			}
		case <-c.closed:
			for {
				select {
				case ev := <-c.send:
					if !c.write(ev) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *Client) write(ev party.Event) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(ev); err != nil {
		c.Close()
		return false
	}
	return true
}
