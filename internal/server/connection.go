package server

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16384
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client. Requests are handled in arrival order
// and replies are written by a single writer.
type Connection struct {
	conn    *websocket.Conn
	handler *Handler
	send    chan *Reply
	session session
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func newConnection(ctx context.Context, conn *websocket.Conn, handler *Handler, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(ctx)
	return &Connection{
		conn:    conn,
		handler: handler,
		send:    make(chan *Reply, 256),
		logger:  logger.With().Str("remote", conn.RemoteAddr().String()).Logger(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the socket has been closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close asks the connection to shut down. The write pump sends the close
// frame and then closes the socket, which also ends the read pump.
func (c *Connection) Close() error {
	c.cancel()
	return nil
}

func (c *Connection) enqueue(reply *Reply) error {
	select {
	case c.send <- reply:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn().Msg("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket error")
			}
			return
		}

		reply := c.handler.Handle(c.ctx, raw, &c.session)
		if err := c.enqueue(reply); err != nil {
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		_ = c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case reply := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(reply); err != nil {
				c.logger.Warn().Err(err).Msg("failed to write reply")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
