// Package client is a websocket client for the dealer.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerdealer/internal/auth"
	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/server"
	"github.com/lox/pokerdealer/internal/service"
	"github.com/lox/pokerdealer/internal/store"
)

const writeWait = 10 * time.Second

var ErrClosed = errors.New("client: connection closed")

// ReplyError is an error reply from the dealer.
type ReplyError struct {
	Code    string
	Message string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client sends requests over one websocket and matches replies by request id.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	logger    *log.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *server.Reply
	err     error
	done    chan struct{}
}

// NewClient creates a client for serverURL. Call Connect before use.
func NewClient(serverURL string, logger *log.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		logger:    logger.WithPrefix("client"),
		pending:   make(map[string]chan *server.Reply),
		done:      make(chan struct{}),
	}
}

// wsURL converts an http(s) or bare host URL to the dealer's websocket URL.
func wsURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect dials the dealer.
func (c *Client) Connect(ctx context.Context) error {
	u, err := wsURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Debug("Connecting to dealer", "url", u)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn
	go c.readLoop()
	return nil
}

// Close closes the connection and fails pending calls.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var reply server.Reply
		if err := c.conn.ReadJSON(&reply); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("WebSocket error", "error", err)
			}
			c.fail(err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[reply.RequestID]
		delete(c.pending, reply.RequestID)
		c.mu.Unlock()
		if !ok {
			c.logger.Warn("Unmatched reply", "requestId", reply.RequestID, "type", reply.Type)
			continue
		}
		ch <- &reply
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = fmt.Errorf("%w: %v", ErrClosed, err)
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// Call sends a request and waits for its reply. token authenticates this
// request only and may be empty. Error replies are returned as *ReplyError.
func (c *Client) Call(ctx context.Context, msgType server.MessageType, token string, data any) (*server.Reply, error) {
	if c.conn == nil {
		return nil, ErrClosed
	}
	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}
	msg.RequestID = uuid.NewString()
	msg.Token = token

	ch := make(chan *server.Reply, 1)
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return nil, c.err
	}
	c.pending[msg.RequestID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(msg.RequestID)
		return nil, fmt.Errorf("send %s: %w", msgType, err)
	}
	c.logger.Debug("Sent request", "type", msgType, "requestId", msg.RequestID)

	select {
	case reply, ok := <-ch:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return nil, c.err
		}
		if reply.Error != nil {
			return nil, &ReplyError{Code: reply.Error.Code, Message: reply.Error.Message}
		}
		return reply, nil
	case <-ctx.Done():
		c.forget(msg.RequestID)
		return nil, ctx.Err()
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Auth binds token to the connection for later requests.
func (c *Client) Auth(ctx context.Context, token string) (*auth.Identity, error) {
	reply, err := c.Call(ctx, server.TypeAuth, "", server.AuthData{Token: token})
	if err != nil {
		return nil, err
	}
	return reply.Identity, nil
}

// Init initializes the dealer, or hands ownership to owner.
func (c *Client) Init(ctx context.Context, owner string) (*store.Instance, error) {
	reply, err := c.Call(ctx, server.TypeInit, "", server.InitData{Owner: owner})
	if err != nil {
		return nil, err
	}
	return reply.Instance, nil
}

// StartHand deals a hand and returns the start_game response and, if a hand
// was replaced, its last_hand response.
func (c *Client) StartHand(ctx context.Context, req service.StartHandRequest) (*service.Response, *service.Response, error) {
	reply, err := c.Call(ctx, server.TypeStartHand, "", req)
	if err != nil {
		return nil, nil, err
	}
	return reply.Response, reply.PreviousHandLog, nil
}

// Reveal discloses a street on a progressive table.
func (c *Client) Reveal(ctx context.Context, tableID uint32, street dealer.Phase, key uint64) (*service.Response, error) {
	reply, err := c.Call(ctx, server.TypeReveal, "", server.RevealData{
		TableID:   tableID,
		GameState: street,
		SecretKey: server.Secret(key),
	})
	if err != nil {
		return nil, err
	}
	return reply.Response, nil
}

// Advance moves a monotonic table to phase.
func (c *Client) Advance(ctx context.Context, tableID uint32, phase dealer.Phase) (*service.Response, error) {
	reply, err := c.Call(ctx, server.TypeAdvance, "", server.AdvanceData{TableID: tableID, GameState: phase})
	if err != nil {
		return nil, err
	}
	return reply.Response, nil
}

// Showdown surrenders secrets for a showdown.
func (c *Client) Showdown(ctx context.Context, req server.ShowdownData) (*service.Response, error) {
	reply, err := c.Call(ctx, server.TypeShowdown, "", req)
	if err != nil {
		return nil, err
	}
	return reply.Response, nil
}

// OwnerShowdown discloses the named players' hands.
func (c *Client) OwnerShowdown(ctx context.Context, tableID uint32, phase dealer.Phase, players []uuid.UUID) (*service.Response, error) {
	reply, err := c.Call(ctx, server.TypeOwnerShowdown, "", server.OwnerShowdownData{
		TableID:   tableID,
		GameState: &phase,
		ShowCards: players,
	})
	if err != nil {
		return nil, err
	}
	return reply.Response, nil
}

// PrivateData returns the player record for token's identity.
func (c *Client) PrivateData(ctx context.Context, tableID uint32, token string) (*service.PlayerData, error) {
	reply, err := c.Call(ctx, server.TypePrivateData, token, server.TableData{TableID: tableID})
	if err != nil {
		return nil, err
	}
	return reply.Player, nil
}

// EndHand removes a table.
func (c *Client) EndHand(ctx context.Context, tableID uint32) error {
	_, err := c.Call(ctx, server.TypeEndHand, "", server.TableData{TableID: tableID})
	return err
}
