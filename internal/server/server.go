// Package server exposes the dealer over websocket and HTTP.
//
// Both transports carry the same JSON request envelope. A websocket client
// may authenticate once with an auth message; an HTTP client sends a bearer
// token or a token in the envelope on every request.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server serves a Handler.
type Server struct {
	addr     string
	handler  *Handler
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*Connection]struct{}
	ctx   context.Context
}

// NewServer creates a server listening on addr once Run is called.
func NewServer(addr string, handler *Handler, logger zerolog.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger.With().Str("component", "server").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*Connection]struct{}),
		ctx:   context.Background(),
	}
}

// Routes returns the HTTP routes.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("POST /rpc", s.handleRPC)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("dealer listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeConnections(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// closeConnections asks every websocket to close and waits until each has
// sent its close frame, or ctx expires.
func (s *Server) closeConnections(ctx context.Context) {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	for _, conn := range conns {
		select {
		case <-conn.Done():
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	s.mu.Lock()
	conn := newConnection(s.ctx, ws, s.handler, s.logger)
	s.conns[conn] = struct{}{}
	total := len(s.conns)
	s.mu.Unlock()
	s.logger.Debug().Int("total", total).Msg("client connected")

	conn.Start()
	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.logger.Debug().Msg("client disconnected")
	}()
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageSize))
	if err != nil {
		s.writeReply(w, s.handler.errorReply("", fmt.Errorf("%w: %v", errInvalidMessage, err)))
		return
	}

	var sess session
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		id, err := s.handler.auth.Validate(r.Context(), token)
		if err != nil {
			s.writeReply(w, s.handler.errorReply("", err))
			return
		}
		sess.identity = id
	}

	s.writeReply(w, s.handler.Handle(r.Context(), raw, &sess))
}

func (s *Server) writeReply(w http.ResponseWriter, reply *Reply) {
	status := http.StatusOK
	if reply.Error != nil {
		status = httpStatus(reply.Error.Code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, reply); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write rpc reply")
	}
}

func httpStatus(code string) int {
	switch code {
	case CodeInvalidMessage, CodeInvalidPlayerCount, CodeDuplicateIdentifiers:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidPermit:
		return http.StatusUnauthorized
	case CodeTableNotFound, CodePlayerNotFound:
		return http.StatusNotFound
	case CodeAuthUnavailable, CodeEntropyUnavailable:
		return http.StatusServiceUnavailable
	case CodeInternal, CodeSerializationFailure:
		return http.StatusInternalServerError
	}
	return http.StatusConflict
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
