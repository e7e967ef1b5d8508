// Package api implements the control API: a small TCP protocol where each
// connection carries one null-terminated request ("<path>[ <payload>]\x00")
// answered by a single JSON line, or is handed to a stream handler.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/internal/server/api/auth"
)

var wsRegex = regexp.MustCompile(`\s`)

// Server serves the control API.
type Server struct {
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new API server. Authentication is required when cfg.Password is set.
func New(addr string, cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	a := &Server{
		addr:   addr,
		logger: logger.With("component", "api"),
		config: cfg,
		router: NewRouter(),
	}
	if cfg.Password != "" {
		key, err := auth.DeriveKey(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("derive api key: %w", err)
		}
		a.key = key
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a, nil
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address once started, else the configured one.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	go a.serve()
	return nil
}

// Close stops the API server and cancels running stream handlers.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Error("API accept error", "error", err)
			return
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.handleConn(c)
		}()
	}
}

func writeError(w io.Writer, err error) {
	problemJSON, _ := json.Marshal(apierror.WrapError(err))
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// authenticate performs the handshake when a key is configured and returns the
// reader/writer pair to use for the rest of the connection.
func (a *Server) authenticate(conn net.Conn, r *bufio.Reader) (net.Conn, *bufio.Reader, error) {
	if a.key == nil {
		return conn, r, nil
	}
	isAuth, err := auth.IsAuthHandshake(r)
	if err != nil {
		return nil, nil, fmt.Errorf("peek handshake: %w", err)
	}
	if !isAuth {
		return nil, nil, apierror.ErrUnauthorized("authentication required")
	}
	clientNonce, serverNonce, err := auth.ServerHandshake(r, conn, a.key)
	if err != nil {
		return nil, nil, err
	}
	secure, err := auth.WrapConn(conn, auth.DeriveSessionKey(a.key, serverNonce, clientNonce))
	if err != nil {
		return nil, nil, err
	}
	return secure, bufio.NewReader(secure), nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(a.ctx)
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ReadTimeout))
	}

	rw, r, err := a.authenticate(conn, bufio.NewReader(conn))
	if err != nil {
		connLogger.Warn("api authentication failed", "error", err)
		writeError(conn, err)
		return
	}

	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		writeError(rw, apierror.ErrBadRequest("empty request"))
		return
	}

	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}
	if path == "" {
		connLogger.Error("api empty path")
		writeError(rw, apierror.ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Debug("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			writeError(rw, err)
			return
		}
		writeOK(rw, res.JSON)
		return
	}

	if sh, params := a.router.MatchStream(path); sh != nil {
		connLogger.Info("api stream begin", "path", path)
		// Unblock the handler's reads on shutdown.
		stop := context.AfterFunc(connCtx, func() { _ = conn.Close() })
		defer stop()
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		if err := sh(&bufferedConn{Conn: rw, r: r}, req, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}

	connLogger.Error("api unknown path", "path", path)
	writeError(rw, apierror.ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}

// bufferedConn keeps bytes already buffered while reading the request line.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }
