package api

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Request contains route parameters and additional args from the command.
type Request struct {
	Ctx     context.Context
	Params  map[string]string
	Payload string
}

// Response holds the JSON string to return to the client.
type Response struct {
	JSON string
}

// HandlerFunc processes a request and populates the response.
// The logger is connection-scoped and carries the remote address.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

// StreamHandlerFunc handles long-lived connections for bidirectional streaming.
// The handler owns the connection until it returns; the server closes it afterwards.
// req.Ctx is cancelled when the server shuts down.
type StreamHandlerFunc func(conn net.Conn, req *Request, logger *slog.Logger) error

// Router implements simple path pattern matching with placeholders in {name}.
type Router struct {
	routes       []route[HandlerFunc]
	streamRoutes []route[StreamHandlerFunc]
}

type route[H any] struct {
	parts    []string
	original []string
	handler  H
}

// NewRouter returns a new Router instance.
func NewRouter() *Router { return &Router{} }

// Register registers a handler for a path pattern like "takeover/{action}".
func (r *Router) Register(pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, newRoute(pattern, handler))
}

// RegisterStream registers a stream handler for a path pattern like "wheel/{index}".
func (r *Router) RegisterStream(pattern string, handler StreamHandlerFunc) {
	r.streamRoutes = append(r.streamRoutes, newRoute(pattern, handler))
}

// Match returns the HandlerFunc and params for path, or nil if nothing matches.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	return match(r.routes, path)
}

// MatchStream returns the StreamHandlerFunc and params for path, or nil if nothing matches.
func (r *Router) MatchStream(path string) (StreamHandlerFunc, map[string]string) {
	return match(r.streamRoutes, path)
}

// Patterns lists all registered request patterns.
func (r *Router) Patterns() []string {
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, strings.Join(rt.original, "/"))
	}
	return out
}

func newRoute[H any](pattern string, handler H) route[H] {
	return route[H]{
		parts:    strings.Split(strings.ToLower(pattern), "/"),
		original: strings.Split(pattern, "/"),
		handler:  handler,
	}
}

func match[H any](routes []route[H], path string) (H, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range routes {
		if len(rt.parts) != len(parts) {
			continue
		}
		params := map[string]string{}
		ok := true
		for i := range parts {
			if strings.HasPrefix(rt.parts[i], "{") && strings.HasSuffix(rt.parts[i], "}") {
				name := rt.original[i][1 : len(rt.original[i])-1]
				params[name] = parts[i]
				continue
			}
			if rt.parts[i] != parts[i] {
				ok = false
				break
			}
		}
		if ok {
			return rt.handler, params
		}
	}
	var zero H
	return zero, nil
}
