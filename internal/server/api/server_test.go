package api_test

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/apiclient"
	"github.com/Alia5/egodrive/internal/server/api"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	th "github.com/Alia5/egodrive/internal/testing"
)

func TestAPIServer_Requests(t *testing.T) {
	addr, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.Register("echo/{word}", func(req *api.Request, res *api.Response, _ *slog.Logger) error {
			res.JSON = fmt.Sprintf(`{"word":%q,"payload":%q}`, req.Params["word"], req.Payload)
			return nil
		})
		r.Register("fail", func(*api.Request, *api.Response, *slog.Logger) error {
			return apierror.ErrConflict("busy")
		})
		r.Register("boom", func(*api.Request, *api.Response, *slog.Logger) error {
			return errors.New("boom")
		})
	})
	defer done()

	tests := []struct {
		name     string
		cmd      string
		expected string
	}{
		{"params and payload", "echo/hi some\npayload", `{"word":"hi","payload":"some\npayload"}`},
		{"path is lowercased", "ECHO/Hi", `{"word":"hi","payload":""}`},
		{"api error", "fail", `{"status":409,"title":"Conflict","detail":"busy"}`},
		{"plain error", "boom", `{"status":500,"title":"Internal Server Error","detail":"boom"}`},
		{"unknown path", "nope/here", `{"status":404,"title":"Not Found","detail":"unknown path: nope/here"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.expected, th.ExecCmd(t, addr, tt.cmd))
		})
	}
}

func TestAPIServer_EmptyRequest(t *testing.T) {
	addr, done := th.StartAPIServer(t, api.ServerConfig{}, nil)
	defer done()
	assert.JSONEq(t, `{"status":400,"title":"Bad Request","detail":"empty request"}`, th.ExecCmd(t, addr, ""))
}

func TestAPIServer_StreamHandlerError_ClosesConn(t *testing.T) {
	addr, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("wheel/{index}", func(net.Conn, *api.Request, *slog.Logger) error {
			return fmt.Errorf("boom")
		})
	})
	defer done()

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = fmt.Fprint(c, "wheel/0\x00")
	require.NoError(t, err)

	buf := make([]byte, 1)
	_ = c.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, readErr := c.Read(buf)
	require.Error(t, readErr)
}

func TestAPIServer_StreamKeepsBufferedBytes(t *testing.T) {
	got := make(chan string, 1)
	addr, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("lines", func(conn net.Conn, _ *api.Request, _ *slog.Logger) error {
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil {
				return err
			}
			got <- strings.TrimSpace(line)
			return nil
		})
	})
	defer done()

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	// Request and first stream line in one write.
	_, err = fmt.Fprint(c, "lines\x00first\n")
	require.NoError(t, err)

	select {
	case line := <-got:
		assert.Equal(t, "first", line)
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not receive data")
	}
}

func TestAPIServer_Auth(t *testing.T) {
	addr, done := th.StartAPIServer(t, api.ServerConfig{Password: "hunter2"}, func(r *api.Router) {
		r.Register("ping", func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
			res.JSON = `{"ok":true}`
			return nil
		})
	})
	defer done()

	assert.JSONEq(t, `{"status":401,"title":"Unauthorized","detail":"authentication required"}`, th.ExecCmd(t, addr, "ping"))

	line, err := apiclient.NewTransportWithPassword(addr, "hunter2").Do("ping", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, line)

	_, err = apiclient.NewTransportWithPassword(addr, "wrong").Do("ping", nil, nil)
	require.Error(t, err)
}
