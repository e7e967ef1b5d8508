package testing

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	egolog "github.com/Alia5/egodrive/internal/log"
	"github.com/Alia5/egodrive/internal/server/api"
)

// StartAPIServer starts an API server on a free localhost port with the
// routes added by register. Call done to stop it.
func StartAPIServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) (addr string, done func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr = ln.Addr().String()
	_ = ln.Close()

	apiSrv, err := api.New(addr, cfg, egolog.Discard())
	if err != nil {
		t.Fatalf("api create failed: %v", err)
	}
	if register != nil {
		register(apiSrv.Router())
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}

	done = func() {
		apiSrv.Close()
		time.Sleep(10 * time.Millisecond)
	}
	return addr, done
}

// ExecCmd dials the API server, sends cmd and reads the response line
// without its trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	_, _ = fmt.Fprintf(c, "%s\x00", cmd)

	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
}
