package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	apitypes "github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/wheel"
)

// Stream is a long-lived connection to one of the API's stream paths.
type Stream struct {
	conn   net.Conn
	Path   string
	closed bool

	readCancel context.CancelFunc
	readMu     sync.Mutex
}

func (c *Client) openStream(ctx context.Context, path string) (*Stream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	// streams live longer than any request timeout
	_ = conn.SetWriteDeadline(time.Time{})
	if _, err := conn.Write([]byte(path + "\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &Stream{conn: conn, Path: path}, nil
}

// Write sends raw bytes on the stream.
func (s *Stream) Write(data []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("stream closed")
	}
	return s.conn.Write(data)
}

// Read receives raw bytes from the stream.
func (s *Stream) Read(buf []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("stream closed")
	}
	return s.conn.Read(buf)
}

// SetReadDeadline sets the read deadline for the underlying connection.
func (s *Stream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// SetWriteDeadline sets the write deadline for the underlying connection.
func (s *Stream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// Close closes the stream connection and stops any background reading.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.readMu.Lock()
	if s.readCancel != nil {
		s.readCancel()
	}
	s.readMu.Unlock()

	return s.conn.Close()
}

// WheelStream feeds a virtual wheel and receives its force feedback.
type WheelStream struct {
	*Stream
	Index int
}

// OpenWheelStream attaches to virtual wheel idx. The server must run the
// virtual wheel driver.
func (c *Client) OpenWheelStream(ctx context.Context, idx int) (*WheelStream, error) {
	s, err := c.openStream(ctx, fmt.Sprintf("wheel/%d", idx))
	if err != nil {
		return nil, err
	}
	return &WheelStream{Stream: s, Index: idx}, nil
}

// Send writes one wheel sample.
func (w *WheelStream) Send(sample wheel.RawWheelSample) error {
	data, err := sample.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// StartReading delivers force state changes on the returned channel until
// ctx is done or the stream fails. The error channel receives the reason.
func (w *WheelStream) StartReading(ctx context.Context, chSize int) (<-chan wheel.ForceState, <-chan error) {
	w.readMu.Lock()
	defer w.readMu.Unlock()

	if w.readCancel != nil {
		panic("StartReading called twice on the same stream")
	}

	forceCh := make(chan wheel.ForceState, chSize)
	errCh := make(chan error, 1)

	readCtx, cancel := context.WithCancel(ctx)
	w.readCancel = cancel

	go func() {
		defer close(forceCh)
		defer close(errCh)
		defer cancel()

		r := bufio.NewReader(w.conn)
		buf := make([]byte, wheel.ForceStateSize)
		for {
			if _, err := io.ReadFull(r, buf); err != nil {
				if readCtx.Err() != nil {
					err = readCtx.Err()
				}
				errCh <- err
				return
			}
			var f wheel.ForceState
			if err := f.UnmarshalBinary(buf); err != nil {
				errCh <- err
				return
			}
			select {
			case forceCh <- f:
			case <-readCtx.Done():
				errCh <- readCtx.Err()
				return
			}
		}
	}()

	return forceCh, errCh
}

// AutopilotStream pushes commands to a remote autopilot.
type AutopilotStream struct {
	*Stream
	enc *json.Encoder
}

// OpenAutopilotStream connects to the remote autopilot command stream.
func (c *Client) OpenAutopilotStream(ctx context.Context) (*AutopilotStream, error) {
	s, err := c.openStream(ctx, "autopilot/stream")
	if err != nil {
		return nil, err
	}
	return &AutopilotStream{Stream: s, enc: json.NewEncoder(s.conn)}, nil
}

// Send writes one command as a JSON line.
func (a *AutopilotStream) Send(cmd apitypes.AxisCommand) error {
	if a.closed {
		return fmt.Errorf("stream closed")
	}
	return a.enc.Encode(cmd)
}
