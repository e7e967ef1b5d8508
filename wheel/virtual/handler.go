package virtual

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/Alia5/egodrive/internal/server/api"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/wheel"
)

// StreamHandler serves "wheel/{index}": the client writes RawWheelSample
// frames and receives a ForceState frame whenever the spring effect changes.
func StreamHandler(d *Driver) api.StreamHandlerFunc {
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		idx, err := strconv.Atoi(req.Params["index"])
		if err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid wheel index %q", req.Params["index"]))
		}

		// The tick loop must never wait on the client, so only the latest
		// force state is kept for the writer.
		forces := make(chan wheel.ForceState, 1)
		detach, err := d.Attach(idx, func(f wheel.ForceState) {
			for {
				select {
				case forces <- f:
					return
				default:
				}
				select {
				case <-forces:
				default:
				}
			}
		})
		if err != nil {
			if errors.Is(err, ErrAlreadyAttached) {
				return apierror.ErrConflict(err.Error())
			}
			return apierror.ErrBadRequest(err.Error())
		}
		defer detach()

		done := make(chan struct{})
		defer close(done)
		go func() {
			for {
				select {
				case <-done:
					return
				case f := <-forces:
					data, err := f.MarshalBinary()
					if err != nil {
						logger.Error("failed to marshal force state", "error", err)
						continue
					}
					if _, err := conn.Write(data); err != nil {
						logger.Debug("failed to send force state", "error", err)
						return
					}
				}
			}
		}()

		buf := make([]byte, wheel.SampleSize)
		for {
			if _, err := io.ReadFull(conn, buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					logger.Info("virtual wheel client disconnected", "idx", idx)
					return nil
				}
				return fmt.Errorf("read wheel sample: %w", err)
			}
			var s wheel.RawWheelSample
			if err := s.UnmarshalBinary(buf); err != nil {
				return fmt.Errorf("unmarshal wheel sample: %w", err)
			}
			d.Feed(idx, s)
		}
	}
}
