package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// maxFrameSize bounds a single encrypted frame.
const maxFrameSize = 1 << 20

// Conn frames every Write as len[4] nonce[12] ciphertext and decrypts on Read.
type Conn struct {
	net.Conn
	aead cipher.AEAD

	wmu     sync.Mutex
	sendCtr uint64

	rmu     sync.Mutex
	pending bytes.Buffer
}

// WrapConn returns conn encrypted with ChaCha20-Poly1305 under sessionKey.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead}, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	frame := make([]byte, 4+chacha20poly1305.NonceSize, 4+chacha20poly1305.NonceSize+len(p)+c.aead.Overhead())
	binary.BigEndian.PutUint64(frame[4+4:], c.sendCtr)
	c.sendCtr++
	frame = c.aead.Seal(frame, frame[4:4+chacha20poly1305.NonceSize], p, nil)
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)-4))

	if _, err := c.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	if c.pending.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		n := binary.BigEndian.Uint32(hdr[:])
		if n > maxFrameSize || n < chacha20poly1305.NonceSize {
			return 0, io.ErrUnexpectedEOF
		}
		pkt := make([]byte, n)
		if _, err := io.ReadFull(c.Conn, pkt); err != nil {
			return 0, err
		}
		pt, err := c.aead.Open(nil, pkt[:chacha20poly1305.NonceSize], pkt[chacha20poly1305.NonceSize:], nil)
		if err != nil {
			return 0, err
		}
		c.pending.Write(pt)
	}
	return c.pending.Read(p)
}
