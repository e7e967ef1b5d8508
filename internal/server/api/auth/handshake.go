package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Alia5/egodrive/apitypes"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
)

// Handshake wire format:
//
//	client: magic[5] clientNonce[32] hmac(key, authContext|clientNonce)[32]
//	server: "OK\x00" serverNonce[32]   or a problem+json line on failure
const (
	HandshakeMagic = "eGD1\x00"
	NonceSize      = 32
	authContext    = "egodrive-auth-v1"
	okPrefix       = "OK\x00"
)

// IsAuthHandshake reports whether the next bytes in r are the handshake magic.
func IsAuthHandshake(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(HandshakeMagic))
	if err != nil {
		return false, err
	}
	return string(b) == HandshakeMagic, nil
}

func clientMAC(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

// ClientHandshake proves knowledge of key to the server and returns both nonces.
func ClientHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if r == nil || w == nil {
		return nil, nil, fmt.Errorf("handshake: nil reader or writer")
	}
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	clientNonce = make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, nil, fmt.Errorf("generate client nonce: %w", err)
	}

	msg := append([]byte(HandshakeMagic), clientNonce...)
	msg = append(msg, clientMAC(key, clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, nil, fmt.Errorf("write handshake: %w", err)
	}

	prefix := make([]byte, len(okPrefix))
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(prefix) != okPrefix {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSuffix(string(append(prefix, rest...)), "\n")
		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
			return nil, nil, apiErr
		}
		return nil, nil, fmt.Errorf("invalid handshake response from server: %s", line)
	}

	serverNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, nil, fmt.Errorf("read server nonce: %w", err)
	}
	return clientNonce, serverNonce, nil
}

// ServerHandshake verifies a client handshake against key and answers it.
// The magic must still be unread in r.
func ServerHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	if _, err := r.Discard(len(HandshakeMagic)); err != nil {
		return nil, nil, fmt.Errorf("discard handshake magic: %w", err)
	}

	clientNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, clientNonce); err != nil {
		return nil, nil, fmt.Errorf("read client nonce: %w", err)
	}
	clientAuth := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, clientAuth); err != nil {
		return nil, nil, fmt.Errorf("read client auth: %w", err)
	}
	if !hmac.Equal(clientAuth, clientMAC(key, clientNonce)) {
		return nil, nil, apierror.ErrUnauthorized("invalid password")
	}

	if w == nil {
		return nil, nil, fmt.Errorf("write response: nil writer")
	}
	serverNonce = make([]byte, NonceSize)
	if _, err := rand.Read(serverNonce); err != nil {
		return nil, nil, fmt.Errorf("generate server nonce: %w", err)
	}
	if _, err := w.Write(append([]byte(okPrefix), serverNonce...)); err != nil {
		return nil, nil, fmt.Errorf("write response: %w", err)
	}
	return clientNonce, serverNonce, nil
}
