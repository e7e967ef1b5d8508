package auth_test

import (
	"bufio"
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api/auth"
)

func TestGenerateKey(t *testing.T) {
	key, err := auth.GenerateKey()
	assert.NoError(t, err)
	assert.Regexp(t, "^[0-9A-Za-z]{16}$", key)
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "simple", password: "1"},
		{name: "long", password: "dkfghdfg90d78h350ß8dgfjkdfg#---23489dfg!!!@!@#$$%&/()="},
		{name: "empty", password: "", wantErr: auth.ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1, err := auth.DeriveKey(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, k1, 32)
			k2, err := auth.DeriveKey(tt.password)
			require.NoError(t, err)
			assert.Equal(t, k1, k2)
		})
	}

	a, _ := auth.DeriveKey("a")
	b, _ := auth.DeriveKey("b")
	assert.NotEqual(t, a, b)
}

func TestDeriveSessionKey(t *testing.T) {
	key := bytes.Repeat([]byte{1}, 32)
	sn := bytes.Repeat([]byte{2}, 32)
	cn := bytes.Repeat([]byte{3}, 32)

	s1 := auth.DeriveSessionKey(key, sn, cn)
	assert.Len(t, s1, 32)
	assert.Equal(t, s1, auth.DeriveSessionKey(key, sn, cn))
	cn[0] = 9
	assert.NotEqual(t, s1, auth.DeriveSessionKey(key, sn, cn))
}

func TestHandshake(t *testing.T) {
	good, err := auth.DeriveKey("test123")
	require.NoError(t, err)
	bad, err := auth.DeriveKey("wrongpass")
	require.NoError(t, err)

	tests := []struct {
		name      string
		clientKey []byte
		wantErr   bool
	}{
		{name: "matching keys", clientKey: good},
		{name: "wrong password", clientKey: bad, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			type result struct {
				cn, sn []byte
				err    error
			}
			srvDone := make(chan result, 1)
			go func() {
				r := bufio.NewReader(server)
				ok, err := auth.IsAuthHandshake(r)
				if err != nil || !ok {
					srvDone <- result{err: err}
					return
				}
				cn, sn, err := auth.ServerHandshake(r, server, good)
				if err != nil {
					// mimic the API server: answer with the problem line and hang up
					_, _ = server.Write([]byte(`{"status":401,"title":"Unauthorized","detail":"invalid password"}` + "\n"))
					_ = server.Close()
				}
				srvDone <- result{cn, sn, err}
			}()

			cn, sn, err := auth.ClientHandshake(bufio.NewReader(client), client, tt.clientKey)
			srv := <-srvDone
			if tt.wantErr {
				require.Error(t, err)
				var apiErr apitypes.ApiError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, 401, apiErr.Status)
				assert.Error(t, srv.err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, srv.err)
			assert.Equal(t, srv.cn, cn)
			assert.Equal(t, srv.sn, sn)
		})
	}
}

func TestIsAuthHandshake(t *testing.T) {
	ok, err := auth.IsAuthHandshake(bufio.NewReader(bytes.NewBufferString(auth.HandshakeMagic)))
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.IsAuthHandshake(bufio.NewReader(bytes.NewBufferString("ping\x00")))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = auth.IsAuthHandshake(bufio.NewReader(bytes.NewBufferString("eG")))
	assert.Error(t, err)
}

func TestConnRoundTrip(t *testing.T) {
	key, err := auth.DeriveKey("pw")
	require.NoError(t, err)
	other, err := auth.DeriveKey("other")
	require.NoError(t, err)

	tests := []struct {
		name    string
		readKey []byte
		wantErr bool
	}{
		{name: "same key", readKey: key},
		{name: "different key", readKey: other, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := net.Pipe()
			defer a.Close()
			defer b.Close()

			wa, err := auth.WrapConn(a, key)
			require.NoError(t, err)
			wb, err := auth.WrapConn(b, tt.readKey)
			require.NoError(t, err)

			go func() { _, _ = wa.Write([]byte("vehicle/state\x00")) }()

			buf := make([]byte, 64)
			n, err := wb.Read(buf)
			if tt.wantErr {
				assert.ErrorContains(t, err, "message authentication failed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "vehicle/state\x00", string(buf[:n]))
		})
	}

	_, err = auth.WrapConn(nil, []byte{1, 2, 3})
	assert.ErrorContains(t, err, "bad key length")
}
