package auth_test

import (
	"bufio"
	"crypto/hmac"
	"io"
	"net"
	"testing"

	"github.com/Alia5/joymouse/apitypes"
	"github.com/Alia5/joymouse/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	type testCase struct {
		name        string
		password    string
		expectedKey []byte
		expectedErr string
	}

	testCases := []testCase{
		{
			name:        "Normal Password",
			password:    "password123",
			expectedKey: []byte{0x94, 0x50, 0x29, 0x55, 0x1, 0xd7, 0x3, 0xf, 0x4, 0x61, 0xf, 0x81, 0x6a, 0xdf, 0x43, 0x1c, 0xaf, 0x8f, 0xc8, 0x21, 0xd4, 0xc1, 0x2f, 0x2f, 0x21, 0x2c, 0x1b, 0xf8, 0x64, 0x46, 0x9, 0x82},
		},
		{
			name:        "Simple Password",
			password:    "1",
			expectedKey: []byte{0xfe, 0xdf, 0xdf, 0x4d, 0xab, 0xd2, 0x5d, 0x9f, 0xfd, 0x97, 0x96, 0xec, 0x76, 0xd2, 0xa2, 0xec, 0x2, 0x4f, 0xbf, 0xeb, 0x17, 0x8c, 0x6, 0x13, 0xed, 0x4f, 0x10, 0x9e, 0x4d, 0xef, 0xd1, 0xd2},
		},
		{
			name:        "empty password",
			password:    "",
			expectedErr: "password cannot be empty",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := auth.DeriveKey(tc.password)
			if tc.expectedErr != "" {
				assert.EqualError(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedKey, key)
		})
	}
}

func TestDeriveSessionKeyDependsOnNonces(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	a := auth.DeriveSessionKey(key, []byte("server-a"), []byte("client"))
	b := auth.DeriveSessionKey(key, []byte("server-b"), []byte("client"))
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, auth.DeriveSessionKey(key, []byte("server-a"), []byte("client")))
}

// fakeServer plays the server half of the handshake on conn.
func fakeServer(t *testing.T, conn net.Conn, key []byte, reply func(w io.Writer, proofOK bool)) {
	t.Helper()
	go func() {
		buf := make([]byte, len(auth.HandshakeMagic)+auth.NonceSize+32)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		nonce := buf[len(auth.HandshakeMagic) : len(auth.HandshakeMagic)+auth.NonceSize]
		proof := buf[len(auth.HandshakeMagic)+auth.NonceSize:]
		reply(conn, hmac.Equal(proof, auth.ClientProof(key, nonce)))
	}()
}

func TestClientHandshake(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)
	serverNonce := make([]byte, auth.NonceSize)
	for i := range serverNonce {
		serverNonce[i] = byte(i)
	}

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	fakeServer(t, server, key, func(w io.Writer, ok bool) {
		if ok {
			_, _ = w.Write(append([]byte("OK\x00"), serverNonce...))
		}
	})

	cn, sn, err := auth.ClientHandshake(bufio.NewReader(client), client, key)
	require.NoError(t, err)
	assert.Len(t, cn, auth.NonceSize)
	assert.Equal(t, serverNonce, sn)
}

func TestClientHandshakeRejected(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)
	wrong, err := auth.DeriveKey("guess")
	require.NoError(t, err)

	client, server := net.Pipe()
	defer client.Close()
	fakeServer(t, server, key, func(w io.Writer, ok bool) {
		if !ok {
			_, _ = w.Write([]byte(`{"status":401,"title":"Unauthorized","detail":"invalid password"}` + "\n"))
		}
		_ = server.Close()
	})

	_, _, err = auth.ClientHandshake(bufio.NewReader(client), client, wrong)
	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestClientHandshakeGarbageResponse(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)

	client, server := net.Pipe()
	defer client.Close()
	fakeServer(t, server, key, func(w io.Writer, _ bool) {
		_, _ = w.Write([]byte("nope\n"))
		_ = server.Close()
	})

	_, _, err = auth.ClientHandshake(bufio.NewReader(client), client, key)
	assert.EqualError(t, err, "invalid handshake response from server: nope")
}

func TestClientHandshakeArgs(t *testing.T) {
	_, _, err := auth.ClientHandshake(nil, io.Discard, []byte("k"))
	assert.Error(t, err)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	_, _, err = auth.ClientHandshake(bufio.NewReader(client), client, nil)
	assert.EqualError(t, err, "handshake: missing key")
}

func TestConnRoundTrip(t *testing.T) {
	sessionKey := auth.DeriveSessionKey([]byte("k"), []byte("s"), []byte("c"))
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ca, err := auth.WrapConn(a, sessionKey)
	require.NoError(t, err)
	cb, err := auth.WrapConn(b, sessionKey)
	require.NoError(t, err)

	msgs := [][]byte{[]byte("bus/list"), {0x01, 0, 0, 0, 0, 0, 0, 0, 0}, []byte("bus/1/add {\"type\":\"mouse\"}")}
	go func() {
		for _, m := range msgs {
			_, _ = ca.Write(m)
		}
	}()

	for _, want := range msgs {
		got := make([]byte, len(want))
		_, err := io.ReadFull(cb, got)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestConnRejectsWrongKey(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ca, err := auth.WrapConn(a, auth.DeriveSessionKey([]byte("k1"), nil, nil))
	require.NoError(t, err)
	cb, err := auth.WrapConn(b, auth.DeriveSessionKey([]byte("k2"), nil, nil))
	require.NoError(t, err)

	go func() { _, _ = ca.Write([]byte("hello")) }()
	_, err = cb.Read(make([]byte, 5))
	assert.Error(t, err)
}

func TestWrapConnBadKey(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	_, err := auth.WrapConn(a, []byte("short"))
	assert.Error(t, err)
}
