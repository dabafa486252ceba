package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedListener hands out a pre-opened listener.
type fixedListener struct {
	l   net.Listener
	err error
}

func (f fixedListener) Listen(string, string) (net.Listener, error) {
	return f.l, f.err
}

func TestHTTPServer_StartStop(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}), l.Addr().String())
	assert.Equal(t, l.Addr().String(), s.Address())

	done := make(chan error, 1)
	go func() { done <- s.Start(fixedListener{l: l}) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + s.Address())
		return err == nil
	}, time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-done)
}

func TestHTTPServer_ListenError(t *testing.T) {
	s := NewHTTPServer(http.NotFoundHandler(), ":0")
	err := s.Start(fixedListener{err: errors.New("address in use")})
	assert.ErrorContains(t, err, "failed to listen")
}
