package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/pkg/config"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

func testConfig(port string) *config.Config {
	return &config.Config{
		Port: port,
		Env:  "test",
		API: config.APIConfig{
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	server := New(testConfig("0"), logger.Nop(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_RunListenError(t *testing.T) {
	server := New(testConfig("-1"), logger.Nop(), http.NotFoundHandler())

	err := server.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start server")
}

func TestNew_UsesConfiguredTimeouts(t *testing.T) {
	cfg := testConfig("8089")
	cfg.API.WriteTimeout = 42 * time.Second

	server := New(cfg, logger.Nop(), http.NotFoundHandler())
	assert.Equal(t, ":8089", server.httpServer.Addr)
	assert.Equal(t, 42*time.Second, server.httpServer.WriteTimeout)
	assert.Equal(t, time.Second, server.shutdownTimeout)
}
