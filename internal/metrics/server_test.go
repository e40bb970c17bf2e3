package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestServer_Handler(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	cfg.ApplyDefaults()

	BlocksProcessedInc()
	CheckpointHeightSet(42)
	ListenerStateSet("listening", []string{"idle", "listening"})

	srv := httptest.NewServer(NewServer(cfg, logger.NewNopLogger()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "rwaindexer_checkpoint_height 42")
	require.Contains(t, string(body), `rwaindexer_listener_state{state="listening"} 1`)
	require.Contains(t, string(body), `rwaindexer_listener_state{state="idle"} 0`)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_Disabled(t *testing.T) {
	s := NewServer(&config.MetricsConfig{}, logger.NewNopLogger())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestServer_Run(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true, ListenAddress: "127.0.0.1:0"}
	cfg.ApplyDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(cfg, logger.NewNopLogger()).Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
