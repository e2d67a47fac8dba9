package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/transithub/internal/transport"
	"github.com/specialistvlad/transithub/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hub.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfig_RejectsBadPort(t *testing.T) {
	_, err := NewConfig(Config{HealthcheckPort: -2})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid healthcheck port")
}

func TestNewApp_FlagOverridesWinOverFile(t *testing.T) {
	// --- Arrange ---
	path := writeConfig(t, `
bus {
  kind = "redis"
  url  = "redis://localhost:6379/0"
}

healthcheck {
  port = 8080
}
`)

	// --- Act ---
	a, _ := SetupAppTest(t, &Config{
		ConfigPath:      path,
		LogFormat:       "text",
		HealthcheckPort: 9090,
		BusKind:         "loopback",
	})

	// --- Assert ---
	cfg := a.Config()
	assert.Equal(t, "loopback", cfg.Bus.Kind)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Bus.URL, "file value kept when no override is given")
	assert.Equal(t, 9090, cfg.Healthcheck.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestNewApp_NegativePortKeepsFileValue(t *testing.T) {
	path := writeConfig(t, `
healthcheck {
  port = 8080
}
`)

	a, _ := SetupAppTest(t, &Config{ConfigPath: path, HealthcheckPort: -1})

	assert.Equal(t, 8080, a.Config().Healthcheck.Port)
}

func TestNewApp_InvalidOverrideIsRejected(t *testing.T) {
	_, err := NewApp(&SafeBuffer{}, &Config{LogFormat: "xml", HealthcheckPort: -1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNewApp_MissingConfigFile(t *testing.T) {
	_, err := NewApp(&SafeBuffer{}, &Config{
		ConfigPath:      filepath.Join(t.TempDir(), "absent.hcl"),
		HealthcheckPort: -1,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	// --- Arrange ---
	a, _ := SetupAppTest(t, &Config{BusKind: "loopback"})
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	// --- Act ---
	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()

	// --- Assert ---
	assert.Equal(t, http.StatusOK, health.StatusCode)
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}

func TestRun_AnswersQuestionsEndToEnd(t *testing.T) {
	// --- Arrange ---
	bus := transport.NewLoopback(func(a wire.Answer) wire.Verdict {
		return wire.Verdict{Score: 100, Log: "optimal"}
	})
	a, logs := SetupAppTest(t, &Config{BusKind: "loopback"}, WithBus(bus))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	q := wire.Question{
		ID:        "e2e-1",
		RoadCount: 4,
		Edges: []wire.Road{
			{Source: 1, Destination: 2, Length: 1},
			{Source: 2, Destination: 4, Length: 1},
			{Source: 1, Destination: 3, Length: 1},
			{Source: 3, Destination: 4, Length: 1},
		},
		Origin:      1,
		Destination: 4,
	}

	// --- Act ---
	require.Eventually(t, func() bool { return bus.Publish(q) == nil }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(a.Metrics().Verdicts) == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	// --- Assert ---
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []wire.Answer{{ID: "e2e-1", Path: []int{1, 2, 4}}}, bus.Sent())
	assert.Equal(t, 100.0, testutil.ToFloat64(a.Metrics().LastScore))
	assert.Contains(t, logs.String(), "Route computed.")
}

func TestRun_DialFailureIsReturned(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{BusKind: "redis", BusURL: "not a redis url"})

	err := a.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect redis bus")
}

func TestNewLogger_Levels(t *testing.T) {
	testCases := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true},
		{level: "info", wantInfo: true},
		{level: "error"},
		{level: "", wantInfo: true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			logger := newLogger(tc.level, "text", &SafeBuffer{})

			assert.Equal(t, tc.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tc.wantInfo, logger.Enabled(context.Background(), slog.LevelInfo))
		})
	}
}
