package livedash

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestObserveFetch(t *testing.T) {
	inst := NewInstruments()
	inst.observeFetch(fetchLatest, time.Now(), nil)
	inst.observeFetch(fetchLatest, time.Now(), errors.New("boom"))
	inst.observeFetch(fetchHistory, time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(inst.Fetches.WithLabelValues(fetchLatest, resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(inst.Fetches.WithLabelValues(fetchLatest, resultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(inst.Fetches.WithLabelValues(fetchHistory, resultOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(inst.FetchDuration))
}

func TestRouter(t *testing.T) {
	inst := NewInstruments()
	inst.Charts.Set(3)
	ts := httptest.NewServer(inst.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "livedash_charts 3")

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Post(ts.URL+"/metrics", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeStopsWithContext(t *testing.T) {
	inst := NewInstruments()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- inst.Serve(ctx, "127.0.0.1:0", zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
