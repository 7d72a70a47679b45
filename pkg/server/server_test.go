package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trackwaste/publicstats/pkg/snapshot"
)

func ptr[T any](v T) *T { return &v }

type fakeStore struct {
	computation *snapshot.Computation
	metrics     map[string]snapshot.MetricRow
	pingErr     error
}

func (f *fakeStore) Computation(ctx context.Context, year int) (*snapshot.Computation, error) {
	if f.computation == nil || f.computation.Year != year {
		return nil, snapshot.ErrNotFound
	}
	return f.computation, nil
}

func (f *fakeStore) LayerMetrics(ctx context.Context, layer snapshot.Layer, year int, rubrique, code string) (map[string]snapshot.MetricRow, error) {
	out := map[string]snapshot.MetricRow{}
	for key, row := range f.metrics {
		if code == "" || key == code {
			out[key] = row
		}
	}
	return out, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func newTestServer(t *testing.T, store *fakeStore, ready func() bool) *httptest.Server {
	t.Helper()
	srv, err := NewServer(Config{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:   store,
		Ready:   ready,
		Version: "test",
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestPublicStats_Server_Stats(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		computation: &snapshot.Computation{
			Year:                    2023,
			TotalBsCreated:          42,
			QuantityProcessedWeekly: json.RawMessage(`{"data":[]}`),
		},
	}
	ts := newTestServer(t, store, nil)

	t.Run("known year", func(t *testing.T) {
		t.Parallel()
		status, body := get(t, ts, "/v1/stats/2023")
		require.Equal(t, http.StatusOK, status)

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		require.Equal(t, float64(42), got["total_bs_created"])
		require.Equal(t, map[string]any{"data": []any{}}, got["quantity_processed_weekly"],
			"figures are embedded as json, not re-encoded strings")
	})

	t.Run("missing year", func(t *testing.T) {
		t.Parallel()
		status, _ := get(t, ts, "/v1/stats/2019")
		require.Equal(t, http.StatusNotFound, status)
	})

	t.Run("malformed year", func(t *testing.T) {
		t.Parallel()
		status, _ := get(t, ts, "/v1/stats/abcd")
		require.Equal(t, http.StatusBadRequest, status)
	})
}

func TestPublicStats_Server_LayerMetrics(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		metrics: map[string]snapshot.MetricRow{
			"A1": {QuantiteAutorisee: ptr(1000.0), TauxConsommation: ptr(0.25), NombreInstallations: 1},
			"B2": {NombreInstallations: 1},
		},
	}
	ts := newTestServer(t, store, nil)

	t.Run("all installations", func(t *testing.T) {
		t.Parallel()
		status, body := get(t, ts, "/v1/icpe/installations/2023/2760-1")
		require.Equal(t, http.StatusOK, status)

		var got map[string]snapshot.MetricRow
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 2)
		require.Equal(t, 0.25, *got["A1"].TauxConsommation)
	})

	t.Run("single code", func(t *testing.T) {
		t.Parallel()
		status, body := get(t, ts, "/v1/icpe/installations/2023/2760-1/A1")
		require.Equal(t, http.StatusOK, status)

		var got map[string]snapshot.MetricRow
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 1)
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()
		status, _ := get(t, ts, "/v1/icpe/installations/2023/2760-1/ZZ")
		require.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown layer", func(t *testing.T) {
		t.Parallel()
		status, _ := get(t, ts, "/v1/icpe/communes/2023/2760-1")
		require.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown rubrique", func(t *testing.T) {
		t.Parallel()
		status, _ := get(t, ts, "/v1/icpe/installations/2023/9999")
		require.Equal(t, http.StatusNotFound, status)
	})
}

func TestPublicStats_Server_Readiness(t *testing.T) {
	t.Parallel()

	t.Run("not ready before first build", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, &fakeStore{}, func() bool { return false })
		status, _ := get(t, ts, "/readyz")
		require.Equal(t, http.StatusServiceUnavailable, status)
	})

	t.Run("ready after first build", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, &fakeStore{}, func() bool { return true })
		status, _ := get(t, ts, "/readyz")
		require.Equal(t, http.StatusOK, status)
	})

	t.Run("healthz always up", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t, &fakeStore{}, func() bool { return false })
		status, _ := get(t, ts, "/healthz")
		require.Equal(t, http.StatusOK, status)
	})
}
