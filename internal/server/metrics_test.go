package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// newMetricsTestServer builds a fully routed Server backed by a fresh isolated
// registry so tests do not pollute prometheus.DefaultRegisterer.
func newMetricsTestServer(t *testing.T, q querier) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := newServer(q, &Config{
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		MetricsRegistry: reg,
		MetricsGatherer: reg,
	})
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return s, reg
}

// counterValue gathers reg and returns the value of the named counter whose
// labels are a superset of want, or -1 when no such series exists.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func Test_Metrics_EndpointReturns200(t *testing.T) {
	t.Parallel()
	s, _ := newMetricsTestServer(t, &fakeQuerier{})

	srv := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/metrics", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("want 200, got %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
}

func Test_Metrics_QueryCounterIncremented(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t, &fakeQuerier{answer: "hi", sessionID: "s"})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"hi"}`))
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("query request failed: %d", w.Code)
	}

	if v := counterValue(t, reg, "lectern_query_requests_total", map[string]string{"outcome": "ok"}); v != 1 {
		t.Errorf("lectern_query_requests_total{outcome=\"ok\"} = %v, want 1", v)
	}
}

func Test_Metrics_QueryErrorOutcome(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t, &fakeQuerier{err: errors.New("model unavailable")})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"query":"hi"}`))
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}

	if v := counterValue(t, reg, "lectern_query_requests_total", map[string]string{"outcome": "error"}); v != 1 {
		t.Errorf("lectern_query_requests_total{outcome=\"error\"} = %v, want 1", v)
	}
}

func Test_Metrics_QueryActiveGauge(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t, &fakeQuerier{})

	s.metrics.queryActive.Inc()
	s.metrics.queryActive.Inc()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "lectern_query_active" {
			v := mf.GetMetric()[0].GetGauge().GetValue()
			if v != 2 {
				t.Errorf("want query_active=2, got %v", v)
			}
			return
		}
	}
	t.Error("lectern_query_active not found in gathered metrics")
}

func Test_Metrics_HTTPRequestLabels(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t, &fakeQuerier{})

	// A malformed body exercises the 400 path through the instrument wrapper.
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`not-json`))
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}

	want := map[string]string{"method": "POST", "handler": "query", "code": "400"}
	if v := counterValue(t, reg, "lectern_http_requests_total", want); v != 1 {
		t.Errorf("lectern_http_requests_total%v = %v, want 1", want, v)
	}
}
