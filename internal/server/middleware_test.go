package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveRoute(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w
}

// TestCORS_Preflight verifies that an OPTIONS preflight on an API route gets a
// 204 with the CORS headers instead of the mux's 405.
func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeQuerier{})
	w := serveRoute(t, s, http.MethodOptions, "/api/query", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Allow-Origin = %q, want *", origin)
	}
	if methods := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "POST") {
		t.Errorf("Allow-Methods = %q, want POST listed", methods)
	}
	if headers := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "Content-Type") {
		t.Errorf("Allow-Headers = %q, want Content-Type listed", headers)
	}
}

// TestCORS_HeadersOnResponse verifies ordinary API responses also carry the
// allow-origin header so browser clients can read them.
func TestCORS_HeadersOnResponse(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeQuerier{answer: "hi", sessionID: "s"})
	w := serveRoute(t, s, http.MethodPost, "/api/query", `{"query":"hi"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Allow-Origin = %q, want *", origin)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeQuerier{})
	w := serveRoute(t, s, http.MethodGet, "/api/query", "")

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/query: expected 405, got %d", w.Code)
	}
}

func TestRoutes_Wiring(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeQuerier{})

	for _, tt := range []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/ready", http.StatusOK},
		{http.MethodGet, "/api/courses", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	} {
		w := serveRoute(t, s, tt.method, tt.target, "")
		if w.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.target, tt.want, w.Code)
		}
	}
}
