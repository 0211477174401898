package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireInternalJobToken(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid token passes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transfers", nil)
		req.Header.Set("X-Internal-Job-Token", "secret")

		RequireInternalJobToken("secret", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transfers", nil)
		req.Header.Set("X-Internal-Job-Token", "nope")

		RequireInternalJobToken("secret", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("unconfigured token disables the route", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transfers", nil)
		req.Header.Set("X-Internal-Job-Token", "anything")

		RequireInternalJobToken("", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed origin gets headers", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/versions/resolve", nil)
		req.Header.Set("Origin", "https://ops.example.com")

		CORS([]string{"https://ops.example.com"}, next).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
			t.Fatalf("allow-origin: got=%q", got)
		}
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/versions/resolve", nil)
		req.Header.Set("Origin", "https://evil.example.com")

		CORS([]string{"https://ops.example.com"}, next).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow-origin: got=%q want empty", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/transfers", nil)
		req.Header.Set("Origin", "https://ops.example.com")

		CORS([]string{"*"}, next).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusNoContent)
		}
	})
}
