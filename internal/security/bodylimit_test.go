package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// serveWithLimit pushes a request through the middleware and reports the
// resulting status plus whatever the inner handler managed to read.
func serveWithLimit(t *testing.T, b BodyLimit, req *http.Request) (int, string) {
	t.Helper()
	var seen string
	handler := b.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		seen = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code, seen
}

func postReload(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/snapshot/reload", strings.NewReader(body))
}

func TestBodyLimitAllowsWithinLimit(t *testing.T) {
	code, seen := serveWithLimit(t, BodyLimit{Max: 10}, postReload("hello"))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if seen != "hello" {
		t.Fatalf("expected body to pass through, got %q", seen)
	}
}

func TestBodyLimitRejectsOversized(t *testing.T) {
	if code, _ := serveWithLimit(t, BodyLimit{Max: 5}, postReload("excessive")); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", code)
	}
}

func TestBodyLimitHonoursDeclaredLength(t *testing.T) {
	req := postReload("content")
	req.ContentLength = 100
	if code, _ := serveWithLimit(t, BodyLimit{Max: 5}, req); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for declared oversized body, got %d", code)
	}
}

func TestBodyLimitDisabled(t *testing.T) {
	big := strings.Repeat("x", 1<<12)
	code, seen := serveWithLimit(t, BodyLimit{}, postReload(big))
	if code != http.StatusOK {
		t.Fatalf("expected 200 with no limit, got %d", code)
	}
	if len(seen) != len(big) {
		t.Fatalf("expected full body through, got %d bytes", len(seen))
	}
}
