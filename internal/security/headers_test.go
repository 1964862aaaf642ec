package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveHeaders(t *testing.T, h Headers, useTLS bool) http.Header {
	t.Helper()
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/analysis/overview", nil)
	if useTLS {
		req = httptest.NewRequest(http.MethodGet, "https://example.com/api/v1/analysis/overview", nil)
		req.TLS = &tls.ConnectionState{}
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Result().Header
}

func TestHeadersMiddlewareSetsSecurityHeaders(t *testing.T) {
	got := serveHeaders(t, Headers{Enable: true, EnableHSTS: true, HSTSIncludeSubdomains: true}, true)

	if v := got.Get("X-Content-Type-Options"); v != "nosniff" {
		t.Fatalf("expected nosniff header, got %q", v)
	}
	if v := got.Get("X-Frame-Options"); v != "DENY" {
		t.Fatalf("expected frame denial, got %q", v)
	}
	hsts := got.Get("Strict-Transport-Security")
	if hsts != "max-age=31536000; includeSubDomains" {
		t.Fatalf("unexpected hsts value %q", hsts)
	}
}

func TestHeadersMiddlewareNoHSTSWithoutTLS(t *testing.T) {
	got := serveHeaders(t, Headers{Enable: true, EnableHSTS: true}, false)

	if got.Get("X-Content-Type-Options") == "" {
		t.Fatal("expected security headers on plain http")
	}
	if got.Get("Strict-Transport-Security") != "" {
		t.Fatal("expected no hsts header without tls")
	}
}

func TestHeadersMiddlewareDisabled(t *testing.T) {
	got := serveHeaders(t, Headers{Enable: false, EnableHSTS: true}, false)

	if got.Get("X-Content-Type-Options") != "" {
		t.Fatal("expected no security headers when disabled")
	}
}
