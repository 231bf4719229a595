package server_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestCors(t *testing.T) {
	//Preflight request for a POST is like this:

	s, _ := NewFakeServerWithFakeDAO()

	origin := "https://proxier:4430"
	req := newRequest(t, "OPTIONS", "/rules", nil)
	//The whole point is to reflect back these headers:
	headers := "content-type, x-requested-with"
	method := "POST"
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	req.Header.Set("Access-Control-Request-Headers", headers)

	res1 := doRequest(s, req)
	if res1.Code != 204 {
		t.Errorf("Unexpected status %d for preflight", res1.Code)
		t.FailNow()
	}
	// We are expecting simple reflection right now:
	if res1.Header().Get("Access-Control-Allow-Origin") != origin {
		t.Errorf("Origin mismatch: %s vs %s", origin, res1.Header().Get("Access-Control-Allow-Origin"))
		t.FailNow()
	}
	if !strings.Contains(res1.Header().Get("Access-Control-Allow-Methods"), method) {
		t.Errorf("method mismatch: %s vs %s", method, res1.Header().Get("Access-Control-Allow-Methods"))
		t.FailNow()
	}
	if !strings.Contains(res1.Header().Get("Access-Control-Allow-Headers"), headers) {
		t.Errorf("header mismatch: %s vs %s", headers, res1.Header().Get("Access-Control-Allow-Headers"))
		t.FailNow()
	}

	// Also check that normal methods get origin checks:
	// Make an arbitrary request, where we set origin and get it reflected back as allowed
	req = newRequest(t, "GET", "/rules", nil)
	req.Header.Set("Origin", origin)
	res2 := doRequest(s, req)
	if res2.Code != http.StatusOK {
		t.Errorf("Unexpected status %d for listing", res2.Code)
		t.FailNow()
	}
	// We are expecting simple reflection right now:
	if res2.Header().Get("Access-Control-Allow-Origin") != origin {
		t.Errorf("Origin mismatch: %s vs %s", origin, res2.Header().Get("Access-Control-Allow-Origin"))
		t.FailNow()
	}
}

func TestCorsPreflightRequiresOrigin(t *testing.T) {

	s, _ := NewFakeServerWithFakeDAO()

	req := newRequest(t, "OPTIONS", "/rules", nil)
	res := doRequest(s, req)
	if res.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for preflight without origin, got %d", res.Code)
	}
}
