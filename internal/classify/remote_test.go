package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRemote_Check(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":"unsafe","confidence":87}`))
	}))
	defer srv.Close()

	res := NewRemote(srv.URL, time.Second).Check(context.Background(), "http://bit.ly/x")
	if got["url"] != "http://bit.ly/x" {
		t.Errorf("request body = %v", got)
	}
	if res.Status != "unsafe" || res.Confidence != 87 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Strategy != "remote" {
		t.Errorf("strategy = %q", res.Strategy)
	}
	if res.Safe() {
		t.Error("unsafe result reported safe")
	}
}

func TestRemote_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"status":"safe","confidence":99}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"missing confidence", http.StatusOK, `{"status":"safe"}`},
		{"missing status", http.StatusOK, `{"confidence":50}`},
		{"confidence out of range", http.StatusOK, `{"status":"safe","confidence":140}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := NewRemote(srv.URL, time.Second).Check(context.Background(), "https://example.com")
			if res.Status != StatusError || res.Confidence != 0 {
				t.Errorf("expected error result, got %+v", res)
			}
			if res.Safe() {
				t.Error("error result must not be safe")
			}
		})
	}
}

func TestRemote_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	res := NewRemote(endpoint, time.Second).Check(context.Background(), "https://example.com")
	if res.Status != StatusError || res.Confidence != 0 {
		t.Errorf("expected error result, got %+v", res)
	}
}

func TestParseWireResult_WrappedJSON(t *testing.T) {
	res := parseWireResult([]byte("Sure, here it is: {\"status\": \"Safe\", \"confidence\": 91, \"reason\": \"plain domain\"} hope that helps"))
	if res.Status != StatusSafe || res.Confidence != 91 || res.Reason != "plain domain" {
		t.Errorf("unexpected result %+v", res)
	}
}
