package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
)

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, 404, "no such job")

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "no such job" {
		t.Errorf("error message = %q", body["error"])
	}
}

func TestWriteJSONOK(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONOK(rec, map[string]int{"count": 3})
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMockHTTPClient_QueuedResponses(t *testing.T) {
	m := NewMockHTTPClient()
	m.AddResponse(200, `{"status":"running"}`)
	m.AddErrorResponse(errors.New("connection refused"))

	resp, err := m.Get("http://example.test/api/tfr/abc")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != `{"status":"running"}` {
		t.Errorf("body = %s", body)
	}

	if _, err := m.Get("http://example.test/api/tfr/abc"); err == nil {
		t.Error("expected queued transport error")
	}

	// Exhausted queue answers 200/empty.
	resp, err = m.Get("http://example.test/api/tfr/abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("fallback status = %d, want 200", resp.StatusCode)
	}

	if m.RequestCount() != 3 {
		t.Errorf("request count = %d, want 3", m.RequestCount())
	}
}
