package spectral

import (
	"testing"
	"time"

	"github.com/neuroviz-data/scalpview/internal/httputil"
)

func TestPoller_RunsUntilTerminal(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, `{"job_id":"ab12cd34","status":"running","progress":0.5}`)
	client.AddResponse(200, `{"job_id":"ab12cd34","status":"completed","progress":1.0,"result":{"render_mode":"data","times":[0],"freqs":[1],"power":[[2]],"channel_names":["Cz"]}}`)

	var updates []JobView
	p := NewPoller(client, "http://unit.test/api/tfr/ab12cd34", time.Millisecond, func(v JobView) {
		updates = append(updates, v)
	})

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop at terminal status")
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 applied updates, got %d", len(updates))
	}
	if updates[0].Status != StatusRunning || updates[0].Progress != 0.5 {
		t.Errorf("first update = %+v", updates[0])
	}
	if updates[1].Status != StatusCompleted {
		t.Errorf("second update = %+v", updates[1])
	}
	if updates[1].Result == nil || updates[1].Result.Power[0][0] != 2 {
		t.Error("terminal update should carry the populated result")
	}

	// Terminal state stops polling; no further requests are issued.
	got := client.RequestCount()
	time.Sleep(20 * time.Millisecond)
	if client.RequestCount() != got {
		t.Error("poller kept polling after terminal status")
	}
}

func TestPoller_ErrorStatusStops(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, `{"job_id":"x","status":"error","progress":1.0,"error":"job cancelled by user"}`)

	var last JobView
	p := NewPoller(client, "http://unit.test/api/tfr/x", time.Millisecond, func(v JobView) { last = v })
	p.Run()

	if last.Status != StatusError {
		t.Errorf("status = %s, want error", last.Status)
	}
	if last.Err != CancelMessage {
		t.Errorf("error = %q, want cancellation message", last.Err)
	}
}

func TestPoller_TransportErrorsAreRetried(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(500, `{"error":"boom"}`)
	client.AddResponse(200, `{"job_id":"x","status":"completed","progress":1.0}`)

	var updates int
	p := NewPoller(client, "http://unit.test/api/tfr/x", time.Millisecond, func(JobView) { updates++ })

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not recover from transport error")
	}

	if updates != 1 {
		t.Errorf("failed polls must not produce updates, got %d", updates)
	}
}

func TestPoller_StopHaltsLoop(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	// Mock returns 200 with empty body forever; decode fails, loop keeps
	// ticking until stopped.
	p := NewPoller(client, "http://unit.test/api/tfr/x", time.Millisecond, func(JobView) {})

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	p.Stop()
	p.Stop() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not halt the polling loop")
	}
}

func TestPoller_StaleResponseDiscarded(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, `{"job_id":"x","status":"running","progress":0.9}`)
	p := NewPoller(client, "http://unit.test/api/tfr/x", time.Millisecond, func(JobView) {})

	// Simulate an in-flight request that was overtaken: a later poll has
	// already applied its response when the slow one returns.
	view, err := p.poll()
	if err != nil || view == nil {
		t.Fatalf("first poll should apply, got view=%v err=%v", view, err)
	}

	p.mu.Lock()
	p.appliedSeq = 10 // a much newer response has landed meanwhile
	p.mu.Unlock()

	client.AddResponse(200, `{"job_id":"x","status":"running","progress":0.1}`)
	view, err = p.poll()
	if err != nil {
		t.Fatal(err)
	}
	if view != nil {
		t.Errorf("stale response should be discarded, got %+v", view)
	}
}
