package spectral

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingComputer parks until released, so tests can observe the running
// state and exercise cancellation.
type blockingComputer struct {
	started     chan struct{}
	startedOnce sync.Once
	release     chan struct{}
	result      *Result
	err         error
}

func newBlockingComputer() *blockingComputer {
	return &blockingComputer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  &Result{Mode: RenderData, TimesMs: []float64{0}, Freqs: []float64{1}, Power: [][]float64{{0}}},
	}
}

func (c *blockingComputer) Compute(ctx context.Context, p Params, report func(float64)) (*Result, error) {
	c.startedOnce.Do(func() { close(c.started) })
	report(0.5)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.release:
	}
	return c.result, c.err
}

func validParams() Params {
	return Params{Channels: []string{"Cz"}, FMin: 1, FMax: 40}
}

func waitForStatus(t *testing.T, m *Manager, id string, want Status) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := m.Get(id)
	t.Fatalf("job never reached %s, last state %s", want, job.Status)
	return Job{}
}

func TestSubmit_ValidationFailureCreatesNoJob(t *testing.T) {
	m := NewManager(newBlockingComputer(), nil)

	tests := []struct {
		name string
		p    Params
	}{
		{"no channels", Params{FMin: 1, FMax: 40}},
		{"inverted band", Params{Channels: []string{"Cz"}, FMin: 40, FMax: 1}},
		{"bad render mode", Params{Channels: []string{"Cz"}, FMin: 1, FMax: 40, RenderMode: "svg"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.Submit(tc.p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSubmit_LifecycleToCompleted(t *testing.T) {
	comp := newBlockingComputer()
	m := NewManager(comp, nil)

	id, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 8 {
		t.Errorf("job id %q should be 8 chars", id)
	}

	<-comp.started
	job := waitForStatus(t, m, id, StatusRunning)
	if job.Progress < 0.05 {
		t.Errorf("running job progress = %f, want >= 0.05", job.Progress)
	}

	close(comp.release)
	job = waitForStatus(t, m, id, StatusCompleted)
	if job.Progress != 1.0 {
		t.Errorf("completed progress = %f, want 1.0", job.Progress)
	}
	if job.Result == nil {
		t.Error("completed job should carry a result")
	}
}

func TestSubmit_DistinctIDs(t *testing.T) {
	comp := newBlockingComputer()
	m := NewManager(comp, nil)
	defer close(comp.release)

	a, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	// Second submission reuses the same blocked computer; only IDs matter.
	b, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("duplicate job IDs: %s", a)
	}
}

func TestCancel_FromRunning(t *testing.T) {
	comp := newBlockingComputer()
	m := NewManager(comp, nil)

	id, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	<-comp.started
	waitForStatus(t, m, id, StatusRunning)

	if err := m.Cancel(id); err != nil {
		t.Fatal(err)
	}

	job, _ := m.Get(id)
	if job.Status != StatusError {
		t.Errorf("cancelled job status = %s, want error", job.Status)
	}
	if job.Err != CancelMessage {
		t.Errorf("cancelled job message = %q, want %q", job.Err, CancelMessage)
	}
	if job.Progress != 1.0 {
		t.Errorf("cancelled job progress = %f, want 1.0", job.Progress)
	}
}

func TestCancel_TerminalStateFrozen(t *testing.T) {
	comp := newBlockingComputer()
	m := NewManager(comp, nil)

	id, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	<-comp.started
	if err := m.Cancel(id); err != nil {
		t.Fatal(err)
	}

	// Let the computer finish after cancellation; its outcome must not
	// overwrite the terminal state.
	close(comp.release)
	time.Sleep(50 * time.Millisecond)

	job, _ := m.Get(id)
	if job.Status != StatusError || job.Err != CancelMessage {
		t.Errorf("terminal state mutated after cancel: %+v", job)
	}

	if err := m.Cancel(id); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("cancelling a terminal job should fail, got %v", err)
	}
}

func TestComputerError_Surfaced(t *testing.T) {
	comp := newBlockingComputer()
	comp.result = nil
	comp.err = errors.New("epochs required before time-frequency analysis")
	m := NewManager(comp, nil)

	id, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	<-comp.started
	close(comp.release)

	job := waitForStatus(t, m, id, StatusError)
	if job.Err != comp.err.Error() {
		t.Errorf("error message %q not passed through verbatim", job.Err)
	}
}

func TestGet_UnknownJob(t *testing.T) {
	m := NewManager(newBlockingComputer(), nil)
	if _, err := m.Get("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

// countingRecorder verifies lifecycle transitions reach the recorder.
type countingRecorder struct {
	mu     sync.Mutex
	states []string
}

func (r *countingRecorder) RecordJob(id, status string, progress float64, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, status)
}

func TestRecorder_SeesTransitions(t *testing.T) {
	comp := newBlockingComputer()
	rec := &countingRecorder{}
	m := NewManager(comp, rec)

	id, err := m.Submit(validParams())
	if err != nil {
		t.Fatal(err)
	}
	<-comp.started
	close(comp.release)
	waitForStatus(t, m, id, StatusCompleted)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.states) == 0 || rec.states[0] != "pending" {
		t.Fatalf("recorder should see pending first, got %v", rec.states)
	}
	if rec.states[len(rec.states)-1] != "completed" {
		t.Errorf("recorder should see completed last, got %v", rec.states)
	}
}
