package spectral

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the job lifecycle state. Completed and StatusError are terminal:
// once either is reached no further updates are applied.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CancelMessage is the error text a cancelled job carries, distinguishable
// from server-side computation failures.
const CancelMessage = "job cancelled by user"

// ErrJobNotFound is returned for unknown or uncancellable job IDs.
var ErrJobNotFound = errors.New("spectral: job not found")

// Job is one spectral computation's mutable state. All mutation goes through
// the Manager; snapshots are taken under its lock.
type Job struct {
	ID        string    `json:"job_id"`
	Status    Status    `json:"status"`
	Progress  float64   `json:"progress"`
	Err       string    `json:"error,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	cancel context.CancelFunc
}

// Computer performs the spectral transform. Implementations report progress
// through report (monotonically, in [0,1]) and honour ctx cancellation at
// batch boundaries.
type Computer interface {
	Compute(ctx context.Context, p Params, report func(float64)) (*Result, error)
}

// Recorder receives job lifecycle transitions for persistence. Implemented
// by the db package; a nil Recorder disables auditing.
type Recorder interface {
	RecordJob(id string, status string, progress float64, errMsg string)
}

// Manager coordinates spectral job lifecycles. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	computer Computer
	recorder Recorder
}

// NewManager creates a manager that runs submissions on the given computer.
func NewManager(computer Computer, recorder Recorder) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		computer: computer,
		recorder: recorder,
	}
}

// Submit validates params, creates a pending job and starts the computation
// in the background. The job ID is returned immediately; validation failures
// create no job and start no work.
func (m *Manager) Submit(p Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	// Short IDs read better in status views and logs.
	id := uuid.New().String()[:8]
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	job := &Job{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		cancel:    cancel,
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()
	m.record(id, StatusPending, 0, "")

	go m.run(ctx, id, p)

	log.Printf("[spectral] submitted job %s: channels=%d band=%g-%gHz mode=%s",
		id, len(p.Channels), p.FMin, p.FMax, p.RenderMode)
	return id, nil
}

// Get returns a snapshot of the job, or ErrJobNotFound.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// Cancel forces a pending or running job to the terminal error state with
// CancelMessage and signals the computer to stop. Cancelling a terminal or
// unknown job returns ErrJobNotFound. The local transition is immediate and
// independent of whether the remote computation aborts promptly.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok || job.Status.Terminal() {
		m.mu.Unlock()
		return ErrJobNotFound
	}
	job.Status = StatusError
	job.Err = CancelMessage
	job.Progress = 1.0
	job.UpdatedAt = time.Now()
	cancel := job.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.record(id, StatusError, 1.0, CancelMessage)
	log.Printf("[spectral] job %s cancelled", id)
	return nil
}

// run executes the computation and applies its outcome, unless the job
// reached a terminal state (cancellation) in the meantime.
func (m *Manager) run(ctx context.Context, id string, p Params) {
	m.update(id, StatusRunning, 0.05, "", nil)

	report := func(progress float64) {
		m.update(id, StatusRunning, progress, "", nil)
	}

	result, err := m.computer.Compute(ctx, p, report)

	if err == nil && result != nil && p.RenderMode == RenderImage {
		report(0.85)
		err = renderImages(ctx, result, p, report)
	}

	switch {
	case ctx.Err() != nil:
		// Cancelled: the terminal state was already applied by Cancel.
	case err != nil:
		m.update(id, StatusError, 1.0, err.Error(), nil)
		log.Printf("[spectral] job %s failed: %v", id, err)
	default:
		m.update(id, StatusCompleted, 1.0, "", result)
		log.Printf("[spectral] job %s completed", id)
	}
}

// update applies a state change unless the job is already terminal.
func (m *Manager) update(id string, status Status, progress float64, errMsg string, result *Result) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok || job.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	job.Status = status
	job.Progress = progress
	job.UpdatedAt = time.Now()
	if errMsg != "" {
		job.Err = errMsg
	}
	if result != nil {
		job.Result = result
	}
	m.mu.Unlock()

	m.record(id, status, progress, errMsg)
}

func (m *Manager) record(id string, status Status, progress float64, errMsg string) {
	if m.recorder != nil {
		m.recorder.RecordJob(id, string(status), progress, errMsg)
	}
}
