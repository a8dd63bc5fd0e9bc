package spectral

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/neuroviz-data/scalpview/internal/httputil"
)

// DefaultPollInterval is the status poll cadence for an in-flight job.
const DefaultPollInterval = 1200 * time.Millisecond

// JobView is the wire shape of a job status response as seen by the poller.
type JobView struct {
	ID       string  `json:"job_id"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Err      string  `json:"error,omitempty"`
	Result   *Result `json:"result,omitempty"`
}

// Poller watches one job over HTTP until it reaches a terminal state. Each
// request carries a monotonic counter; a response that raced in late (tagged
// below the highest applied counter) is discarded, so a slow poll can never
// overwrite a newer status.
type Poller struct {
	client    httputil.HTTPClient
	statusURL string
	interval  time.Duration
	onUpdate  func(JobView)

	mu         sync.Mutex
	nextSeq    uint64
	appliedSeq uint64
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewPoller creates a poller for the job status endpoint. onUpdate is called
// for every applied response, in order, and a final time with the terminal
// state.
func NewPoller(client httputil.HTTPClient, statusURL string, interval time.Duration, onUpdate func(JobView)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:    client,
		statusURL: statusURL,
		interval:  interval,
		onUpdate:  onUpdate,
		stopCh:    make(chan struct{}),
	}
}

// Run polls until the job is terminal or Stop is called. It blocks; run it
// in its own goroutine when the caller must stay responsive. Stopping early
// abandons visibility into the job without affecting it server-side.
func (p *Poller) Run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		view, err := p.poll()
		if err != nil {
			log.Printf("[spectral] poll %s: %v", p.statusURL, err)
		} else if view != nil {
			p.onUpdate(*view)
			if view.Status.Terminal() {
				return
			}
		}

		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the polling loop. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// poll issues one status request and applies the counter protocol. A nil
// view with nil error means the response was stale and dropped.
func (p *Poller) poll() (*JobView, error) {
	p.mu.Lock()
	seq := p.nextSeq
	p.nextSeq++
	p.mu.Unlock()

	resp, err := p.client.Get(p.statusURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var view JobView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq < p.appliedSeq {
		// A newer response has already been applied.
		return nil, nil
	}
	p.appliedSeq = seq
	return &view, nil
}
