// Package spectral owns the lifecycle of long-running time-frequency
// computations: submission, progress, cancellation and result retrieval in
// either raw-array or pre-rendered-image form. The transform itself is
// delegated to a Computer; this package never blocks callers on it.
package spectral

import (
	"errors"
	"fmt"
)

// RenderMode selects the result shape negotiated at submission time.
type RenderMode string

const (
	// RenderData returns raw time/frequency/power arrays for client-side
	// heatmap rendering.
	RenderData RenderMode = "data"
	// RenderImage returns pre-rendered PNG figures and bypasses the
	// client rendering chain entirely.
	RenderImage RenderMode = "image"
)

// BaselineMode names the normalisation applied against the baseline window.
type BaselineMode string

const (
	BaselineLogRatio BaselineMode = "logratio"
	BaselineRatio    BaselineMode = "ratio"
	BaselineZScore   BaselineMode = "zscore"
	BaselinePercent  BaselineMode = "percent"
)

// UnitLabel returns the axis label for power under this baseline mode.
func (m BaselineMode) UnitLabel() string {
	switch m {
	case BaselineLogRatio:
		return "Power (dB)"
	case BaselineRatio:
		return "Power (ratio)"
	case BaselineZScore:
		return "Power (z-score)"
	case BaselinePercent:
		return "Power (%)"
	default:
		return "Power"
	}
}

// Baseline is a reference time window in seconds relative to the event.
type Baseline struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Params describes one spectral job submission.
type Params struct {
	Channels     []string     `json:"channels"`
	EventID      *int         `json:"event_id,omitempty"`
	FMin         float64      `json:"fmin"`
	FMax         float64      `json:"fmax"`
	NCycles      float64      `json:"n_cycles"`
	Baseline     *Baseline    `json:"baseline,omitempty"`
	BaselineMode BaselineMode `json:"baseline_mode"`
	Decim        int          `json:"decim"`
	RenderMode   RenderMode   `json:"render_mode"`
	VMin         *float64     `json:"vmin,omitempty"`
	VMax         *float64     `json:"vmax,omitempty"`

	// EpochWindow is the usable epoch length in seconds, used to clamp
	// NCycles so the analysis wavelet fits inside the signal.
	EpochWindow float64 `json:"epoch_window,omitempty"`
}

var errNoChannels = errors.New("no channels selected")

// Validate checks the submission and fills defaults. Validation failures are
// surfaced immediately at submit time; no job is created for them.
func (p *Params) Validate() error {
	if len(p.Channels) == 0 {
		return errNoChannels
	}
	if p.FMax <= p.FMin {
		return fmt.Errorf("fmax (%g) must be greater than fmin (%g)", p.FMax, p.FMin)
	}
	if p.FMin <= 0 {
		return fmt.Errorf("fmin must be positive, got %g", p.FMin)
	}
	if p.Decim <= 0 {
		p.Decim = 2
	}
	if p.NCycles <= 0 {
		p.NCycles = 7
	}
	if p.RenderMode == "" {
		p.RenderMode = RenderData
	}
	if p.RenderMode != RenderData && p.RenderMode != RenderImage {
		return fmt.Errorf("unknown render mode %q", p.RenderMode)
	}
	if p.BaselineMode == "" {
		p.BaselineMode = BaselineLogRatio
	}

	// The wavelet at the lowest frequency must fit in the epoch, with a
	// small safety margin. Out-of-range cycle counts are clamped, not
	// rejected, matching how the analysis treats them.
	if p.EpochWindow > 0 {
		maxCycles := p.EpochWindow * p.FMin * 0.9
		if maxCycles < 1 {
			maxCycles = 1
		}
		if p.NCycles > maxCycles {
			p.NCycles = maxCycles
		}
	}
	return nil
}

// Frequencies returns the analysis frequency grid: 1 Hz steps across
// [fmin, fmax], widened to eight points when the band is too narrow.
func (p *Params) Frequencies() []float64 {
	var freqs []float64
	for f := p.FMin; f <= p.FMax+1e-6; f++ {
		freqs = append(freqs, f)
	}
	if len(freqs) >= 2 {
		return freqs
	}
	freqs = freqs[:0]
	for i := 0; i < 8; i++ {
		freqs = append(freqs, p.FMin+(p.FMax-p.FMin)*float64(i)/7)
	}
	return freqs
}
