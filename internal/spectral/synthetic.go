package spectral

import (
	"context"
	"math"
	"math/rand"
)

// SyntheticComputer produces deterministic, band-limited power surfaces with
// an event-locked burst, standing in for a real wavelet transform in demos
// and tests. Batch structure and progress checkpoints mirror the production
// pipeline so the controller sees realistic lifecycle behaviour.
type SyntheticComputer struct {
	// EpochCount controls how many simulated epochs are averaged; more
	// epochs mean more progress checkpoints.
	EpochCount int
	// TimeStepMs is the decimation-adjusted output sample interval.
	TimeStepMs float64
	// Seed fixes the noise generator so runs are reproducible.
	Seed int64
}

// Compute generates the synthetic surface. Cancellation is honoured between
// epoch batches, never mid-batch.
func (s *SyntheticComputer) Compute(ctx context.Context, p Params, report func(float64)) (*Result, error) {
	epochs := s.EpochCount
	if epochs <= 0 {
		epochs = 20
	}
	stepMs := s.TimeStepMs
	if stepMs <= 0 {
		stepMs = 4
	}
	stepMs *= float64(p.Decim)

	freqs := p.Frequencies()

	window := p.EpochWindow
	if window <= 0 {
		window = 1.0
	}
	times := make([]float64, 0, int(window*1000/stepMs)+1)
	for tm := -200.0; tm <= window*1000-200; tm += stepMs {
		times = append(times, tm)
	}

	report(0.15)

	rng := rand.New(rand.NewSource(s.Seed))
	sum := make([][][]float64, len(p.Channels))
	for ci := range sum {
		sum[ci] = makeGrid(len(freqs), len(times))
	}

	batch := 5
	if epochs < 10 {
		batch = epochs
	}

	done := 0
	for start := 0; start < epochs; start += batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + batch
		if end > epochs {
			end = epochs
		}
		for e := start; e < end; e++ {
			for ci := range p.Channels {
				addEpochPower(sum[ci], freqs, times, ci, rng)
			}
		}
		done += end - start
		report(0.15 + 0.6*float64(done)/float64(epochs))
	}

	report(0.8)

	byChannel := make([][][]float64, len(p.Channels))
	for ci := range byChannel {
		byChannel[ci] = makeGrid(len(freqs), len(times))
		for fi := range freqs {
			for ti := range times {
				byChannel[ci][fi][ti] = sum[ci][fi][ti] / float64(epochs)
			}
		}
	}

	avg := makeGrid(len(freqs), len(times))
	for fi := range freqs {
		for ti := range times {
			var acc float64
			for ci := range byChannel {
				acc += byChannel[ci][fi][ti]
			}
			avg[fi][ti] = acc / float64(len(byChannel))
		}
	}

	if p.Baseline != nil {
		applyBaseline(avg, times, *p.Baseline, p.BaselineMode)
		for ci := range byChannel {
			applyBaseline(byChannel[ci], times, *p.Baseline, p.BaselineMode)
		}
	}

	return &Result{
		Mode:           RenderData,
		TimesMs:        times,
		Freqs:          freqs,
		Power:          avg,
		PowerByChannel: byChannel,
		ChannelNames:   append([]string(nil), p.Channels...),
	}, nil
}

func makeGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

// addEpochPower accumulates one epoch's power: 1/f background noise plus an
// alpha-band burst shortly after the event, with a per-channel phase offset.
func addEpochPower(grid [][]float64, freqs, times []float64, channel int, rng *rand.Rand) {
	for fi, f := range freqs {
		background := 1.0 / (1.0 + f/10.0)
		for ti, tm := range times {
			burst := 0.0
			if f >= 8 && f <= 13 {
				dt := (tm - 150 - 30*float64(channel)) / 120
				burst = 1.5 * math.Exp(-dt*dt)
			}
			grid[fi][ti] += background + burst + 0.1*rng.NormFloat64()
		}
	}
}

// applyBaseline normalises each frequency row against the mean of its
// baseline window.
func applyBaseline(grid [][]float64, times []float64, b Baseline, mode BaselineMode) {
	startMs, endMs := b.Start*1000, b.End*1000
	for fi := range grid {
		var mean, sd float64
		n := 0
		for ti, tm := range times {
			if tm >= startMs && tm <= endMs {
				mean += grid[fi][ti]
				n++
			}
		}
		if n == 0 {
			continue
		}
		mean /= float64(n)
		if mode == BaselineZScore {
			for ti, tm := range times {
				if tm >= startMs && tm <= endMs {
					d := grid[fi][ti] - mean
					sd += d * d
				}
			}
			sd = math.Sqrt(sd / float64(n))
			if sd == 0 {
				sd = 1
			}
		}

		for ti := range grid[fi] {
			switch mode {
			case BaselineRatio:
				if mean != 0 {
					grid[fi][ti] /= mean
				}
			case BaselineLogRatio:
				if mean > 0 && grid[fi][ti] > 0 {
					grid[fi][ti] = 10 * math.Log10(grid[fi][ti]/mean)
				}
			case BaselineZScore:
				grid[fi][ti] = (grid[fi][ti] - mean) / sd
			case BaselinePercent:
				if mean != 0 {
					grid[fi][ti] = (grid[fi][ti] - mean) / mean * 100
				}
			default:
				grid[fi][ti] -= mean
			}
		}
	}
}
