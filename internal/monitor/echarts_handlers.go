package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/neuroviz-data/scalpview/internal/headmap"
	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/montage"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleElectrodesChart renders a quick scatter (HTML) of projected electrode
// positions using go-echarts. This is a debugging-only endpoint (no auth) to
// visually check montage geometry without a frontend.
// Query params:
//   - montage (optional; default standard_1020)
func (ws *WebServer) handleElectrodesChart(w http.ResponseWriter, r *http.Request) {
	montageName := r.URL.Query().Get("montage")
	if montageName == "" {
		montageName = "standard_1020"
	}

	table, err := montage.Positions(montageName)
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}

	// Project with elevation as the colour dimension so flattened ring
	// electrodes are distinguishable from vertex sites.
	samples := make([]headmap.SensorSample, 0, len(table))
	for name, pos := range table {
		p := pos
		samples = append(samples, headmap.SensorSample{Name: name, Pos: &p, Value: pos.Z})
	}
	points := headmap.Project(samples, headmap.Disc{CX: 0, CY: 0, R: 100})

	data := make([]opts.ScatterData, 0, len(points))
	maxAbs := 0.0
	for _, p := range points {
		if math.Abs(p.X) > maxAbs {
			maxAbs = math.Abs(p.X)
		}
		if math.Abs(p.Y) > maxAbs {
			maxAbs = math.Abs(p.Y)
		}
		data = append(data, opts.ScatterData{Name: p.Name, Value: []interface{}{p.X, p.Y, p.Value}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Electrode Montage", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Projected Electrodes", Subtitle: fmt.Sprintf("montage=%s points=%d", montageName, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#2166AC", "#F7F7F7", "#B2182B"}},
		}),
	)
	scatter.AddSeries("electrodes", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleTFRChart renders a completed data-mode spectral result as a coloured
// scatter over the time/frequency plane.
// Query params:
//   - job_id (required)
//   - max_points (optional; default 8000) to reduce payload size
func (ws *WebServer) handleTFRChart(w http.ResponseWriter, r *http.Request) {
	if ws.jobs == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no job manager configured")
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		httputil.BadRequest(w, "missing 'job_id' parameter")
		return
	}

	job, err := ws.jobs.Get(jobID)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("no job '%s'", jobID))
		return
	}
	if job.Result == nil || len(job.Result.Power) == 0 {
		httputil.NotFound(w, "job has no numeric result yet")
		return
	}

	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	res := job.Result
	total := len(res.Freqs) * len(res.TimesMs)
	stride := 1
	if total > maxPoints {
		stride = int(math.Ceil(float64(total) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, total/stride+1)
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	idx := 0
	for fi, f := range res.Freqs {
		for ti, t := range res.TimesMs {
			if idx%stride != 0 {
				idx++
				continue
			}
			idx++
			v := res.Power[fi][ti]
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
			data = append(data, opts.ScatterData{Value: []interface{}{t, f, v}})
		}
	}
	if minVal >= maxVal {
		minVal, maxVal = 0, 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Spectral Power", Theme: "dark", Width: "1100px", Height: "700px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Time-Frequency Power", Subtitle: fmt.Sprintf("job=%s mode=%s points=%d stride=%d", jobID, string(res.Mode), len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency (Hz)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minVal),
			Max:        float32(maxVal),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#2166AC", "#F7F7F7", "#B2182B"}},
		}),
	)
	scatter.AddSeries("power", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
