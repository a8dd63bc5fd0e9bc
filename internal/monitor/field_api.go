package monitor

import (
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"

	"github.com/neuroviz-data/scalpview/internal/headmap"
	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/montage"
	"github.com/neuroviz-data/scalpview/internal/units"
)

// FieldRenderRequest is the wire shape for one render pass.
type FieldRenderRequest struct {
	Samples     []headmap.SensorSample `json:"samples"`
	Montage     string                 `json:"montage,omitempty"`
	Units       string                 `json:"units,omitempty"` // display units; sample values are volts
	Size        int                    `json:"size,omitempty"`
	Zoom        float64                `json:"zoom,omitempty"`
	PanX        float64                `json:"pan_x,omitempty"`
	PanY        float64                `json:"pan_y,omitempty"`
	Contours    int                    `json:"contours,omitempty"`
	ShowSensors bool                   `json:"show_sensors,omitempty"`
	Theme       string                 `json:"theme,omitempty"`
	VMin        *float64               `json:"vmin,omitempty"`
	VMax        *float64               `json:"vmax,omitempty"`
	Symmetric   *bool                  `json:"symmetric,omitempty"`
	Format      string                 `json:"format,omitempty"` // "png" (default) or "json"
}

// FieldRenderResponse is the JSON-format render output.
type FieldRenderResponse struct {
	Points         []headmap.ProjectedPoint `json:"points"`
	Contours       []headmap.ContourLevel   `json:"contours"`
	Range          headmap.ColorRange       `json:"range"`
	UnitLabel      string                   `json:"unit_label,omitempty"`
	MissingMontage bool                     `json:"missing_montage"`
}

// handleFieldRender runs the rendering chain over posted samples and returns
// either a PNG raster or the projected field as JSON.
func (ws *WebServer) handleFieldRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req FieldRenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Samples) == 0 {
		httputil.BadRequest(w, "missing 'samples'")
		return
	}

	samples := req.Samples
	if req.Montage != "" {
		applied, err := montage.Apply(req.Montage, samples)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		samples = applied
	}

	unitLabel := ""
	if req.Units != "" {
		if !units.IsValid(req.Units) {
			httputil.BadRequest(w, fmt.Sprintf("invalid units %q, valid units are: %s", req.Units, units.GetValidUnitsString()))
			return
		}
		converted := make([]headmap.SensorSample, len(samples))
		for i, s := range samples {
			converted[i] = s
			converted[i].Value = units.ConvertAmplitude(s.Value, req.Units)
		}
		samples = converted
		unitLabel = units.Label(req.Units)
	}

	rng := ws.resolveRange(req, samples)
	opts := ws.resolveOptions(req)

	result, err := headmap.Render(samples, rng, opts)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if req.Format == "json" {
		httputil.WriteJSONOK(w, FieldRenderResponse{
			Points:         result.Points,
			Contours:       result.Contours,
			Range:          result.Range,
			UnitLabel:      unitLabel,
			MissingMontage: result.MissingMontage,
		})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, result.Image); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("encode png: %v", err))
	}
}

func (ws *WebServer) resolveRange(req FieldRenderRequest, samples []headmap.SensorSample) headmap.ColorRange {
	symmetric := true
	if req.Symmetric != nil {
		symmetric = *req.Symmetric
	}
	if req.VMin != nil && req.VMax != nil {
		return headmap.ColorRange{VMin: *req.VMin, VMax: *req.VMax, Symmetric: symmetric}
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return headmap.RangeFromValues(values, symmetric)
}

func (ws *WebServer) resolveOptions(req FieldRenderRequest) headmap.RenderOptions {
	size := req.Size
	if size <= 0 {
		size = ws.rasterSize
	}
	if size <= 0 {
		size = headmap.MaxRasterSize
	}
	zoom := req.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	contourCount := req.Contours
	if contourCount <= 0 {
		contourCount = headmap.DefaultContourCount
	}
	theme := headmap.ThemeLight
	if req.Theme == "dark" || (req.Theme == "" && ws.themes != nil && ws.themes.Current() == headmap.ThemeDark) {
		theme = headmap.ThemeDark
	}
	return headmap.RenderOptions{
		Size:         size,
		Zoom:         zoom,
		PanX:         req.PanX,
		PanY:         req.PanY,
		ContourCount: contourCount,
		ShowSensors:  req.ShowSensors,
		Theme:        theme,
	}
}

// handleMontages lists the montages available for position backfill.
func (ws *WebServer) handleMontages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, montage.Available())
}
