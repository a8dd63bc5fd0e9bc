package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/neuroviz-data/scalpview/internal/anim"
	"github.com/neuroviz-data/scalpview/internal/headmap"
	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/montage"
	"github.com/neuroviz-data/scalpview/internal/session"
)

// FrameRequest selects a time window from a registered session.
type FrameRequest struct {
	SessionID  string  `json:"session_id"`
	StartMs    float64 `json:"start_ms"`
	EndMs      float64 `json:"end_ms"`
	IntervalMs float64 `json:"interval_ms"`
	Size       int     `json:"size,omitempty"` // export raster size
}

func (ws *WebServer) frameSequence(w http.ResponseWriter, r *http.Request) (*session.Session, *anim.Sequence, *FrameRequest, bool) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return nil, nil, nil, false
	}

	var req FrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return nil, nil, nil, false
	}
	if req.SessionID == "" {
		httputil.BadRequest(w, "missing 'session_id'")
		return nil, nil, nil, false
	}

	s, err := session.Get(req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("no session '%s'", req.SessionID))
			return nil, nil, nil, false
		}
		httputil.InternalServerError(w, err.Error())
		return nil, nil, nil, false
	}

	seq, err := s.Frames(req.StartMs, req.EndMs, req.IntervalMs)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, nil, nil, false
	}

	return s, seq, &req, true
}

// handleAnimationFrames returns the frame sequence for a time window as JSON.
func (ws *WebServer) handleAnimationFrames(w http.ResponseWriter, r *http.Request) {
	_, seq, _, ok := ws.frameSequence(w, r)
	if !ok {
		return
	}

	httputil.WriteJSONOK(w, seq)
}

// handleAnimationExport renders the frame sequence to an animated GIF.
func (ws *WebServer) handleAnimationExport(w http.ResponseWriter, r *http.Request) {
	s, seq, req, ok := ws.frameSequence(w, r)
	if !ok {
		return
	}

	positions, err := montagePositions(s.Montage, s.ChannelNames)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	opts := anim.ExportOptions{
		Size:       req.Size,
		ColorRange: anim.SequenceRange(seq),
		Positions:  positions,
	}

	gifBytes, err := anim.ExportGIF(r.Context(), seq, opts)
	if err != nil {
		if errors.Is(err, anim.ErrEmptySequence) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("export: %v", err))
		return
	}

	if ws.db != nil {
		exportID := uuid.New().String()[:8]
		if err := ws.db.RecordExport(exportID, s.ID, "gif", int64(len(seq.Frames)), int64(len(gifBytes))); err != nil {
			log.Printf("[monitor] failed to record export: %v", err)
		}
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=scalpview-%s.gif", s.ID))
	_, _ = w.Write(gifBytes)
}

// montagePositions resolves channel names against a montage, aligned with
// the sequence's channel order. Unknown channels get a nil position and are
// excluded by the projector.
func montagePositions(montageName string, channelNames []string) ([]*headmap.Position3D, error) {
	if montageName == "" {
		return make([]*headmap.Position3D, len(channelNames)), nil
	}
	samples, err := montage.Lookup(montageName, channelNames)
	if err != nil {
		return nil, err
	}
	positions := make([]*headmap.Position3D, len(samples))
	for i, s := range samples {
		positions[i] = s.Pos
	}
	return positions, nil
}
