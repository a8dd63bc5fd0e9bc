package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/session"
)

// SessionCreateRequest uploads an epoched recording.
type SessionCreateRequest struct {
	Montage      string        `json:"montage"`
	ChannelNames []string      `json:"channel_names"`
	SFreq        float64       `json:"sfreq"`
	TMinMs       float64       `json:"tmin_ms"`
	Data         [][][]float64 `json:"data"` // [epoch][channel][sample]
}

// SessionInfo is the wire summary of a registered session.
type SessionInfo struct {
	SessionID    string   `json:"session_id"`
	Montage      string   `json:"montage"`
	ChannelNames []string `json:"channel_names"`
	SFreq        float64  `json:"sfreq"`
	EpochCount   int      `json:"epoch_count"`
	WindowStart  float64  `json:"window_start_ms"`
	WindowEnd    float64  `json:"window_end_ms"`
}

func sessionInfo(s *session.Session) SessionInfo {
	start, end := s.Window()
	return SessionInfo{
		SessionID:    s.ID,
		Montage:      s.Montage,
		ChannelNames: s.ChannelNames,
		SFreq:        s.SFreq,
		EpochCount:   len(s.Data),
		WindowStart:  start,
		WindowEnd:    end,
	}
}

// handleSessionCreate registers an uploaded recording and returns its ID.
func (ws *WebServer) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req SessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s, err := session.New(req.Montage, req.ChannelNames, req.SFreq, req.TMinMs, req.Data)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, sessionInfo(s))
}

// handleSessionGet returns the summary for /api/session/{id}.
func (ws *WebServer) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/session/")
	if id == "" || strings.Contains(id, "/") {
		httputil.BadRequest(w, "missing session id")
		return
	}

	s, err := session.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("no session '%s'", id))
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, sessionInfo(s))
}
