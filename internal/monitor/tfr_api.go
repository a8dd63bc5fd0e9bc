package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/spectral"
)

// handleTFRStart submits a spectral computation and returns its job ID.
func (ws *WebServer) handleTFRStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.jobs == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no job manager configured")
		return
	}

	var params spectral.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	jobID, err := ws.jobs.Submit(params)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, map[string]string{"job_id": jobID})
}

// handleTFRJob dispatches /api/tfr/{id} and /api/tfr/{id}/cancel.
func (ws *WebServer) handleTFRJob(w http.ResponseWriter, r *http.Request) {
	if ws.jobs == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no job manager configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/tfr/")
	if rest == "" {
		httputil.BadRequest(w, "missing job id")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/cancel"); ok {
		ws.handleTFRCancel(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		httputil.NotFound(w, "unknown tfr endpoint")
		return
	}
	ws.handleTFRStatus(w, r, rest)
}

func (ws *WebServer) handleTFRStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	job, err := ws.jobs.Get(id)
	if err != nil {
		if errors.Is(err, spectral.ErrJobNotFound) {
			httputil.NotFound(w, fmt.Sprintf("no job '%s'", id))
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, job)
}

func (ws *WebServer) handleTFRCancel(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	if err := ws.jobs.Cancel(id); err != nil {
		if errors.Is(err, spectral.ErrJobNotFound) {
			httputil.NotFound(w, fmt.Sprintf("no job '%s'", id))
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	job, err := ws.jobs.Get(id)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, job)
}
