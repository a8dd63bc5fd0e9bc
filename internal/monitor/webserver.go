// Package monitor exposes the HTTP interface for scalp field rendering,
// spectral job control and animation frame serving.
package monitor

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/neuroviz-data/scalpview/internal/db"
	"github.com/neuroviz-data/scalpview/internal/headmap"
	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/spectral"
)

//go:embed status.html
var StatusHTML embed.FS

// WebServer handles the HTTP interface for the scalp field viewer.
// It provides endpoints for health checks, rendering, spectral jobs and
// animation sequences.
type WebServer struct {
	address    string
	server     *http.Server
	db         *db.DB
	jobs       *spectral.Manager
	themes     *headmap.ThemeSource
	themeUnsub func()
	rasterSize int
	startTime  time.Time
	devMode    bool
}

// WebServerConfig contains configuration options for the web server
type WebServerConfig struct {
	Address    string
	DB         *db.DB
	Jobs       *spectral.Manager
	Themes     *headmap.ThemeSource
	RasterSize int
	DevMode    bool
}

// NewWebServer creates a new web server with the provided configuration
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:    config.Address,
		db:         config.DB,
		jobs:       config.Jobs,
		themes:     config.Themes,
		rasterSize: config.RasterSize,
		startTime:  time.Now(),
		devMode:    config.DevMode,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	if ws.themes != nil {
		ws.themeUnsub = ws.themes.Subscribe(func(t headmap.Theme) {
			log.Printf("[monitor] theme switched to %s", themeName(t))
		})
	}

	return ws
}

func themeName(t headmap.Theme) string {
	if t == headmap.ThemeDark {
		return "dark"
	}
	return "light"
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/field/render", ws.handleFieldRender)
	mux.HandleFunc("/api/montages", ws.handleMontages)
	mux.HandleFunc("/api/theme", ws.handleTheme)
	mux.HandleFunc("/api/session", ws.handleSessionCreate)
	mux.HandleFunc("/api/session/", ws.handleSessionGet)
	mux.HandleFunc("/api/tfr/start", ws.handleTFRStart)
	mux.HandleFunc("/api/tfr/", ws.handleTFRJob)
	mux.HandleFunc("/api/animation/frames", ws.handleAnimationFrames)
	mux.HandleFunc("/api/animation/export", ws.handleAnimationExport)
	mux.HandleFunc("/debug/charts/electrodes", ws.handleElectrodesChart)
	mux.HandleFunc("/debug/charts/tfr", ws.handleTFRChart)

	if ws.db != nil {
		ws.db.AttachAdminRoutes(mux)
	}

	return mux
}

// handleHealth handles the health check endpoint
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "scalpview", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleStatus handles the main status page endpoint
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	tmpl, err := template.ParseFS(StatusHTML, "status.html")
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	theme := "light"
	if ws.themes != nil {
		theme = themeName(ws.themes.Current())
	}

	data := struct {
		HTTPAddress string
		Uptime      string
		Theme       string
		DevMode     bool
	}{
		HTTPAddress: ws.address,
		Uptime:      time.Since(ws.startTime).Round(time.Second).String(),
		Theme:       theme,
		DevMode:     ws.devMode,
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleTheme reads or switches the active colour theme.
func (ws *WebServer) handleTheme(w http.ResponseWriter, r *http.Request) {
	if ws.themes == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no theme source configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req struct {
			Theme string `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		switch req.Theme {
		case "light":
			ws.themes.Set(headmap.ThemeLight)
		case "dark":
			ws.themes.Set(headmap.ThemeDark)
		default:
			httputil.BadRequest(w, fmt.Sprintf("unknown theme %q", req.Theme))
			return
		}
	default:
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]string{"theme": themeName(ws.themes.Current())})
}

// Close shuts down the web server
func (ws *WebServer) Close() error {
	if ws.themeUnsub != nil {
		ws.themeUnsub()
	}
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}
