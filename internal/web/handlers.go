package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"
)

// Overrides holds scan window parameters that can override config defaults.
// Zero values mean "use config default".
type Overrides struct {
	PanStartDeg  int `json:"pan_start_deg"`
	PanEndDeg    int `json:"pan_end_deg"`
	TiltStartDeg int `json:"tilt_start_deg"`
	TiltEndDeg   int `json:"tilt_end_deg"`
}

// RunScanFunc runs one scan with the given overrides.
// It is called from the POST /run handler in a goroutine.
type RunScanFunc func(ctx context.Context, overrides Overrides) error

// FormConfig holds default values for the scan form (from config).
type FormConfig struct {
	PanStartDeg  int `json:"pan_start_deg"`
	PanEndDeg    int `json:"pan_end_deg"`
	TiltStartDeg int `json:"tilt_start_deg"`
	TiltEndDeg   int `json:"tilt_end_deg"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster  *StatusBroadcaster
	RunScan      RunScanFunc
	FormDefaults FormConfig
	runningMu    sync.Mutex
	running      bool
	staticFS     fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If runScan is nil, POST /run will return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, runScan RunScanFunc, formDefaults FormConfig, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster:  broadcaster,
		RunScan:      runScan,
		FormDefaults: formDefaults,
		staticFS:     staticFS,
	}
}

// HandleConfig returns the form default values (from config) as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.FormDefaults)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleRun handles POST /run to start a scan.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var overrides Overrides
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// Validate: overrides must stay within servo travel; zero = config default
	for _, deg := range []int{overrides.PanStartDeg, overrides.PanEndDeg, overrides.TiltStartDeg, overrides.TiltEndDeg} {
		if deg < 0 || deg > 180 {
			http.Error(w, "angles must be between 0 and 180", http.StatusBadRequest)
			return
		}
	}
	if overrides.PanEndDeg != 0 && overrides.PanEndDeg < overrides.PanStartDeg {
		http.Error(w, "pan_end_deg must be >= pan_start_deg", http.StatusBadRequest)
		return
	}
	if overrides.TiltEndDeg != 0 && overrides.TiltEndDeg < overrides.TiltStartDeg {
		http.Error(w, "tilt_end_deg must be >= tilt_start_deg", http.StatusBadRequest)
		return
	}

	if h.RunScan == nil {
		http.Error(w, "scan not configured", http.StatusServiceUnavailable)
		return
	}

	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		http.Error(w, "scan already in progress", http.StatusConflict)
		return
	}
	h.running = true
	h.runningMu.Unlock()

	// Run in goroutine; clear running when done
	go func() {
		defer func() {
			h.runningMu.Lock()
			h.running = false
			h.runningMu.Unlock()
		}()

		ctx := context.Background()
		if err := h.RunScan(ctx, overrides); err != nil {
			h.Broadcaster.Broadcast("error", "Scan failed: "+err.Error())
			log.Printf("scan failed: %v", err)
		} else {
			h.Broadcaster.Broadcast("info", "Scan complete")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
