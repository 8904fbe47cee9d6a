package controllers

import (
	"fmt"
	"net/http"
	"pulsed/internal/journal"
	"pulsed/internal/stream"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	registry  *stream.Registry
	journal   journal.JournalInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Subscribers   int     `json:"subscribers"`
	Identities    int     `json:"identities"`
	JournalBytes  int64   `json:"journal_bytes"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Subscribers:   hc.registry.SessionCount(),
		Identities:    hc.registry.IdentityCount(),
		JournalBytes:  hc.journal.SegmentSize(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(registry *stream.Registry, jrnl journal.JournalInterface) *HealthController {
	return &HealthController{
		registry:  registry,
		journal:   jrnl,
		startTime: time.Now(),
	}
}
