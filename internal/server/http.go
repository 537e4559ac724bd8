package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/deltasync/internal/core/observability/log"
)

func (m *Monitor) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.Snapshot()); err != nil {
		m.logger.Warn("Status write failed", log.Error(err))
	}
}
