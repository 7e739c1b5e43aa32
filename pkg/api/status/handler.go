// Package status reports the engine's per-key computation states, mainly
// for dashboards polling long recomputations.
package status

import (
	"encoding/json"
	"net/http"

	"bizplan_engine/pkg/core/consolidation"
)

var engine *consolidation.Engine

// InitHandler wires the handler to a consolidation engine.
func InitHandler(e *consolidation.Engine) {
	engine = e
}

// Response lists every (project, scenario) key the engine has touched and
// where its state machine currently sits.
type Response struct {
	States map[string]consolidation.State `json:"states"`
}

func HandleStatus(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	resp := Response{States: engine.States()}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
