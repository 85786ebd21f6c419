package node

// status.go — optional read-only HTTP status endpoint.
//
// Adapted from the teacher's handleStateRequest/buildQueueSnapshot pair in
// handlers.go/queue.go: a single JSON GET endpoint exposing a state
// snapshot. Purely observational — nothing here feeds back into the tick
// loop, and it is not one of the five core wire messages.

import (
	"encoding/json"
	"net/http"
)

type statusResponse struct {
	ID        uint8           `json:"id"`
	Role      string          `json:"role"`
	LeaderID  uint8           `json:"leaderId,omitempty"`
	HasLeader bool            `json:"hasLeader"`
	LeaderPos Point           `json:"leaderPos,omitempty"`
	Tick      uint32          `json:"tick"`
	Position  Point           `json:"position"`
	Velocity  Point           `json:"velocity"`
	Tasks     map[string]int  `json:"tasks"`
}

// StatusHandler returns an http.HandlerFunc serving a JSON snapshot of
// node state on every request. The caller owns the listener/mux, matching
// the teacher's pattern of registering individual handler funcs against a
// shared http.ServeMux rather than Node owning its own server.
func (n *Node) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := n.Snapshot()
		tasks := make(map[string]int, len(snap.TaskCounts))
		for status, count := range snap.TaskCounts {
			tasks[status.String()] = count
		}
		resp := statusResponse{
			ID:        snap.ID,
			Role:      snap.Role.String(),
			LeaderID:  snap.LeaderID,
			HasLeader: snap.HasLeader,
			LeaderPos: snap.LeaderPos,
			Tick:      snap.Tick,
			Position:  snap.Position,
			Velocity:  snap.Velocity,
			Tasks:     tasks,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
