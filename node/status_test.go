package node_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"swarmnode/node"
)

func TestStatusHandlerServesSnapshot(t *testing.T) {
	n := node.NewNode(4, node.NewCapabilitySet("medic"), 1)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	n.StatusHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(4), body["id"])
	require.Equal(t, "follower", body["role"])
}
