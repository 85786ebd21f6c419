package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scenario 4: utility and claim.
func TestUtilityAndClaimScenario(t *testing.T) {
	n := newTestNode(1)
	n.Capabilities = NewCapabilitySet("extinguisher")
	n.kinematics.Position = Point{X: 0, Y: 0}
	n.tasks[101] = &Task{ID: 101, Pos: Point{X: 1, Y: 0}, RequiredCapability: "extinguisher", Status: TaskOpen}

	u := n.utility(n.tasks[101])
	require.Equal(t, 50.0, u)

	n.scanClaims()
	require.Equal(t, TaskTentative, n.tasks[101].Status)

	frames := n.out.Drain()
	require.Len(t, frames, 1)
	f, err := Decode(frames[0])
	require.NoError(t, err)
	require.Equal(t, MsgTaskClaim, f.Type)
	require.Equal(t, uint32(101), f.TaskID)
	require.Equal(t, float32(50.0), f.Utility)
}

func TestUtilityAtZeroDistanceMatchingCapability(t *testing.T) {
	n := newTestNode(1)
	n.Capabilities = NewCapabilitySet("medic")
	task := &Task{ID: 1, Pos: Point{X: 0, Y: 0}, RequiredCapability: "medic"}
	require.Equal(t, 100.0, n.utility(task))
}

func TestUtilityZeroWhenCapabilityMissing(t *testing.T) {
	n := newTestNode(1)
	task := &Task{ID: 1, Pos: Point{X: 0, Y: 0}, RequiredCapability: "medic"}
	require.Equal(t, 0.0, n.utility(task))
}

// boundary: utility exactly at threshold is not claimed.
func TestUtilityExactlyAtThresholdNotClaimed(t *testing.T) {
	n := newTestNode(1)
	// 100/(1+d) == 20.0 => d == 4.0
	n.tasks[1] = &Task{ID: 1, Pos: Point{X: 4, Y: 0}, Status: TaskOpen}
	n.scanClaims()
	require.Equal(t, TaskOpen, n.tasks[1].Status)
	require.Empty(t, n.out.Drain())
}

// scenario 5: leader arbitration with hysteresis.
func TestLeaderArbitrationWithHysteresis(t *testing.T) {
	n := newTestNode(9)
	n.Role = RoleLeader
	n.claims[101] = claimEntry{winner: 2, utility: 50.0}

	n.handleTaskClaim(Frame{Type: MsgTaskClaim, Sender: 3, TaskID: 101, Utility: 52.0})
	require.Equal(t, claimEntry{winner: 2, utility: 50.0}, n.claims[101])
	frames := n.out.Drain()
	require.Len(t, frames, 1)
	f, _ := Decode(frames[0])
	require.Equal(t, MsgTaskConflict, f.Type)
	require.Equal(t, uint8(2), f.WinnerID)

	n.handleTaskClaim(Frame{Type: MsgTaskClaim, Sender: 3, TaskID: 101, Utility: 60.0})
	require.Equal(t, claimEntry{winner: 3, utility: 60.0}, n.claims[101])
	frames = n.out.Drain()
	require.Len(t, frames, 1)
	f, _ = Decode(frames[0])
	require.Equal(t, uint8(3), f.WinnerID)
}

// boundary: hysteresis at exactly +5.0 does not replace the incumbent.
func TestHysteresisExactlyAtMarginDoesNotReplace(t *testing.T) {
	n := newTestNode(9)
	n.Role = RoleLeader
	n.claims[101] = claimEntry{winner: 2, utility: 50.0}

	n.handleTaskClaim(Frame{Type: MsgTaskClaim, Sender: 3, TaskID: 101, Utility: 55.0})
	require.Equal(t, claimEntry{winner: 2, utility: 50.0}, n.claims[101])
}

func TestNonLeaderIgnoresTaskClaim(t *testing.T) {
	n := newTestNode(9)
	n.Role = RoleFollower
	n.handleTaskClaim(Frame{Type: MsgTaskClaim, Sender: 3, TaskID: 101, Utility: 90.0})
	require.Empty(t, n.claims)
	require.Empty(t, n.out.Drain())
}

// scenario 6: task resolution.
func TestTaskResolutionScenario(t *testing.T) {
	n := newTestNode(1)
	n.tasks[101] = &Task{ID: 101, Status: TaskTentative}
	n.handleTaskConflict(Frame{Type: MsgTaskConflict, TaskID: 101, WinnerID: 1})
	require.Equal(t, TaskAssigned, n.tasks[101].Status)

	n.tasks[102] = &Task{ID: 102, Status: TaskOpen}
	n.handleTaskConflict(Frame{Type: MsgTaskConflict, TaskID: 102, WinnerID: 2})
	require.Equal(t, TaskLocked, n.tasks[102].Status)
}
