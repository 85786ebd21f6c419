package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestNode(id uint8) *Node {
	n := NewNode(id, nil, 0)
	n.rng = newJitterSourceSeeded(int64(id))
	return n
}

// scenario 1: election victory after timeout.
func TestElectionVictoryAfterTimeout(t *testing.T) {
	n := newTestNode(1)
	start := time.Now()
	n.lastHeartbeat = start.Add(-5 * time.Second)
	n.haveLastHeartbeat = true

	n.checkElectionTimeout(start)
	require.Equal(t, RoleElectionWait, n.Role)

	n.wait.delay = 100 * time.Millisecond
	later := start.Add(300 * time.Millisecond)
	n.checkElectionTimeout(later)

	require.Equal(t, RoleLeader, n.Role)
	id, ok := n.leaderIdentity()
	require.True(t, ok)
	require.Equal(t, uint8(1), id)

	frames := n.out.Drain()
	require.Len(t, frames, 2)
	acclaim, err := Decode(frames[0])
	require.NoError(t, err)
	require.Equal(t, MsgElectionAcclaim, acclaim.Type)
	require.Equal(t, uint8(1), acclaim.ClaimantID)
	coord, err := Decode(frames[1])
	require.NoError(t, err)
	require.Equal(t, MsgCoordinator, coord.Type)
}

// boundary: election timeout at exactly 3.0s does not trigger.
func TestElectionTimeoutExactlyAtBoundaryDoesNotTrigger(t *testing.T) {
	n := newTestNode(1)
	start := time.Now()
	n.lastHeartbeat = start.Add(-3 * time.Second)
	n.haveLastHeartbeat = true

	n.checkElectionTimeout(start)
	require.Equal(t, RoleFollower, n.Role)
}

// scenario 2: yield to higher id.
func TestYieldToHigherID(t *testing.T) {
	n := newTestNode(1)
	n.Role = RoleLeader
	n.handleAcclaim(Frame{Type: MsgElectionAcclaim, Sender: 2, ClaimantID: 2}, time.Now())

	require.Equal(t, RoleFollower, n.Role)
	id, ok := n.leaderIdentity()
	require.True(t, ok)
	require.Equal(t, uint8(2), id)
}

// scenario 3: suppress lower id.
func TestSuppressLowerID(t *testing.T) {
	n := newTestNode(2)
	n.Role = RoleLeader
	n.kinematics.Position = Point{X: 3, Y: 4}
	n.handleAcclaim(Frame{Type: MsgElectionAcclaim, Sender: 1, ClaimantID: 1}, time.Now())

	require.Equal(t, RoleLeader, n.Role)
	frames := n.out.Drain()
	require.Len(t, frames, 1)
	f, err := Decode(frames[0])
	require.NoError(t, err)
	require.Equal(t, MsgHeartbeat, f.Type)
	require.Equal(t, float32(3), f.LeaderX)
	require.Equal(t, float32(4), f.LeaderY)
}

func TestHeartbeatFromHigherIDYieldsLeader(t *testing.T) {
	n := newTestNode(1)
	n.Role = RoleLeader
	n.handleHeartbeat(Frame{Type: MsgHeartbeat, Sender: 2, LeaderX: 1, LeaderY: 1}, time.Now())
	require.Equal(t, RoleFollower, n.Role)
}

func TestHeartbeatFromLowerIDSuppressesWithoutYielding(t *testing.T) {
	n := newTestNode(2)
	n.Role = RoleLeader
	n.handleHeartbeat(Frame{Type: MsgHeartbeat, Sender: 1, LeaderX: 0, LeaderY: 0}, time.Now())
	require.Equal(t, RoleLeader, n.Role)
	frames := n.out.Drain()
	require.Len(t, frames, 1)
}

func TestCoordinatorAlwaysYields(t *testing.T) {
	n := newTestNode(5)
	n.Role = RoleLeader
	n.handleCoordinator(Frame{Type: MsgCoordinator, Sender: 9}, time.Now())
	require.Equal(t, RoleFollower, n.Role)
	id, ok := n.leaderIdentity()
	require.True(t, ok)
	require.Equal(t, uint8(9), id)
}

func TestExactlyOneRoleEverActive(t *testing.T) {
	n := newTestNode(1)
	roles := map[Role]bool{RoleFollower: true, RoleElectionWait: true, RoleLeader: true}
	require.True(t, roles[n.Role])
}
