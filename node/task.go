package node

// task.go — distributed task allocation: utility scoring, optimistic claim
// broadcast, leader arbitration under hysteresis, and conflict resolution.
//
// Adapted from the teacher's bid.go/queue.go (claim/accept/broadcast shape,
// quorum-free here since the leader is the sole arbitrator rather than a
// voted majority — spec.md §4.3 replaces the auction's 2PC quorum with a
// single authoritative winner per task, so there is no prepare/vote phase
// to keep).

const (
	utilityClaimThreshold  = 20.0
	utilityK               = 100.0
	utilityHysteresisMargin = 5.0
)

// utility computes U(task) for this node: 100/(1+distance) scaled by
// capability match (1 if the task has no requirement or this node has it,
// else 0 — which forces U to exactly 0).
func (n *Node) utility(t *Task) float64 {
	match := 1.0
	if t.RequiredCapability != "" && !n.Capabilities.Has(t.RequiredCapability) {
		match = 0.0
	}
	d := dist(n.kinematics.Position, t.Pos)
	return (utilityK / (1 + d)) * match
}

// scanClaims runs once per tick on every node: any Open task whose utility
// strictly exceeds the threshold gets claimed locally and broadcast.
func (n *Node) scanClaims() {
	for _, t := range n.tasks {
		if t.Status != TaskOpen {
			continue
		}
		u := n.utility(t)
		if u > utilityClaimThreshold {
			t.Status = TaskTentative
			n.out.push(EncodeTaskClaim(n.ID, n.tick, t.ID, float32(u)))
		}
	}
}

// handleTaskClaim is the leader-only arbitration rule. Non-leaders MUST NOT
// arbitrate — spec.md §4.3 says inbound TASK_CLAIM is ignored outside the
// Leader role, so this returns without effect unless Role == RoleLeader.
func (n *Node) handleTaskClaim(f Frame) {
	if n.Role != RoleLeader {
		return
	}
	current, ok := n.claims[f.TaskID]
	switch {
	case !ok:
		n.claims[f.TaskID] = claimEntry{winner: f.Sender, utility: f.Utility}
		n.out.push(EncodeTaskConflict(n.ID, n.tick, f.TaskID, f.Sender))
	case f.Utility > current.utility+utilityHysteresisMargin:
		n.claims[f.TaskID] = claimEntry{winner: f.Sender, utility: f.Utility}
		n.out.push(EncodeTaskConflict(n.ID, n.tick, f.TaskID, f.Sender))
	case current.winner != f.Sender:
		n.out.push(EncodeTaskConflict(n.ID, n.tick, f.TaskID, current.winner))
	default:
		// same incumbent re-claiming under threshold — no-op
	}
}

// handleTaskConflict is the resolution rule run by every node (including
// the leader, which learns its own arbitration result the same way a
// follower does).
func (n *Node) handleTaskConflict(f Frame) {
	t, known := n.tasks[f.TaskID]
	if !known {
		return
	}
	if f.WinnerID == n.ID {
		t.Status = TaskAssigned
	} else {
		t.Status = TaskLocked
	}
}
