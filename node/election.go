package node

// election.go — the "quiet bully" leader election FSM.
//
// Adapted from the teacher's bully.go (StartElection / MonitorLeader /
// BroadcastHeartbeats / HandleElection / HandleCoordinator / HandleHeartbeat),
// but reshaped from goroutine-per-peer RPC calls into pure functions the
// tick driver calls synchronously: no network dial, no WaitGroup, no
// ElectionMutex — a single state object mutated in place, per spec.md §5's
// single-threaded cooperative model.

import "time"

// heartbeatTimeout is the only liveness constant with semantic weight here;
// spec.md §5 fixes it at 3.0s.
const heartbeatTimeout = 3 * time.Second

// heartbeatEmitEveryNTicks subsamples the leader's periodic heartbeat to
// 1Hz out of the 10Hz tick driver.
const heartbeatEmitEveryNTicks = 10

// checkElectionTimeout runs once per tick, before any heartbeat emission,
// per the fixed §4.1 ordering (election check → heartbeat emit → task scan
// → physics).
func (n *Node) checkElectionTimeout(now time.Time) {
	switch n.Role {
	case RoleFollower:
		if n.heartbeatIsStale(now) {
			n.Role = RoleElectionWait
			n.wait = electionWait{start: now, delay: n.rng.next()}
			n.view = leaderView{}
		}
	case RoleElectionWait:
		if now.Sub(n.wait.start) > n.wait.delay {
			n.becomeLeader()
		}
	case RoleLeader:
		// a leader never times itself out; it only yields on evidence of a
		// higher id (handleAcclaim/handleHeartbeat).
	}
}

// heartbeatIsStale reports whether more than heartbeatTimeout has elapsed
// since the last accepted heartbeat. A node that has never observed one is
// always stale — it has no evidence a leader exists yet.
func (n *Node) heartbeatIsStale(now time.Time) bool {
	if !n.haveLastHeartbeat {
		return true
	}
	return now.Sub(n.lastHeartbeat) > heartbeatTimeout
}

// becomeLeader performs the ElectionWait → Leader promotion: acclaim then
// immediately coordinator, in that order, so a peer that only sees one of
// the two still learns the same thing from the other.
func (n *Node) becomeLeader() {
	n.Role = RoleLeader
	n.view = leaderView{}
	n.out.push(EncodeElectionAcclaim(n.ID, n.tick, n.ID))
	n.out.push(EncodeCoordinator(n.ID, n.tick))
}

// emitHeartbeat unconditionally pushes a HEARTBEAT frame carrying this
// node's current position. Called both from the 1Hz periodic path and from
// the suppression path below — see the Open Question resolution in
// DESIGN.md for why suppression replies are not subsampled.
func (n *Node) emitHeartbeat() {
	n.out.push(EncodeHeartbeat(n.ID, n.tick, n.kinematics.Position.X, n.kinematics.Position.Y))
}

// maybeEmitHeartbeat runs the leader's periodic 1Hz heartbeat. A no-op for
// any other role.
func (n *Node) maybeEmitHeartbeat() {
	if n.Role != RoleLeader {
		return
	}
	if n.tick%heartbeatEmitEveryNTicks != 0 {
		return
	}
	n.emitHeartbeat()
}

// handleHeartbeat applies the HEARTBEAT transition table.
func (n *Node) handleHeartbeat(f Frame, now time.Time) {
	s := f.Sender
	if n.Role == RoleLeader {
		if s < n.ID {
			n.emitHeartbeat() // suppress: a dominant leader silences a stale lower-id claimant
		} else if s > n.ID {
			n.Role = RoleFollower
		}
	}
	n.view = leaderView{known: true, id: s, pos: Point{X: float64(f.LeaderX), Y: float64(f.LeaderY)}}
	n.lastHeartbeat = now
	n.haveLastHeartbeat = true
	if n.Role == RoleElectionWait {
		n.Role = RoleFollower
	}
}

// handleAcclaim applies the ELECTION_ACCLAIM transition table.
func (n *Node) handleAcclaim(f Frame, now time.Time) {
	s := f.ClaimantID
	if s > n.ID {
		n.Role = RoleFollower
		n.view = leaderView{known: true, id: s}
		n.lastHeartbeat = now
		n.haveLastHeartbeat = true
		return
	}
	if s < n.ID && (n.Role == RoleLeader || n.Role == RoleElectionWait) {
		if n.Role == RoleElectionWait {
			n.Role = RoleLeader
			n.view = leaderView{}
		}
		n.emitHeartbeat()
	}
}

// handleCoordinator applies the COORDINATOR transition table.
func (n *Node) handleCoordinator(f Frame, now time.Time) {
	n.Role = RoleFollower
	n.view = leaderView{known: true, id: f.Sender}
	n.lastHeartbeat = now
	n.haveLastHeartbeat = true
}

// leaderIdentity returns (id, known) for the currently believed leader,
// accounting for the invariant that a Leader's own id is the leader.
func (n *Node) leaderIdentity() (uint8, bool) {
	if n.Role == RoleLeader {
		return n.ID, true
	}
	return n.view.id, n.view.known
}

// leaderPosition returns the last-known leader position and whether it is
// considered known (absent after a timeout clears the view).
func (n *Node) leaderPosition() (Point, bool) {
	if n.Role == RoleLeader {
		return n.kinematics.Position, true
	}
	return n.view.pos, n.view.known
}
