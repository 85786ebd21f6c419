package node

// tick.go — the fixed-period scheduler driving every other subsystem.
//
// Adapted from the teacher's MonitorLeader/BroadcastHeartbeats timer
// loops, collapsed into the single ordered tick spec.md §4.1 and §5
// demand: one goroutine, one state object, a fixed per-tick sequence
// (drain inbound → election check → heartbeat emit → task scan →
// physics), and a single suspension point at the end-of-tick sleep.

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// TickHz is the scheduler's fixed rate.
const TickHz = 10
const TickPeriod = time.Second / TickHz

// Transport is the external collaborator that carries opaque framed byte
// buffers between nodes. Delivery semantics (broadcast vs addressed,
// reliable vs best-effort) are unspecified by the core — it assumes
// best-effort broadcast and tolerates loss, per spec.md §6.
type Transport interface {
	Send(frame []byte) error
}

// Clock abstracts "now" so tests can drive the FSM without real sleeps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Tick runs exactly one scheduler period's worth of logic: merge staged
// sensor/task/target updates, drain inbound frames, election check,
// heartbeat emission, task scan, physics step. It never sleeps — Run wraps
// it with the fixed-period scheduler. Returns the frames produced this
// tick so callers driving Tick directly (tests) don't need a Transport.
func (n *Node) Tick(now time.Time, dt time.Duration) [][]byte {
	n.tick++
	n.mergeExternalUpdates()
	n.processInbound(now)
	n.checkElectionTimeout(now)
	n.maybeEmitHeartbeat()
	n.scanClaims()
	n.stepMotion(dt.Seconds())
	n.refreshSnapshot()
	return n.out.Drain()
}

// processInbound drains the bounded inbound queue and dispatches each
// frame. Decode failures (short frame, unknown type) are dropped silently
// per spec.md §7 — logged at debug level only, never as an error.
func (n *Node) processInbound(now time.Time) {
	n.ioMu.Lock()
	frames := n.inbound
	n.inbound = nil
	n.ioMu.Unlock()

	for _, raw := range frames {
		f, err := Decode(raw)
		if err != nil {
			logrus.WithFields(logrus.Fields{"node_id": n.ID, "err": err}).Debug("dropped malformed frame")
			continue
		}
		n.dispatch(f, now)
	}
}

func (n *Node) dispatch(f Frame, now time.Time) {
	switch f.Type {
	case MsgHeartbeat:
		n.handleHeartbeat(f, now)
	case MsgElectionAcclaim:
		n.handleAcclaim(f, now)
	case MsgCoordinator:
		n.handleCoordinator(f, now)
	case MsgTaskClaim:
		n.handleTaskClaim(f)
	case MsgTaskConflict:
		n.handleTaskConflict(f)
	}
}

// Run drives the node forever at TickHz until ctx is canceled, handing
// each tick's outbound frames to transport. A send failure is logged and
// otherwise ignored — the wire is best-effort, per spec.md §6.
func (n *Node) Run(ctx context.Context, transport Transport) {
	n.RunWithClock(ctx, transport, realClock{})
}

// RunWithClock is Run with an injectable clock, for tests that need
// deterministic time without real sleeps.
func (n *Node) RunWithClock(ctx context.Context, transport Transport, clock Clock) {
	log := logrus.WithField("node_id", n.ID)
	log.Info("tick loop starting")
	for {
		select {
		case <-ctx.Done():
			log.Info("tick loop stopping")
			return
		default:
		}

		start := clock.Now()
		frames := n.Tick(start, TickPeriod)
		for _, frame := range frames {
			if err := transport.Send(frame); err != nil {
				log.WithError(err).Debug("send failed, dropping frame")
			}
		}

		elapsed := clock.Now().Sub(start)
		remaining := TickPeriod - elapsed
		if remaining > 0 {
			select {
			case <-ctx.Done():
				log.Info("tick loop stopping")
				return
			case <-time.After(remaining):
			}
		}
	}
}
