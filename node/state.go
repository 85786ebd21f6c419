package node

// state.go — core data model: identity, role, tasks, kinematics.
//
// All of it lives on the Node struct, owned exclusively by the tick driver
// (see tick.go). The fields touched from outside the tick goroutine are
// guarded by ioMu: the inbound frame queue, and the staged sensor/task/
// target updates that mergeExternalUpdates folds into tick-owned state at
// the start of every Tick — the boundaries spec.md §5 calls out.

import (
	"sync"
	"time"
)

// Role is the election FSM's current state. Exactly one is active per node.
type Role int

const (
	RoleFollower Role = iota
	RoleElectionWait
	RoleLeader
)

func (r Role) String() string {
	switch r {
	case RoleFollower:
		return "follower"
	case RoleElectionWait:
		return "election-wait"
	case RoleLeader:
		return "leader"
	default:
		return "unknown"
	}
}

// Point is a 2D coordinate in meters.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}
func (p Point) Norm() float64 {
	return dist(p, Point{})
}

// electionWait holds the fields that are only meaningful while Role ==
// RoleElectionWait. Keeping them inside one struct (per spec.md §9's
// "polymorphic state" note) makes "valid only in ElectionWait" a
// documented fact instead of a pair of always-present nullable fields.
type electionWait struct {
	start time.Time
	delay time.Duration
}

// leaderView is the optional (leader_id, leader_position) pair a follower
// or election-waiting node carries once it has observed a heartbeat.
type leaderView struct {
	known bool
	id    uint8
	pos   Point
}

// TaskStatus is a task's locally-held opinion about its assignment.
type TaskStatus int

const (
	TaskOpen TaskStatus = iota
	TaskTentative
	TaskAssigned
	TaskLocked
)

func (s TaskStatus) String() string {
	switch s {
	case TaskOpen:
		return "open"
	case TaskTentative:
		return "tentative"
	case TaskAssigned:
		return "assigned"
	case TaskLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Task is a unit of work keyed by a 32-bit id.
type Task struct {
	ID                 uint32
	Pos                Point
	RequiredCapability string // empty means no requirement
	Status             TaskStatus
}

// claimEntry is one row of the leader-only claim table.
type claimEntry struct {
	winner  uint8
	utility float32
}

// Obstacle is a static/dynamic hazard reported by the sensor collaborator.
type Obstacle struct {
	X, Y, R float64
}

// Neighbor is a peer agent's last-known position, reported by the sensor
// collaborator.
type Neighbor struct {
	ID   uint8
	X, Y float64
}

// CapabilitySet is an unordered, immutable-after-construction set of tags.
type CapabilitySet map[string]struct{}

// NewCapabilitySet builds a set from an ordered tag list.
func NewCapabilitySet(tags ...string) CapabilitySet {
	set := make(CapabilitySet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether tag is a member.
func (c CapabilitySet) Has(tag string) bool {
	_, ok := c[tag]
	return ok
}

// Kinematics is the node's own motion state.
type Kinematics struct {
	Position Point
	Velocity Point
	Target   *Point // nil skips the physics step entirely
	MaxSpeed float64
}

// DefaultMaxSpeed is the spec's default top speed in m/s.
const DefaultMaxSpeed = 5.0

// Node is the full logical state of one swarm member. It is constructed
// once at process start and driven exclusively by the tick loop in
// tick.go; external collaborators touch it only through Deliver,
// UpdateSensors, AddTask, and SetTarget. Those four never write the
// tick-owned fields (obstacles, neighbors, tasks, kinematics.Target)
// directly — they stage the update under ioMu, and mergeExternalUpdates
// (called at the top of every Tick) is the only place that moves a staged
// update into tick-owned state. This keeps every tick-owned read (in
// motion.go, task.go) lock-free while still giving the boundary fields a
// single guarding mutex, per spec.md §5.
type Node struct {
	ID           uint8
	Capabilities CapabilitySet
	AgentCount   int // informational only; not used by any core rule

	Role Role
	wait electionWait
	view leaderView

	lastHeartbeat     time.Time
	haveLastHeartbeat bool

	tick uint32

	tasks      map[uint32]*Task
	claims     map[uint32]claimEntry // leader-only, but kept on every node so a demoted leader doesn't need to rebuild it from scratch
	kinematics Kinematics
	obstacles  []Obstacle
	neighbors  []Neighbor

	rng *jitterSource

	// ioMu guards everything below it: the inbound frame queue, and the
	// staged (not yet merged) sensor/task/target updates. mergeExternalUpdates
	// (tick.go) takes this lock once per tick to move staged values into the
	// tick-owned fields above (obstacles, neighbors, tasks, kinematics.Target)
	// — those fields themselves are never touched outside the tick goroutine,
	// so reading them in motion.go/task.go needs no lock.
	ioMu             sync.Mutex
	inbound          [][]byte
	sensorsStaged    bool
	pendingObstacles []Obstacle
	pendingNeighbors []Neighbor
	pendingTasks     []*Task
	pendingTarget    *Point

	out Outbox

	// snapMu guards cachedSnapshot, the only tick-owned state visible to
	// other goroutines (the status endpoint). Refreshed once at the end of
	// every Tick — see tick.go. Reading tick-owned fields (tasks, role,
	// kinematics, ...) directly from another goroutine would race with the
	// tick loop, per spec.md §5's single-mutex-if-parallel note.
	snapMu         sync.Mutex
	cachedSnapshot Snapshot
}

// Outbox collects frames produced during a tick for the transport adapter
// to send. It is read and cleared by the tick driver after each Tick call;
// nothing inside the core ever blocks on a send.
type Outbox struct {
	frames [][]byte
}

func (o *Outbox) push(frame []byte) {
	o.frames = append(o.frames, frame)
}

// Drain returns and clears the buffered outbound frames.
func (o *Outbox) Drain() [][]byte {
	frames := o.frames
	o.frames = nil
	return frames
}

// NewNode constructs a node in the initial Follower role with an empty
// task set and zeroed kinematics. id must already be validated by the
// caller (see config.go) — the core trusts its own identity is in range.
//
// lastHeartbeat is seeded to construction time (haveLastHeartbeat = true),
// not left as "never observed" — a freshly started node gets the full 3.0s
// grace window before checkElectionTimeout can fire, matching
// _examples/original_source/agent.py's __init__, which sets
// last_heartbeat_time = time.time() rather than leaving it unset.
func NewNode(id uint8, capabilities CapabilitySet, agentCount int) *Node {
	if capabilities == nil {
		capabilities = CapabilitySet{}
	}
	n := &Node{
		ID:                id,
		Capabilities:      capabilities,
		AgentCount:        agentCount,
		Role:              RoleFollower,
		lastHeartbeat:     time.Now(),
		haveLastHeartbeat: true,
		tasks:             make(map[uint32]*Task),
		claims:            make(map[uint32]claimEntry),
		kinematics:        Kinematics{MaxSpeed: DefaultMaxSpeed},
		rng:               newJitterSource(id),
	}
	n.cachedSnapshot = n.snapshotLocked()
	return n
}

// Deliver enqueues one complete inbound frame for processing at the start
// of the next tick. Short or malformed frames are dropped by the codec at
// decode time, not here; Deliver itself never blocks and never errors —
// a full queue drops the oldest frame, matching the wire's best-effort
// tolerance for loss.
func (n *Node) Deliver(frame []byte) {
	const maxQueued = 256
	n.ioMu.Lock()
	defer n.ioMu.Unlock()
	if len(n.inbound) >= maxQueued {
		n.inbound = n.inbound[1:]
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	n.inbound = append(n.inbound, buf)
}

// UpdateSensors stages an obstacle/neighbor snapshot for the motion
// controller. The stage is merged into tick-owned state — replacing it
// atomically, per spec.md §6 — at the start of the next Tick; it never
// touches n.obstacles/n.neighbors directly, since those are read by the
// tick goroutine without a lock.
func (n *Node) UpdateSensors(obstacles []Obstacle, neighbors []Neighbor) {
	n.ioMu.Lock()
	defer n.ioMu.Unlock()
	n.pendingObstacles = append([]Obstacle(nil), obstacles...)
	n.pendingNeighbors = append([]Neighbor(nil), neighbors...)
	n.sensorsStaged = true
}

// AddTask stages a new task with local status Open. The core never
// discovers tasks on its own — this is the task-ingestion boundary. The
// task is merged into the tick-owned task map at the start of the next
// Tick, rather than written to n.tasks directly, since that map is read
// and mutated by the tick goroutine without a lock.
func (n *Node) AddTask(id uint32, pos Point, requiredCapability string) {
	n.ioMu.Lock()
	defer n.ioMu.Unlock()
	n.pendingTasks = append(n.pendingTasks, &Task{ID: id, Pos: pos, RequiredCapability: requiredCapability, Status: TaskOpen})
}

// SetTarget stages the externally-driven motion target (used directly by a
// Leader, which has no formation slot to derive one from). Merged into
// kinematics.Target at the start of the next Tick.
func (n *Node) SetTarget(p Point) {
	n.ioMu.Lock()
	defer n.ioMu.Unlock()
	t := p
	n.pendingTarget = &t
}

// mergeExternalUpdates moves any staged sensor/task/target updates into
// tick-owned state. Called once at the top of every Tick, before any
// tick-owned subsystem reads obstacles, neighbors, tasks, or
// kinematics.Target — this is the only place those fields are written
// from data that crossed the ioMu boundary.
func (n *Node) mergeExternalUpdates() {
	n.ioMu.Lock()
	var obstacles []Obstacle
	var neighbors []Neighbor
	staged := n.sensorsStaged
	if staged {
		obstacles = n.pendingObstacles
		neighbors = n.pendingNeighbors
		n.pendingObstacles = nil
		n.pendingNeighbors = nil
		n.sensorsStaged = false
	}
	newTasks := n.pendingTasks
	n.pendingTasks = nil
	target := n.pendingTarget
	n.pendingTarget = nil
	n.ioMu.Unlock()

	if staged {
		n.obstacles = obstacles
		n.neighbors = neighbors
	}
	for _, t := range newTasks {
		n.tasks[t.ID] = t
	}
	if target != nil {
		n.kinematics.Target = target
	}
}

// Snapshot is a read-only view of node state for the status endpoint and
// for tests; it never mutates the node.
type Snapshot struct {
	ID           uint8
	Role         Role
	LeaderID     uint8
	LeaderPos    Point
	HasLeader    bool
	Tick         uint32
	Position     Point
	Velocity     Point
	TaskCounts   map[TaskStatus]int
}

// snapshotLocked builds a Snapshot from tick-owned state. Must only be
// called from the tick goroutine (i.e. from within Tick), or from NewNode
// before the node is shared.
func (n *Node) snapshotLocked() Snapshot {
	counts := map[TaskStatus]int{}
	for _, t := range n.tasks {
		counts[t.Status]++
	}
	leaderID, hasLeader := n.leaderIdentity()
	leaderPos, _ := n.leaderPosition()
	return Snapshot{
		ID:         n.ID,
		Role:       n.Role,
		LeaderID:   leaderID,
		LeaderPos:  leaderPos,
		HasLeader:  hasLeader,
		Tick:       n.tick,
		Position:   n.kinematics.Position,
		Velocity:   n.kinematics.Velocity,
		TaskCounts: counts,
	}
}

// refreshSnapshot publishes the current tick-owned state for Snapshot to
// read. Called once at the end of every Tick.
func (n *Node) refreshSnapshot() {
	snap := n.snapshotLocked()
	n.snapMu.Lock()
	n.cachedSnapshot = snap
	n.snapMu.Unlock()
}

// Snapshot returns a copy of the node's state as of the end of the most
// recently completed tick (or as constructed, before the first tick). Safe
// to call from any goroutine.
func (n *Node) Snapshot() Snapshot {
	n.snapMu.Lock()
	defer n.snapMu.Unlock()
	return n.cachedSnapshot
}
