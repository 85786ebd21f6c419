package node

// motion.go — formation target derivation and the artificial-potential-
// field integrator.
//
// The teacher repo has no motion analogue; this follows spec.md §4.4
// directly, structured the way the teacher structures its other per-tick
// subsystems: small pure helpers operating on Node's embedded state,
// called once per tick from tick.go.

import "math"

const (
	kAttractive      = 1.0
	arrivalTolerance = 0.5 // meters; attraction zeroes out within this radius

	obstacleInfluenceRadius = 5.0
	kRepulsive              = 50.0
	minClearance            = 0.001 // meters; clamps division blowing up at contact

	neighborSeparationRadius = 2.0
	kSeparation              = 20.0

	formationOffset = 2.0 // meters per rank, in the V-formation slot
)

func dist(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// unit returns the unit vector from b to a, i.e. direction pointing away
// from b. Falls back to the zero vector if a and b coincide.
func unit(a, b Point) Point {
	d := dist(a, b)
	if d < 1e-9 {
		return Point{}
	}
	return a.Sub(b).Scale(1 / d)
}

// formationTarget derives this node's V-formation slot behind the leader,
// per spec.md §4.4: offset_x = -2*rank, offset_y = +2*rank if rank even
// else -2*rank.
func formationTarget(leaderPos Point, rank uint8) Point {
	offsetX := -formationOffset * float64(rank)
	offsetY := formationOffset * float64(rank)
	if rank%2 != 0 {
		offsetY = -offsetY
	}
	return leaderPos.Add(Point{X: offsetX, Y: offsetY})
}

// updateTarget recomputes the motion target for a Follower tracking the
// leader's formation slot. A Leader (or a Follower with no leader view
// yet) keeps whatever target was set externally via SetTarget; an unset
// target simply skips the physics step, per spec.md §4.4.
func (n *Node) updateTarget() {
	if n.Role != RoleFollower {
		return
	}
	leaderPos, known := n.leaderPosition()
	if !known {
		return
	}
	t := formationTarget(leaderPos, n.ID)
	n.kinematics.Target = &t
}

// attractiveForce pulls toward the target, zeroed within arrival tolerance.
func (n *Node) attractiveForce() Point {
	target := n.kinematics.Target
	if target == nil {
		return Point{}
	}
	if dist(n.kinematics.Position, *target) <= arrivalTolerance {
		return Point{}
	}
	return target.Sub(n.kinematics.Position).Scale(kAttractive)
}

// repulsiveForce sums the per-obstacle repulsion within influence radius.
func (n *Node) repulsiveForce() Point {
	total := Point{}
	for _, o := range n.obstacles {
		center := Point{X: o.X, Y: o.Y}
		d := dist(n.kinematics.Position, center) - o.R
		if d < minClearance {
			d = minClearance
		}
		if d >= obstacleInfluenceRadius {
			continue
		}
		magnitude := kRepulsive * (1/d - 1/obstacleInfluenceRadius) / (d * d)
		dir := unit(n.kinematics.Position, center)
		total = total.Add(dir.Scale(magnitude))
	}
	return total
}

// separationForce sums the per-neighbor separation for neighbors closer
// than neighborSeparationRadius.
func (n *Node) separationForce() Point {
	total := Point{}
	for _, nb := range n.neighbors {
		pos := Point{X: nb.X, Y: nb.Y}
		d := dist(n.kinematics.Position, pos)
		if d >= neighborSeparationRadius {
			continue
		}
		if d < minClearance {
			d = minClearance
		}
		magnitude := kSeparation / (d * d)
		dir := unit(n.kinematics.Position, pos)
		total = total.Add(dir.Scale(magnitude))
	}
	return total
}

// stepMotion computes the total potential-field force, treats it as a
// commanded velocity clamped to max speed (holonomic first-order model),
// and integrates position forward by dt.
func (n *Node) stepMotion(dt float64) {
	n.updateTarget()
	if n.kinematics.Target == nil {
		return
	}

	total := n.attractiveForce().Add(n.repulsiveForce()).Add(n.separationForce())
	if speed := total.Norm(); speed > n.kinematics.MaxSpeed {
		total = total.Scale(n.kinematics.MaxSpeed / speed)
	}

	n.kinematics.Velocity = total
	n.kinematics.Position = n.kinematics.Position.Add(total.Scale(dt))
}
