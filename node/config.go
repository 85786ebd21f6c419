package node

// config.go — startup parameter validation.
//
// spec.md §7: an invalid startup parameter (id out of range) is fatal at
// process start, before the tick loop runs — never a runtime error. Kept
// separate from main.go so both the CLI and tests can validate the same way,
// mirroring the teacher's main.go rank-parsing guard (main.go validates
// "Node<N>" before calling node.NewNode).

import "fmt"

// StartupParams are the externally-supplied parameters for one node.
type StartupParams struct {
	ID           int
	AgentCount   int // optional, informational only
	Capabilities []string
}

// Validate checks the parameters the core cannot make unrepresentable by
// its own types (Node.ID is a uint8, but the CLI/config layer hands us an
// int so it can report a clear error instead of silently wrapping).
func (p StartupParams) Validate() error {
	if p.ID < 0 || p.ID > 255 {
		return fmt.Errorf("node id %d out of range [0,255]", p.ID)
	}
	if p.AgentCount < 0 {
		return fmt.Errorf("agent count %d must be non-negative", p.AgentCount)
	}
	for _, c := range p.Capabilities {
		if c == "" {
			return fmt.Errorf("capability tags must be non-empty")
		}
	}
	return nil
}

// Build validates and constructs a Node. Call this exactly once at process
// start; a validation failure is meant to be fatal before the tick loop
// ever runs.
func (p StartupParams) Build() (*Node, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewNode(uint8(p.ID), NewCapabilitySet(p.Capabilities...), p.AgentCount), nil
}
