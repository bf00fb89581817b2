package ner

import "sync/atomic"

// State is the availability of the NER service.
type State int32

const (
	StateUnknown State = iota
	StateAvailable
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// AvailabilityCell is a read-mostly atomic availability flag. A stale
// value costs at most one extra failed call before the next probe or
// opportunistic demotion corrects it.
type AvailabilityCell struct {
	v atomic.Int32
}

func (c *AvailabilityCell) Get() State {
	return State(c.v.Load())
}

func (c *AvailabilityCell) Set(s State) {
	c.v.Store(int32(s))
}
