package models

// Status is the pool lifecycle state.
//
// Transitions: alive → disabled → decommissioned, each exactly once.
// A decommissioned pool is a tombstone: readable, never mutable.
type Status string

const (
	StatusAlive          Status = "alive"
	StatusDisabled       Status = "disabled"
	StatusDecommissioned Status = "decommissioned"
)

func (s Status) IsAlive() bool {
	return s == StatusAlive
}

func (s Status) IsDecommissioned() bool {
	return s == StatusDecommissioned
}

// CanTransitionTo reports whether next directly follows s.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusAlive:
		return next == StatusDisabled
	case StatusDisabled:
		return next == StatusDecommissioned
	default:
		return false
	}
}
