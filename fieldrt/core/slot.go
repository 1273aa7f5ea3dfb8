package core

type SlotState int

const (
	SlotPending SlotState = iota
	SlotReady
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotPending:
		return "pending"
	case SlotReady:
		return "ready"
	case SlotFailed:
		return "failed"
	}
	return "unknown"
}

// ParticleSlot holds the particle set that arrives asynchronously after an image load.
// It starts pending and settles exactly once, to ready or failed.
type ParticleSlot struct {
	state SlotState
	set   *ParticleSet
	err   error
}

// Fill settles the slot with a set. Returns false if the slot was already settled.
func (s *ParticleSlot) Fill(set *ParticleSet) bool {
	if s.state != SlotPending {
		return false
	}
	s.state = SlotReady
	s.set = set
	return true
}

// Fail settles the slot with an error. Returns false if the slot was already settled.
func (s *ParticleSlot) Fail(err error) bool {
	if s.state != SlotPending {
		return false
	}
	s.state = SlotFailed
	s.err = err
	return true
}

func (s *ParticleSlot) State() SlotState { return s.state }
func (s *ParticleSlot) Err() error       { return s.err }

// Ready returns the set once the slot is filled.
func (s *ParticleSlot) Ready() (*ParticleSet, bool) {
	if s.state != SlotReady {
		return nil, false
	}
	return s.set, true
}
