package app

import "sync/atomic"

// mutation tracks in-flight calls of one kind.
type mutation struct {
	inFlight atomic.Int32
}

func (m *mutation) start() func() {
	m.inFlight.Add(1)
	return func() { m.inFlight.Add(-1) }
}

func (m *mutation) pending() bool {
	return m.inFlight.Load() > 0
}
