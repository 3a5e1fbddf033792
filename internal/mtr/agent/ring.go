package agent

// stateRing is a fixed-capacity ring of states that is always full: it is
// seeded with sentinels, so pushing always evicts the oldest entry.
type stateRing struct {
	data []AgentState
	pos  int // index of the oldest entry
}

func newStateRing(uuid string, capacity int) *stateRing {
	data := make([]AgentState, capacity)
	for i := range data {
		data[i] = SentinelState(uuid)
	}
	return &stateRing{data: data}
}

// push overwrites the oldest entry.
func (r *stateRing) push(s AgentState) {
	r.data[r.pos] = s
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
	}
}

func (r *stateRing) len() int { return len(r.data) }

// latest returns the most recently pushed state.
func (r *stateRing) latest() AgentState {
	i := r.pos - 1
	if i < 0 {
		i = len(r.data) - 1
	}
	return r.data[i]
}

// slice returns the buffer contents oldest first.
func (r *stateRing) slice() []AgentState {
	out := make([]AgentState, len(r.data))
	n := copy(out, r.data[r.pos:])
	copy(out[n:], r.data[:r.pos])
	return out
}
