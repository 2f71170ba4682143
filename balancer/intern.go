package balancer

import "github.com/katalvlaran/flowbalance/state"

// handle is the interned identity of a canonical state within one search.
type handle int32

const noHandle handle = -1

// interner assigns each distinct canonical state a dense handle so that the
// frontiers and the cost and parent tables never hash or copy whole value
// sequences after the first sighting.
type interner struct {
	ids    map[string]handle
	states []state.State
}

func newInterner() *interner {
	return &interner{ids: make(map[string]handle)}
}

// intern returns the handle of s, registering it on first sight.
// s must be canonical and must not be mutated afterwards.
func (in *interner) intern(s state.State) handle {
	key := s.Key()
	if h, ok := in.ids[key]; ok {
		return h
	}
	h := handle(len(in.states))
	in.ids[key] = h
	in.states = append(in.states, s)

	return h
}

func (in *interner) state(h handle) state.State { return in.states[h] }

func (in *interner) len() int { return len(in.states) }
