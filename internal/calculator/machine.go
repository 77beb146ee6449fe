package calculator

import "sync"

// Machine owns the single state value for one calculator screen. Actions go
// through Dispatch; the resulting state is readable via Current and pushed
// to subscribers after every dispatch. The transition logic itself lives in
// Transition and stays pure; Machine only adds the ownership and observer
// plumbing.
type Machine struct {
	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewMachine returns a machine holding the initial empty state.
func NewMachine() *Machine {
	return &Machine{subs: make(map[int]func(State))}
}

// Current returns a snapshot of the machine's state. State is a value type,
// so the caller may retain it without further locking.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Dispatch applies one action and returns the resulting state. Subscribers
// are notified with the new state after the transition commits, outside the
// machine's lock, so a subscriber may call back into the machine.
func (m *Machine) Dispatch(a Action) State {
	m.mu.Lock()
	m.state = Transition(m.state, a)
	next := m.state
	notify := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		notify = append(notify, fn)
	}
	m.mu.Unlock()

	for _, fn := range notify {
		fn(next)
	}
	return next
}

// Subscribe registers fn to be called with the state produced by every
// subsequent Dispatch, including no-op transitions. The returned function
// removes the subscription and is safe to call more than once.
func (m *Machine) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
