package adminclient

import "sync"

// State is where a control's last mutation stands.
type State int

const (
	Idle State = iota
	Pending
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// Mutations tracks one state per control key, e.g. "package:<id>:status".
// A control is disabled while its state is Pending.
type Mutations struct {
	mu     sync.Mutex
	states map[string]State
}

// Begin moves key to Pending, or fails with ErrInFlight if it already is.
func (m *Mutations) Begin(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = make(map[string]State)
	}
	if m.states[key] == Pending {
		return ErrInFlight
	}
	m.states[key] = Pending
	return nil
}

// Settle ends the pending mutation: Committed when err is nil, RolledBack
// otherwise.
func (m *Mutations) Settle(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = make(map[string]State)
	}
	if err != nil {
		m.states[key] = RolledBack
		return
	}
	m.states[key] = Committed
}

func (m *Mutations) State(key string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[key]
}

// Busy reports whether key has a request in flight.
func (m *Mutations) Busy(key string) bool {
	return m.State(key) == Pending
}
