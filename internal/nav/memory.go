package nav

import "sync"

// Memory keeps the fragment in process, with browser-like back/forward history.
type Memory struct {
	mu      sync.Mutex
	history []string
	pos     int

	subs *subscribers
}

func NewMemory(initial string) *Memory {
	return &Memory{
		history: []string{normalize(initial)},
		subs:    newSubscribers(),
	}
}

func (m *Memory) Fragment() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[m.pos]
}

// SetFragment pushes a new history entry, dropping any forward entries.
func (m *Memory) SetFragment(fragment string) {
	fragment = normalize(fragment)

	m.mu.Lock()
	if m.history[m.pos] == fragment {
		m.mu.Unlock()
		return
	}
	m.history = append(m.history[:m.pos+1], fragment)
	m.pos++
	m.mu.Unlock()

	m.subs.broadcast(fragment)
}

func (m *Memory) Subscribe(fn func(fragment string)) func() {
	return m.subs.add(fn)
}

// Back moves one entry back in history. It reports false at the oldest entry.
func (m *Memory) Back() bool {
	return m.step(-1)
}

// Forward moves one entry forward in history. It reports false at the newest entry.
func (m *Memory) Forward() bool {
	return m.step(1)
}

func (m *Memory) step(delta int) bool {
	m.mu.Lock()
	next := m.pos + delta
	if next < 0 || next >= len(m.history) {
		m.mu.Unlock()
		return false
	}
	changed := m.history[next] != m.history[m.pos]
	m.pos = next
	fragment := m.history[next]
	m.mu.Unlock()

	if changed {
		m.subs.broadcast(fragment)
	}
	return true
}

// Subscribers returns the number of active subscriptions.
func (m *Memory) Subscribers() int {
	return m.subs.len()
}
