// Package session tracks per-session conversation history so follow-up
// queries can reference earlier exchanges.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

type exchange struct {
	user      string
	assistant string
}

// Manager stores a bounded number of recent exchanges per session. It is safe
// for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string][]exchange
	maxHistory int
}

// NewManager creates a Manager keeping at most maxHistory exchanges per
// session (values < 1 fall back to 2).
func NewManager(maxHistory int) *Manager {
	if maxHistory < 1 {
		maxHistory = 2
	}
	return &Manager{
		sessions:   make(map[string][]exchange),
		maxHistory: maxHistory,
	}
}

// Create registers a new session and returns its ID.
func (m *Manager) Create() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()
	return id
}

// Append records one user/assistant exchange, evicting the oldest entry when
// the session exceeds its history bound. Unknown session IDs are created
// implicitly.
func (m *Manager) Append(id, userMessage, assistantMessage string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[id], exchange{user: userMessage, assistant: assistantMessage})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.sessions[id] = history
}

// History renders a session's exchanges as alternating "User:" and
// "Assistant:" lines, or "" for an empty or unknown session.
func (m *Manager) History(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.sessions[id]
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history)*2)
	for _, ex := range history {
		lines = append(lines, "User: "+ex.user, "Assistant: "+ex.assistant)
	}
	return strings.Join(lines, "\n")
}

// Clear removes a session and its history.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
