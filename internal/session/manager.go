package session

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager tracks the live session of each passage. A passage has at most one.
type Manager struct {
	log *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(log *logrus.Logger) *Manager {
	return &Manager{
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Register stores s for its passage and closes the session it replaces.
func (m *Manager) Register(s *Session) {
	id := s.Passage().ID

	m.mu.Lock()
	previous := m.sessions[id]
	m.sessions[id] = s
	m.mu.Unlock()

	if previous != nil && previous != s {
		m.log.WithFields(logrus.Fields{
			"passage_id": id,
		}).Info("Replacing live session")
		previous.Close()
	}
}

// Remove forgets s unless it was already replaced.
func (m *Manager) Remove(s *Session) {
	id := s.Passage().ID

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[id] == s {
		delete(m.sessions, id)
	}
}

func (m *Manager) Get(passageID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[passageID]
	return s, ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every live session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
