package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smukkama/factory-monitor/internal/database"
)

// Session is the active-user context for one rendering client. It is
// replaced wholesale on role switch, never edited in place.
type Session struct {
	ID        string        `json:"id"`
	User      database.User `json:"user"`
	StartedAt time.Time     `json:"startedAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Role is the role of the session's user
func (s Session) Role() database.Role {
	return s.User.Role
}

// Can reports whether the session's role may perform action
func (s Session) Can(action Permission) bool {
	return HasPermission(s.User.Role, action)
}

// Directory resolves the user a role switch lands on
type Directory interface {
	FirstUserWithRole(role database.Role) *database.User
}

// SessionManager owns every live session
type SessionManager struct {
	sessions    map[string]Session
	directory   Directory
	mu          sync.RWMutex
	maxSessions int
	now         func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(directory Directory, maxSessions int) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]Session),
		directory:   directory,
		maxSessions: maxSessions,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a session for the first user holding role. An empty role
// means ADMIN.
func (m *SessionManager) Start(role database.Role) (Session, error) {
	if role == "" {
		role = database.RoleAdmin
	}
	user, err := m.resolve(role)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSessions {
		return Session{}, ErrMaxSessionsReached
	}

	now := m.now()
	session := Session{
		ID:        uuid.New().String(),
		User:      *user,
		StartedAt: now,
		UpdatedAt: now,
	}
	m.sessions[session.ID] = session

	return session, nil
}

// Get retrieves a session by ID
func (m *SessionManager) Get(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	return session, ok
}

// SwitchRole replaces the session's user with the first user holding role.
// On error the session is left unchanged.
func (m *SessionManager) SwitchRole(id string, role database.Role) (Session, error) {
	user, err := m.resolve(role)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	next := Session{
		ID:        current.ID,
		User:      *user,
		StartedAt: current.StartedAt,
		UpdatedAt: m.now(),
	}
	m.sessions[id] = next

	return next, nil
}

// End discards a session
func (m *SessionManager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *SessionManager) resolve(role database.Role) (*database.User, error) {
	if _, ok := rolePermissions[role]; !ok {
		return nil, ErrUnknownRole
	}
	user := m.directory.FirstUserWithRole(role)
	if user == nil {
		return nil, ErrNoUserForRole
	}
	return user, nil
}

// Count returns the number of live sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stats returns statistics about the session manager
func (m *SessionManager) Stats() SessionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byRole := make(map[database.Role]int)
	for _, s := range m.sessions {
		byRole[s.User.Role]++
	}

	return SessionStats{
		TotalSessions: len(m.sessions),
		ByRole:        byRole,
		MaxSessions:   m.maxSessions,
	}
}

// SessionStats contains statistics about the session manager
type SessionStats struct {
	TotalSessions int                   `json:"totalSessions"`
	ByRole        map[database.Role]int `json:"byRole"`
	MaxSessions   int                   `json:"maxSessions"`
}

var (
	ErrSessionNotFound    = &AuthError{"session not found"}
	ErrMaxSessionsReached = &AuthError{"maximum sessions reached"}
	ErrNoUserForRole      = &AuthError{"no user holds the requested role"}
	ErrUnknownRole        = &AuthError{"unknown role"}
)

// AuthError represents a session or role error
type AuthError struct {
	msg string
}

func (e *AuthError) Error() string {
	return e.msg
}
