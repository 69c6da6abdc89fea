package session

import (
	"encoding/json"
	"sync"
)

// IdentityManager is the externally-owned store for provider settings and
// validated sessions. Provider settings are keyed by issuer URL; sessions
// by (relying party, username). Implementations are plain get/put
// collaborators with no transactional guarantees.
type IdentityManager interface {
	// GetProviderSettings returns persisted settings for the issuer, or
	// nil when none exist.
	GetProviderSettings(issuer string) json.RawMessage

	// AddProviderSettings persists settings for the issuer.
	AddProviderSettings(issuer string, settings json.RawMessage)

	// GetSession returns the cached session for the user at this relying
	// party, or nil when none exists.
	GetSession(rp RelyingParty, username string) Session

	// AddSession registers a validated session for the user. At most one
	// session per (relying party, username) pair is kept.
	AddSession(rp RelyingParty, username string, s Session)
}

// memoryIdentityManager is a mutex-guarded in-memory IdentityManager.
type memoryIdentityManager struct {
	mu       sync.RWMutex
	settings map[string]json.RawMessage
	sessions map[string]Session
}

// NewMemoryIdentityManager creates an in-memory identity manager, suitable
// for tests and single-process use.
func NewMemoryIdentityManager() IdentityManager {
	return &memoryIdentityManager{
		settings: make(map[string]json.RawMessage),
		sessions: make(map[string]Session),
	}
}

func (m *memoryIdentityManager) GetProviderSettings(issuer string) json.RawMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[issuer]
}

func (m *memoryIdentityManager) AddProviderSettings(issuer string, settings json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[issuer] = settings
}

func (m *memoryIdentityManager) GetSession(rp RelyingParty, username string) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionKey(rp.Issuer(), username)]
}

func (m *memoryIdentityManager) AddSession(rp RelyingParty, username string, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionKey(rp.Issuer(), username)] = s
}

// sessionKey joins issuer and username with a separator neither can contain.
func sessionKey(issuer, username string) string {
	return issuer + "\x00" + username
}
