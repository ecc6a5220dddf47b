package game

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/turn"
	"github.com/iamasit07/connect4-engine/pkg/uid"
)

const ErrSessionNotFound domain.Error = "session not found"

// SessionSummary is the listing view of one session.
type SessionSummary struct {
	SessionID    string          `json:"sessionId"`
	Mode         domain.GameMode `json:"mode,omitempty"`
	State        turn.State      `json:"state"`
	Current      domain.Color    `json:"currentPlayer"`
	Moves        int             `json:"moves"`
	LastActivity time.Time       `json:"lastActivity"`
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session map[string]*Session // sessionID → Session
	mu      sync.RWMutex
	opts    Options
}

func NewSessionManager(opts Options) *SessionManager {
	return &SessionManager{
		Session: make(map[string]*Session),
		opts:    opts,
	}
}

func (sm *SessionManager) CreateSession() *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := NewSession(uid.GenerateSessionID(), sm.opts)
	sm.Session[session.ID] = session

	log.Printf("[SESSION] Created session %s", session.ID)
	return session
}

func (sm *SessionManager) GetSession(sessionID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[sessionID]
	return session, exists
}

// RemoveSession stops the session and forgets it, including its cached
// snapshot.
func (sm *SessionManager) RemoveSession(sessionID string) error {
	sm.mu.Lock()
	session, exists := sm.Session[sessionID]
	if !exists {
		sm.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(sm.Session, sessionID)
	sm.mu.Unlock()

	log.Printf("[SESSION] Removing session %s", sessionID)
	sm.retire(session)
	return nil
}

func (sm *SessionManager) ActiveSessions() []SessionSummary {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.Session))
	for _, session := range sm.Session {
		sessions = append(sessions, session)
	}
	sm.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		snap := session.Snapshot()
		summaries = append(summaries, SessionSummary{
			SessionID:    snap.SessionID,
			Mode:         snap.Mode,
			State:        snap.State,
			Current:      snap.Current.Color,
			Moves:        snap.Moves,
			LastActivity: snap.LastActivity,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries
}

// CleanupIdleSessions removes every session untouched for longer than maxIdle
// and returns how many were removed.
func (sm *SessionManager) CleanupIdleSessions(maxIdle time.Duration) int {
	now := time.Now()

	sm.mu.Lock()
	var stale []*Session
	for sessionID, session := range sm.Session {
		if now.Sub(session.LastActivity()) > maxIdle {
			delete(sm.Session, sessionID)
			stale = append(stale, session)
		}
	}
	sm.mu.Unlock()

	for _, session := range stale {
		sm.retire(session)
	}
	if len(stale) > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d idle game sessions", len(stale))
	}
	return len(stale)
}

func (sm *SessionManager) retire(session *Session) {
	session.Stop()
	if sm.opts.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sm.opts.Cache.DeleteSnapshot(ctx, session.ID); err != nil {
		log.Printf("[SESSION] Could not drop cached snapshot of %s: %v", session.ID, err)
	}
}
