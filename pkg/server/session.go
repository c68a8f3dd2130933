package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"goldbox-rpg/pkg/battle"
)

const (
	// sessionTimeout is how long a PlayerSession may sit idle before
	// cleanupExpiredSessions reclaims it.
	sessionTimeout = 30 * time.Minute
	// sessionCleanupInterval is how often the background sweep runs.
	sessionCleanupInterval = 5 * time.Minute
	// MessageChanBufferSize bounds how many undelivered log lines queue
	// for a connected WebSocket before safeSendMessage starts dropping.
	MessageChanBufferSize = 64
	// MessageSendTimeout bounds how long safeSendMessage blocks before
	// giving up on a slow client.
	MessageSendTimeout = 2 * time.Second
)

// PlayerSession is one connected client, identified by a cookie set on
// first contact. refCount keeps a session alive while a handler or
// WebSocket loop is actively using it, so the cleanup sweep never yanks
// state out from under an in-flight request.
type PlayerSession struct {
	SessionID   string
	PlayerID    string
	CreatedAt   time.Time
	LastActive  time.Time
	MessageChan chan []byte

	mu     sync.Mutex
	WSConn wsConn

	refCount int32
}

// wsConn is satisfied by *websocket.Conn; declared as an interface here
// so session.go doesn't need to import gorilla/websocket directly.
type wsConn interface {
	Close() error
}

func (s *PlayerSession) addRef()  { atomic.AddInt32(&s.refCount, 1) }
func (s *PlayerSession) release() { atomic.AddInt32(&s.refCount, -1) }
func (s *PlayerSession) isInUse() bool {
	return atomic.LoadInt32(&s.refCount) > 0
}

// safeSendMessage attempts to queue message for delivery over session's
// WebSocket without blocking indefinitely. If the channel stays full past
// MessageSendTimeout, the message is dropped to keep one slow client from
// backing up the battle-log broadcaster.
func safeSendMessage(session *PlayerSession, message []byte) bool {
	if session == nil || session.MessageChan == nil {
		return false
	}
	select {
	case session.MessageChan <- message:
		return true
	case <-time.After(MessageSendTimeout):
		logrus.WithField("session_id", session.SessionID).Warn("message dropped: channel full")
		return false
	}
}

// BattleSession pairs one in-memory Battle with the players allowed to
// act in it and the set of log listeners currently following it.
// RunTurn calls against the same Battle are serialized through mu, so
// concurrent choice submissions for different Mons in one turn don't
// race the scheduler.
type BattleSession struct {
	ID      string
	Battle  *battle.Battle
	Players map[string]battle.PlayerRef // control-surface player id -> battle.PlayerRef

	mu        sync.Mutex
	pending   map[battle.PlayerRef]battle.Choice
	listeners map[string]*PlayerSession
	lastLine  int
}

// NewBattleSession wraps b under a fresh battle id.
func NewBattleSession(b *battle.Battle) *BattleSession {
	return &BattleSession{
		ID:        uuid.New().String(),
		Battle:    b,
		Players:   make(map[string]battle.PlayerRef),
		pending:   make(map[battle.PlayerRef]battle.Choice),
		listeners: make(map[string]*PlayerSession),
	}
}

// SubmitChoice records playerID's choice for this turn, validating it
// against current battle state without mutating anything, then runs the
// turn once every registered player has submitted (spec.md §6's "battle
// advances only once all required choices have arrived").
func (bs *BattleSession) SubmitChoice(playerID string, c battle.Choice) error {
	if err := bs.Battle.ValidateChoice(playerID, c); err != nil {
		return err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	ref, ok := bs.Players[playerID]
	if !ok {
		return battle.NewInvalidChoiceError(playerID, "unknown player")
	}
	bs.pending[ref] = c

	if len(bs.pending) < len(bs.Players) {
		return nil
	}

	choices := make([]battle.Choice, 0, len(bs.pending))
	for _, ch := range bs.pending {
		choices = append(choices, ch)
	}
	bs.pending = make(map[battle.PlayerRef]battle.Choice)
	bs.Battle.RunTurn(choices)
	bs.broadcastNewLines()
	return nil
}

// broadcastNewLines pushes every battle-log line appended since the last
// broadcast to every connected listener. Must be called with mu held.
func (bs *BattleSession) broadcastNewLines() {
	lines := bs.Battle.Log.Lines()
	for _, line := range lines[bs.lastLine:] {
		msg := []byte(line)
		for _, l := range bs.listeners {
			safeSendMessage(l, msg)
		}
	}
	bs.lastLine = len(lines)
}

// addListener registers session to receive future battle-log broadcasts
// and replays every line recorded so far.
func (bs *BattleSession) addListener(session *PlayerSession) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.listeners[session.SessionID] = session
	for _, line := range bs.Battle.Log.Lines() {
		safeSendMessage(session, []byte(line))
	}
}

func (bs *BattleSession) removeListener(sessionID string) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	delete(bs.listeners, sessionID)
}

// getOrCreateSession retrieves the caller's PlayerSession from its
// session_id cookie, or mints a new one.
func (s *Server) getOrCreateSession(w http.ResponseWriter, r *http.Request) *PlayerSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie("session_id"); err == nil {
		if session, ok := s.sessions[cookie.Value]; ok {
			session.LastActive = time.Now()
			session.addRef()
			return session
		}
	}

	sessionID := uuid.New().String()
	session := &PlayerSession{
		SessionID:   sessionID,
		CreatedAt:   time.Now(),
		LastActive:  time.Now(),
		MessageChan: make(chan []byte, MessageChanBufferSize),
	}
	session.addRef()
	s.sessions[sessionID] = session
	s.metrics.UpdateActiveSessions(len(s.sessions))

	isSecure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionTimeout.Seconds()),
		SameSite: http.SameSiteStrictMode,
		Secure:   isSecure,
	})
	return session
}

func (s *Server) startSessionCleanup() {
	ticker := time.NewTicker(sessionCleanupInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.cleanupExpiredSessions()
			case <-s.done:
				ticker.Stop()
				return
			}
		}
	}()
}

func (s *Server) cleanupExpiredSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, session := range s.sessions {
		if now.Sub(session.LastActive) <= sessionTimeout || session.isInUse() {
			continue
		}
		session.mu.Lock()
		if session.WSConn != nil {
			session.WSConn.Close()
		}
		session.mu.Unlock()
		delete(s.sessions, id)
	}
	s.metrics.UpdateActiveSessions(len(s.sessions))
}
