package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// upgrader builds a per-request websocket.Upgrader whose CheckOrigin
// defers to the server's configured allowed-origins list (spec.md §6
// doesn't mandate a transport, but every teacher server in this codebase
// validates WebSocket origins the same way).
func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.config.OriginAllowed(origin)
			if !allowed {
				logrus.WithField("origin", origin).Warn("websocket connection rejected: origin not allowed")
			}
			return allowed
		},
	}
}

// wsChoiceMessage is the wire shape of a choice submitted over an open
// battle-log WebSocket, alongside plain log-streaming.
type wsChoiceMessage struct {
	Mon      int    `json:"mon"`
	Kind     string `json:"kind"`
	MoveID   string `json:"move_id,omitempty"`
	Target   int    `json:"target,omitempty"`
	SwitchTo int    `json:"switch_to,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
}

// HandleBattleWebSocket upgrades the connection, registers it as a
// listener on the named battle's log, and accepts choice submissions for
// playerID for the remainder of the connection's life.
func (s *Server) HandleBattleWebSocket(w http.ResponseWriter, r *http.Request, battleID, playerID string) {
	bs, ok := s.getBattle(battleID)
	if !ok {
		http.Error(w, "no such battle", http.StatusNotFound)
		return
	}

	session := s.getOrCreateSession(w, r)
	defer s.releaseSession(session)

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	session.mu.Lock()
	session.WSConn = conn
	session.mu.Unlock()

	bs.addListener(session)
	defer bs.removeListener(session.SessionID)

	go func() {
		for msg := range session.MessageChan {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		var msg wsChoiceMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		choice, err := choiceFromWire(msg)
		if err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}
		if err := bs.SubmitChoice(playerID, choice); err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
		}
	}
}

func (s *Server) releaseSession(session *PlayerSession) {
	if session != nil {
		session.release()
	}
}
