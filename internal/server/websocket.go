package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/michaelbrown/runcheck/internal/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, no cross-origin concerns
	},
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type  string       `json:"type"`
	Error string       `json:"error,omitempty"`
	Run   *storage.Run `json:"run,omitempty"`
}

// handleExecuteWS streams run lifecycle events: the client sends
// execute requests (same shape as POST /api/execute) and receives a
// "started" event when the execution is admitted and a "result" event
// when it finishes.
func (s *Server) handleExecuteWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req executeRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Printf("websocket read error: %v", err)
			return
		}

		wsWriteJSON(conn, wsOutgoing{Type: "started"})

		run, err := s.doExecute(r.Context(), req)
		if err != nil {
			wsWriteJSON(conn, wsOutgoing{Type: "error", Error: err.Error()})
			continue
		}

		wsWriteJSON(conn, wsOutgoing{Type: "result", Run: run})
	}
}

func wsWriteJSON(conn *websocket.Conn, msg wsOutgoing) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}
