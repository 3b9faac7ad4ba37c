// Package ws serves live URL checks over a websocket, one result per
// message, for UIs that check while the user types.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veil-waf/framegate/internal/classify"
	"github.com/veil-waf/framegate/internal/urlrisk"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler answers {"url": ...} messages with the checker's result.
type Handler struct {
	checker *classify.Checker
	logger  *slog.Logger
}

// NewHandler creates a websocket Handler.
func NewHandler(checker *classify.Checker, logger *slog.Logger) *Handler {
	return &Handler{checker: checker, logger: logger}
}

type resultMessage struct {
	Type       string           `json:"type"`
	URL        string           `json:"url"`
	Status     string           `json:"status"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason,omitempty"`
	Verdict    *urlrisk.Verdict `json:"verdict,omitempty"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleWS upgrades the connection and serves checks until the client goes
// away. Messages are answered in the order they arrive.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket closed", "err", err)
			}
			return
		}

		var req struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			if err := sendJSON(conn, errorMessage{Type: "error", Error: "invalid JSON message"}); err != nil {
				return
			}
			continue
		}

		res := h.checker.Check(ctx, req.URL)
		msg := resultMessage{
			Type:       "result",
			URL:        req.URL,
			Status:     res.Status,
			Confidence: res.Confidence,
			Reason:     res.Reason,
			Verdict:    res.Verdict,
		}
		if err := sendJSON(conn, msg); err != nil {
			h.logger.Debug("websocket write failed", "err", err)
			return
		}
	}
}

func sendJSON(conn *websocket.Conn, v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
