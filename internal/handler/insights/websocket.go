package insights

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/budgetly/budgetly/backend/pkg/utils"
)

type inboundFrame struct {
	Type   string          `json:"type"`
	Prompt json.RawMessage `json:"prompt,omitempty"`
}

type outboundFrame struct {
	Type      string `json:"type"`
	Response  string `json:"response,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket keeps a socket open for one user and runs an exchange per
// "prompt" frame, with the same validation and history as /generate.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[insights] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[insights] websocket opened for user=%s", userID)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	go h.pingLoop(ctx, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[insights] websocket read error for user=%s: %v", userID, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if err := writeFrame(conn, outboundFrame{Type: "error", Error: "invalid message"}); err != nil {
				return
			}
			continue
		}

		var reply outboundFrame
		switch frame.Type {
		case "prompt":
			reply = h.promptFrame(r, userID, frame.Prompt)
		case "reset":
			h.svc.Reset(userID)
			reply = outboundFrame{Type: "reset", Message: "Conversation reset successfully"}
		default:
			reply = outboundFrame{Type: "error", Error: "unsupported message type"}
		}

		if err := writeFrame(conn, reply); err != nil {
			log.Printf("[insights] websocket write error for user=%s: %v", userID, err)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (h *Handler) promptFrame(r *http.Request, userID string, rawPrompt json.RawMessage) outboundFrame {
	f := utils.Fields{"userId": mustQuote(userID)}
	if rawPrompt != nil {
		f["prompt"] = rawPrompt
	}

	_, prompt, message := validateGenerate(f)
	if message != "" {
		return outboundFrame{Type: "error", Error: message}
	}

	response, err := h.svc.Generate(r.Context(), userID, prompt)
	if err != nil {
		return outboundFrame{Type: "error", Error: err.Error()}
	}
	return outboundFrame{Type: "response", Response: response}
}

// pingLoop 定期发送ping，客户端的pong会延长读超时
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frame outboundFrame) error {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func mustQuote(s string) json.RawMessage {
	out, _ := json.Marshal(s)
	return out
}
