package handler

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/ws"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

type subscribeMessage struct {
	Type      string `json:"type"`
	ProjectID uint   `json:"projectId"`
}

// GET /ws/tasks
//
// The client announces interest in one project with
// {"type": "SUBSCRIBE", "projectId": N}, then receives TASK_UPDATED and
// TASK_DELETED events for that project until it disconnects.
func (h *WSHandler) Tasks(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var msg subscribeMessage
	readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
	err = wsjson.Read(readCtx, conn, &msg)
	cancelRead()
	if err != nil || msg.Type != "SUBSCRIBE" || msg.ProjectID == 0 {
		_ = conn.Close(websocket.StatusPolicyViolation, "expected SUBSCRIBE message")
		return
	}

	events, unsub := h.hub.Subscribe(msg.ProjectID)
	defer unsub()

	// Drain further client frames so pings are answered and a closed peer
	// is noticed promptly.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case event, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}
