package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quiz-attempt-service/internal/app"
)

// WSHandler drives one attempt over a websocket: select and advance in, attempt views out.
type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionID string `json:"optionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage[any] {
	status, message := statusFor(err)
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Status: status, Message: message}}
}

// ServeWS upgrades the request and serves the attempt named by the attemptId query parameter.
func (h *WSHandler) ServeWS(c *gin.Context) {
	attemptID := c.Query("attemptId")
	if attemptID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing attemptId"})
		return
	}
	ctx := c.Request.Context()
	p := principal(c)

	session, err := h.service.Attempt(ctx, p, attemptID)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "error", err, "attempt_id", attemptID)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "attempt", Payload: session.View()}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.OptionID == "" {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Status: http.StatusBadRequest, Message: "invalid select payload"}}
				continue
			}
			session, err := h.service.Select(ctx, p, attemptID, payload.OptionID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "attempt", Payload: session.View()}
		case "advance":
			result, err := h.service.Advance(ctx, p, attemptID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			if result.Completion != nil {
				send <- outboundMessage[any]{Type: "completed", Payload: attemptResponse{
					Attempt:    result.Session.View(),
					Completion: result.Completion,
				}}
				continue
			}
			send <- outboundMessage[any]{Type: "attempt", Payload: result.Session.View()}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Status: http.StatusBadRequest, Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}
