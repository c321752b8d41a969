package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"chess-backend/internal/eventbus"
	"chess-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams a user's analysis-completion events over SSE
// at GET /api/games/events/analysis.
type EventsHandler struct {
	bus *eventbus.Bus
}

func NewEventsHandler(bus *eventbus.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// pollInterval bounds how long one Poll call blocks, so the handler can
// still notice client disconnects and send "keepalive" events.
const pollInterval = 15 * time.Second

// AnalysisStream handles GET /api/games/events/analysis.
func (h *EventsHandler) AnalysisStream(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sub := h.bus.Subscribe(c.Request.Context(), eventbus.AnalysisChannel(userID))
	defer sub.Close()

	clientGone := c.Writer.CloseNotify()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		default:
		}

		msg := sub.Poll(pollInterval)
		if msg == nil {
			c.SSEvent("keepalive", "")
			return true
		}

		var evt eventbus.AnalysisCompletedEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			return true
		}
		c.SSEvent("message", evt)
		return true
	})
}
