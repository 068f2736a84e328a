package handlers

import (
	"io"
	"net/http"
	"time"

	"nekocare/internal/auth"
	"nekocare/internal/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingInterval = 25 * time.Second

type RealtimeHandler struct {
	hub *realtime.Hub
	log *zap.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, log *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, log: log}
}

// Stream godoc
// @Summary      Change stream for the household
// @Description  Server-sent events. The event name is the changed table, the data a realtime event. A ping event is sent periodically.
// @Tags         realtime
// @Produce      text/event-stream
// @Security     CookieAuth
// @Success      200
// @Router       /realtime [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	hid := auth.HouseholdIDFromContext(c)
	sub := h.hub.Subscribe(hid)
	defer sub.Close()

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	h.log.Debug("realtime subscribe", zap.Int64("household_id", hid))
	c.SSEvent("ready", gin.H{"household_id": hid})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(ev.Table, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
