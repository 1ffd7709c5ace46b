package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/guardian_response/internal/alarm"
	"github.com/shenikar/guardian_response/internal/synchronizer"
)

const streamAlarmBuffer = 16

// @Summary Dashboard stream
// @Description Server-sent events: "snapshot" on every projection change, "alarm" for each newly arrived incident. Requires responder JWT.
// @Tags Dashboard
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} DashboardResponse "snapshot event payload"
// @Failure 503 {object} map[string]string "Streaming disabled"
// @Router /dashboard/stream [get]
func (h *Handler) dashboardStream(c *gin.Context) {
	log := h.logger.WithField("method", "dashboardStream")
	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dashboard streaming is not configured"})
		return
	}

	ctx := c.Request.Context()
	alarms := make(chan alarm.Alarm, streamAlarmBuffer)
	notifier := alarm.Func(func(_ context.Context, a alarm.Alarm) {
		select {
		case alarms <- a:
		default:
			log.WithField("incident_id", a.IncidentID).Warn("Alarm dropped for slow stream client")
		}
	})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	err := h.sessions.Run(ctx, notifier, func(sess *synchronizer.Session) error {
		send := func() {
			c.SSEvent("snapshot", ViewToDashboardResponse(sess.Synchronizer().Snapshot()))
			c.Writer.Flush()
		}
		send()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sess.Done():
				send()
				return nil
			case a := <-alarms:
				c.SSEvent("alarm", a)
				c.Writer.Flush()
			case <-sess.Changes():
				send()
			}
		}
	})
	if err != nil {
		log.WithError(err).Warn("Dashboard stream ended with error")
		return
	}
	log.Debug("Dashboard stream closed")
}
