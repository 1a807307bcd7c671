package web

import (
	"context"
	"net/http"

	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// HandleFeed relays the live feed of the backend for the topic q. Relayed
// activities are archived.
func (s *Server) HandleFeed(c *gin.Context) {
	filter := domain.Filter{Q: c.Query("q")}

	stream, err := s.dialer.Dial(c.Request.Context(), filter)
	if err != nil {
		s.logger.Warn("Could not open upstream feed", "q", filter.Q, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "live feed unavailable"})
		return
	}
	defer stream.Close()

	// the stream blocks in a read, closing it is the only way out
	stop := context.AfterFunc(c.Request.Context(), func() { stream.Close() })
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	s.logger.Debug("Relaying feed", "q", filter.Q, "client", c.ClientIP())

	for a := range stream.Activities() {
		if err := sse.Encode(c.Writer, sse.Event{Event: feed.EventActivity, Id: a.ID, Data: a}); err != nil {
			s.logger.Debug("Feed client gone", "err", err)
			return
		}
		c.Writer.Flush()

		if s.archive != nil {
			if _, err := s.archive.SaveActivities([]domain.Activity{a}); err != nil {
				s.logger.Warn("Could not archive activity", "id", a.ID, "err", err)
			}
		}
	}

	s.logger.Debug("Upstream feed ended", "q", filter.Q)
}
