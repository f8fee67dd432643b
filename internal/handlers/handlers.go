package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Event topics.
const (
	TopicUserEvents    = "user_events"
	TopicOrderEvents   = "order_events"
	TopicProductEvents = "product_events"
)

// Publisher is the event sink handlers publish domain events to. Publishing
// is best effort: failures are logged, never surfaced to the caller.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

func publish(c echo.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
