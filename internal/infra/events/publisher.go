// Package events publishes realtime notifications through PostgreSQL
// LISTEN/NOTIFY.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// Channel is the NOTIFY channel clients listen on.
const Channel = "crm_events"

// maxPayload is the NOTIFY payload limit of PostgreSQL minus headroom.
const maxPayload = 7900

// Event is one realtime notification.
type Event struct {
	Type    string    `json:"type"`
	Doctype string    `json:"doctype,omitempty"`
	Name    string    `json:"name,omitempty"`
	Status  string    `json:"status,omitempty"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher struct {
	sql     infra.SQLExecutor
	channel string
	now     func() time.Time
}

func NewPublisher(sql infra.SQLExecutor) *Publisher {
	return &Publisher{sql: sql, channel: Channel, now: time.Now}
}

// Publish sends ev on the channel. Events too large for NOTIFY are rejected.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = p.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: encode: %w", err)
	}
	if len(payload) > maxPayload {
		return fmt.Errorf("events: payload of %d bytes exceeds notify limit", len(payload))
	}
	if _, err := p.sql.Exec(ctx, sqlinline.QPublishEvent, p.channel, string(payload)); err != nil {
		return fmt.Errorf("events: notify: %w", err)
	}
	return nil
}
