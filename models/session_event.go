package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionEventType names a session lifecycle transition published to the
// message broker.
type SessionEventType string

const (
	SessionEventCreated SessionEventType = "session.created"
	SessionEventRotated SessionEventType = "session.rotated"
	SessionEventEvicted SessionEventType = "session.evicted"
	SessionEventRevoked SessionEventType = "session.revoked"
)

// SessionEvent is the message body of a session lifecycle event.
// It never carries tokens or hashes.
type SessionEvent struct {
	Type       SessionEventType `json:"type"`
	SessionID  uuid.UUID        `json:"session_id"`
	UserID     uuid.UUID        `json:"user_id"`
	DeviceInfo *DeviceInfo      `json:"device_info,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewSessionEvent builds an event for s stamped with the current time.
func NewSessionEvent(eventType SessionEventType, s Session) SessionEvent {
	device := s.DeviceInfo
	return SessionEvent{
		Type:       eventType,
		SessionID:  s.ID,
		UserID:     s.UserID,
		DeviceInfo: &device,
		OccurredAt: time.Now().UTC(),
	}
}
