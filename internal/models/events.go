package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType names an authentication activity event.
type ActivityType string

const (
	ActivityUserRegistered ActivityType = "user.registered"
	ActivityLoginSucceeded ActivityType = "login.succeeded"
	ActivityLoginFailed    ActivityType = "login.failed"
	ActivityUserUpdated    ActivityType = "user.updated"
)

// ActivityEvent is published to the activity queue. Reason is internal
// diagnostics and is never returned to API clients.
type ActivityEvent struct {
	ID         uuid.UUID    `json:"id"`
	Type       ActivityType `json:"type"`
	UserID     *uuid.UUID   `json:"user_id,omitempty"`
	Email      string       `json:"email,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewActivityEvent stamps a fresh event.
func NewActivityEvent(t ActivityType, userID *uuid.UUID, email, reason string) ActivityEvent {
	return ActivityEvent{
		ID:         uuid.New(),
		Type:       t,
		UserID:     userID,
		Email:      email,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
