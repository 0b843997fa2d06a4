package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventUserLoggedOut   EventType = "user_logged_out"
	EventUserCreated     EventType = "user_created"
	EventUserUpdated     EventType = "user_updated"
	EventUserDeleted     EventType = "user_deleted"
	EventUserActivated   EventType = "user_activated"
	EventUserDeactivated EventType = "user_deactivated"
)

// AllEventTypes lists every lifecycle event, in declaration order.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventUserLoggedIn,
	EventUserLoggedOut,
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
	EventUserActivated,
	EventUserDeactivated,
}

// Actor identifies who triggered an event. Nil on events a user triggers
// about themselves without a session (login, registration).
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Actor     *Actor      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, userID int64, actor *Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ActorFromUser builds an Actor for u, or nil when u is nil.
func ActorFromUser(u *domain.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{UserID: u.ID, Role: u.Role}
}

// UserChangedPayload lists the fields an update touched.
type UserChangedPayload struct {
	Fields []string `json:"fields"`
}

// UserAccountPayload carries the account state after registration or creation.
type UserAccountPayload struct {
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	IsActive bool        `json:"is_active"`
}
