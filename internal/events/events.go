package events

import "time"

// Event types
const (
	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"
)

// AccountEventsStream is the Redis stream account lifecycle events go to.
const AccountEventsStream = "account.events"

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// AccountChangedEvent is the payload of account.created and account.updated.
type AccountChangedEvent struct {
	AccountID  int64  `json:"accountId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	DateJoined string `json:"dateJoined"`
}

type AccountDeletedEvent struct {
	AccountID int64 `json:"accountId"`
}
