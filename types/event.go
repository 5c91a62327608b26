package types

import "time"

// EventType names a change to a user's data.
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventUserUpdated    EventType = "user.updated"
	EventContactCreated EventType = "contact.created"
	EventContactUpdated EventType = "contact.updated"
	EventContactDeleted EventType = "contact.deleted"
	EventAddressCreated EventType = "address.created"
	EventAddressUpdated EventType = "address.updated"
	EventAddressDeleted EventType = "address.deleted"
)

// Event is the payload published to the events channel after a successful mutation.
// It carries identifiers only; consumers fetch current state through the API.
type Event struct {
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id"`
	ContactID  int64     `json:"contact_id,omitempty"`
	AddressID  int64     `json:"address_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
