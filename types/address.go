package types

import "time"

// Address is a postal address attached to a contact.
// Every location field is optional.
type Address struct {
	ID        int64 `json:"id" db:"id"`
	ContactID int64 `json:"contact_id" db:"contact_id"`

	Street     *string `json:"street" db:"street"`
	City       *string `json:"city" db:"city"`
	Province   *string `json:"province" db:"province"`
	Country    *string `json:"country" db:"country"`
	PostalCode *string `json:"postal_code" db:"postal_code"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
