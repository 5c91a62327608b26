package types

import "time"

// Contact is an entry in a user's address book.
type Contact struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`

	Name  string  `json:"name" db:"name"`
	Email *string `json:"email" db:"email"`
	Phone *string `json:"phone" db:"phone"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContactFilter narrows a contact search. Empty fields do not filter.
// Non-empty fields match case-insensitively as substrings and are combined with AND.
type ContactFilter struct {
	Name  string
	Email string
	Phone string
}

// ContactPage is one page of a contact search.
type ContactPage struct {
	Items      []Contact
	Page       int
	Size       int
	Total      int
	TotalPages int
}
