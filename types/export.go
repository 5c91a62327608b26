package types

import "time"

// Export describes a stored snapshot of a user's contacts.
type Export struct {
	// ID is the public identifier used in export URLs.
	ID string `json:"id"`

	// Key is the object key in the export bucket.
	Key string `json:"key"`

	// Contacts is the number of contacts in the snapshot.
	Contacts int `json:"contacts"`

	CreatedAt time.Time `json:"created_at"`
}

// ExportDocument is the JSON body written to object storage.
type ExportDocument struct {
	UserID      int64           `json:"user_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Contacts    []ExportContact `json:"contacts"`
}

// ExportContact is a contact together with its addresses.
type ExportContact struct {
	Contact
	Addresses []Address `json:"addresses"`
}
