package domain

import "time"

// Money is an amount in minor units with its ISO 4217 currency code.
type Money struct {
	Amount   int64  `json:"amount" bson:"amount"`
	Currency string `json:"currency" bson:"currency"`
}

// Shift is a posted block of work that staff can apply to. The Ref is the
// public identifier used in URLs and notifications; the Mongo ObjectID never
// leaves the persistence layer.
type Shift struct {
	ID         string    `json:"-" bson:"_id,omitempty"`
	Ref        string    `json:"ref" bson:"ref"`
	OwnerID    int64     `json:"owner_id" bson:"owner_id"`
	Title      string    `json:"title" bson:"title"`
	Location   string    `json:"location" bson:"location"`
	HourlyRate Money     `json:"hourly_rate" bson:"hourly_rate"`
	StartsAt   time.Time `json:"starts_at" bson:"starts_at"`
	EndsAt     time.Time `json:"ends_at" bson:"ends_at"`
	Open       bool      `json:"open" bson:"open"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnedBy reports whether userID is the shift's owner-of-record.
func (s *Shift) OwnedBy(userID int64) bool {
	return s.OwnerID == userID
}
