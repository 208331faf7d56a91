package entity

import "time"

// RecordRetention is how long a record stays in storage after it expires, so
// a late verify still reads it as expired instead of missing.
const RecordRetention = time.Minute

// Record is the single live code issued to a recipient.
type Record struct {
	Recipient string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// StorageTTL returns how long the record should be kept from now.
func (r Record) StorageTTL(now time.Time) time.Duration {
	return r.ExpiresAt.Sub(now) + RecordRetention
}

// Lookup is a record as read from a store. Expired is evaluated against the
// store clock at read time and is never persisted.
type Lookup struct {
	Record
	Expired bool
}

// Delivery is what a provider needs to hand a code to its recipient.
type Delivery struct {
	Channel   Channel
	Recipient string
	Code      string
	ExpiresAt time.Time
}

// Message renders the plain text body shared by every channel.
func (d Delivery) Message() string {
	return "Your verification code is " + d.Code
}
