package models

import (
	"time"

	"github.com/lib/pq"
)

// ConsentForm records what data a user agreed to share and when.
type ConsentForm struct {
	ID            string         `db:"id" json:"id"`
	Topic         string         `db:"topic" json:"topic"`
	CollectedData pq.StringArray `db:"collected_data" json:"collected_data"`
	SignedAt      time.Time      `db:"signed_at" json:"signed_at"`
	Signature     *string        `db:"signature" json:"signature,omitempty"`
}
