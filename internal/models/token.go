package models

import "time"

// ResetToken is a short-lived signed password-reset token. One active token
// exists per user; reissuing replaces it and a successful redeem deletes it.
type ResetToken struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ResetMail is the payload handed to the mail queue for reset-link delivery.
type ResetMail struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
