package models

import "time"

// ExchangeRate is the cached SEK conversion rate for one target currency.
type ExchangeRate struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}
