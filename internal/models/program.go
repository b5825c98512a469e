package models

import (
	"time"

	"github.com/lib/pq"
)

// ProgramCategory is the broad study-track classification of a program.
type ProgramCategory string

const (
	CategoryScience     ProgramCategory = "science"
	CategoryLiberalArts ProgramCategory = "liberal_arts"
	CategoryArtsSports  ProgramCategory = "arts_sports"
)

// ValidProgramCategory reports whether c is a member of the category enumeration.
func ValidProgramCategory(c ProgramCategory) bool {
	switch c {
	case CategoryScience, CategoryLiberalArts, CategoryArtsSports:
		return true
	}
	return false
}

// Program represents a degree program offered by a university.
type Program struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Code           string          `db:"code" json:"code"`
	UniversityName string          `db:"university_name" json:"university_name"`
	Description    string          `db:"description" json:"description"`
	Prerequisites  pq.StringArray  `db:"prerequisites" json:"prerequisites"`
	TuitionFee     float64         `db:"tuition_fee" json:"tuition_fee"`
	Category       ProgramCategory `db:"category" json:"category"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ProgramMatch is the projection returned by the prerequisite filter: the
// programs whose required set is covered by the expanded student set.
type ProgramMatch struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites"`
}

// TuitionQuote is a tuition fee converted into a foreign currency using the
// cached exchange rate.
type TuitionQuote struct {
	ProgramID  string    `json:"program_id"`
	Currency   string    `json:"currency"`
	TuitionSEK float64   `json:"tuition_sek"`
	Converted  float64   `json:"converted"`
	Rate       float64   `json:"rate"`
	FetchedAt  time.Time `json:"rate_fetched_at"`
}
