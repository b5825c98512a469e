package models

import "time"

// MinMeritStats is the cached mean of minimum merit scores for one
// (program, round, selection group) key. At most one live row exists per key;
// each record insert or delete replaces it wholesale.
type MinMeritStats struct {
	ID             string         `db:"id" json:"id"`
	ProgramName    string         `db:"program_name" json:"program_name"`
	Round          Round          `db:"round" json:"round"`
	SelectionGroup SelectionGroup `db:"selection_group" json:"selection_group"`
	Score          float64        `db:"score" json:"score"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// ProgramLikeStats counts prospective students holding a program on their
// interest list.
type ProgramLikeStats struct {
	ProgramID  string    `db:"program_id" json:"program_id"`
	NumOfLikes int       `db:"num_of_likes" json:"num_of_likes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UniversityLikeStats counts prospective students holding a university on
// their interest list.
type UniversityLikeStats struct {
	UniversityID string    `db:"university_id" json:"university_id"`
	NumOfLikes   int       `db:"num_of_likes" json:"num_of_likes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
