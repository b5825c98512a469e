package models

import (
	"time"

	"github.com/lib/pq"
)

// UserKind discriminates the user variants. The variant payloads live in
// ProspectiveProfile and StudentProfile; exactly one is populated per kind.
type UserKind string

const (
	// UserKindNormal is a plain account with no student payload.
	UserKindNormal UserKind = "normal"
	// UserKindProspective is an applicant tracking merit points, held
	// prerequisites and interest lists.
	UserKindProspective UserKind = "prospective"
	// UserKindStudent is an enrolled university student.
	UserKindStudent UserKind = "student"
)

// ValidUserKind reports whether k is a member of the kind enumeration.
func ValidUserKind(k UserKind) bool {
	switch k {
	case UserKindNormal, UserKindProspective, UserKindStudent:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	UserName     string    `db:"user_name" json:"user_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Kind         UserKind  `db:"kind" json:"kind"`
	Admin        bool      `db:"admin" json:"admin"`
	RefreshToken *string   `db:"refresh_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	Prospective *ProspectiveProfile `db:"-" json:"prospective,omitempty"`
	Student     *StudentProfile     `db:"-" json:"student,omitempty"`
}

// ProspectiveProfile is the payload carried by prospective-student accounts.
type ProspectiveProfile struct {
	MeritPoint    *float64       `json:"merit_point,omitempty"`
	Prerequisites pq.StringArray `json:"prerequisites"`
}

// StudentProfile is the payload carried by university-student accounts.
type StudentProfile struct {
	ProgramID    *string `json:"studying_program_id,omitempty"`
	UniversityID *string `json:"studying_university_id,omitempty"`
}

// GradeInfo is the merit/prerequisite view returned for a prospective student.
type GradeInfo struct {
	MeritPoint    *float64 `json:"merit_point,omitempty"`
	Prerequisites []string `json:"prerequisites"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
