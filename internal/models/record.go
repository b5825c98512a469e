package models

import "time"

// Round identifies the admission round a record belongs to.
type Round string

const (
	Round1 Round = "round1"
	Round2 Round = "round2"
)

// ValidRound reports whether r is a member of the round enumeration.
func ValidRound(r Round) bool {
	return r == Round1 || r == Round2
}

// Selection identifies the selection period of a record.
type Selection string

const (
	Selection1 Selection = "selection1"
	Selection2 Selection = "selection2"
)

// ValidSelection reports whether s is a member of the selection enumeration.
func ValidSelection(s Selection) bool {
	return s == Selection1 || s == Selection2
}

// SelectionGroup is the admissions-track category used by the quota process.
type SelectionGroup string

const (
	GroupB1   SelectionGroup = "B1"
	GroupB2   SelectionGroup = "B2"
	GroupB1AV SelectionGroup = "B1AV"
	GroupB1BF SelectionGroup = "B1BF"
	GroupB2AV SelectionGroup = "B2AV"
	GroupB2BF SelectionGroup = "B2BF"
)

// ValidSelectionGroup reports whether g is a member of the group enumeration.
func ValidSelectionGroup(g SelectionGroup) bool {
	switch g {
	case GroupB1, GroupB2, GroupB1AV, GroupB1BF, GroupB2AV, GroupB2BF:
		return true
	}
	return false
}

// Record is a past admission cutoff for a program. Records are insert-only;
// removal is an explicit admin action and both trigger a stats recompute.
type Record struct {
	ID                 string         `db:"id" json:"id"`
	ProgramName        string         `db:"program_name" json:"program_name"`
	MinScore           float64        `db:"min_score" json:"min_score"`
	NumOfApplicants    int            `db:"num_of_applicants" json:"num_of_applicants"`
	NumOfQualified     int            `db:"num_of_qualified" json:"num_of_qualified"`
	AcceptedApplicants int            `db:"accepted_applicants" json:"accepted_applicants"`
	Year               int            `db:"year" json:"year"`
	NumOfFirstChoice   *int           `db:"num_of_first_choice" json:"num_of_first_choice,omitempty"`
	Round              Round          `db:"round" json:"round"`
	Selection          Selection      `db:"selection" json:"selection"`
	SelectionGroup     SelectionGroup `db:"selection_group" json:"selection_group"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}
