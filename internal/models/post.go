package models

import "time"

// PostKind discriminates the post variants. Review kinds carry the reviewed
// entity's name in Subject; questions and admin notices leave it empty.
type PostKind string

const (
	PostProgramReview    PostKind = "programReview"
	PostUniversityReview PostKind = "universityReview"
	PostQuestion         PostKind = "question"
	PostAdministration   PostKind = "administration"
)

// ValidPostKind reports whether k is a user-creatable post kind.
// Administration posts are created through the admin endpoint only.
func ValidPostKind(k PostKind) bool {
	switch k {
	case PostProgramReview, PostUniversityReview, PostQuestion:
		return true
	}
	return false
}

// Post is a user-authored review, question or admin notice.
type Post struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Kind      PostKind  `db:"kind" json:"kind"`
	Subject   string    `db:"subject" json:"subject,omitempty"`
	Category  string    `db:"category" json:"category,omitempty"`
	Content   string    `db:"content" json:"content"`
	Likes     int       `db:"likes" json:"likes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PostSummary is the listing projection (title and id only).
type PostSummary struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}
