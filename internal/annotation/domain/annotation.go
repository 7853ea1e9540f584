package domain

import (
	"time"

	userdomain "pinboard/internal/user/domain"
)

type ID string

// Annotation is a positioned text note owned by the user that created it.
// Ownership is permanent; annotations are never updated, only created and
// deleted.
type Annotation struct {
	ID        ID            `json:"id"`
	Text      string        `json:"text"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	UserID    userdomain.ID `json:"userId"`
	CreatedAt time.Time     `json:"createdAt"`
}

// MaxTextLength is the hard cap on annotation text. Longer input is
// truncated, not rejected.
const MaxTextLength = 255
