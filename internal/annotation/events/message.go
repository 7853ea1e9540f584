package events

import annotationdomain "pinboard/internal/annotation/domain"

type EventType string

const (
	TypeAnnotationCreated EventType = "annotation_created"
	TypeAnnotationDeleted EventType = "annotation_deleted"
)

// Event is pushed to the owning user's feed connection whenever one of
// their annotations changes.
type Event struct {
	Type       EventType                    `json:"type"`
	Annotation *annotationdomain.Annotation `json:"annotation,omitempty"`
	ID         annotationdomain.ID          `json:"id,omitempty"`
}
