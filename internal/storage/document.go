package storage

import (
	annotationdomain "pinboard/internal/annotation/domain"
	userdomain "pinboard/internal/user/domain"
)

// Document is the entire persisted state. It always carries exactly the
// users and annotations collections, both order-preserving.
type Document struct {
	Users       []userdomain.User             `json:"users"`
	Annotations []annotationdomain.Annotation `json:"annotations"`
}

func emptyDocument() Document {
	return Document{
		Users:       []userdomain.User{},
		Annotations: []annotationdomain.Annotation{},
	}
}

// repair fills in a collection that a partially written file lost. Returns
// true when anything was fixed.
func (d *Document) repair() bool {
	repaired := false
	if d.Users == nil {
		d.Users = []userdomain.User{}
		repaired = true
	}
	if d.Annotations == nil {
		d.Annotations = []annotationdomain.Annotation{}
		repaired = true
	}
	return repaired
}
