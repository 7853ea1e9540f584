package domain

import "time"

type ID string

// User is a stored account. Accounts exist only via the bootstrap admin;
// there is no registration endpoint and users are never updated or deleted.
type User struct {
	ID           ID        `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
}
