package model

import "time"

// Author is the user of the platform. Verified authors can write and
// bookmark articles; staff authors additionally see the author list.
// The password credential never leaves the storage layer.
type Author struct {
	ID        int64     `json:"pk"`
	Username  string    `json:"username"`
	Email     string    `json:"-"`
	FirstName string    `json:"first_name"`
	Bio       string    `json:"bio"`
	Verified  bool      `json:"-"`
	Staff     bool      `json:"-"`
	SecretKey string    `json:"-"`
	CreatedOn time.Time `json:"-"`
}
