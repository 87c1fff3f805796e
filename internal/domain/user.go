package domain

import "time"

// User is a single directory entry, keyed by its unique username.
// Image holds the bare filename of the user's uploaded portrait relative to
// the upload directory; empty when no image was ever uploaded. BirthDate is
// kept as the submitted YYYY-MM-DD string.
type User struct {
	ID         int64
	Username   string
	Email      string
	Telephone  string
	FirstName  string
	LastName   string
	BirthDate  string
	Profession string
	Image      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
