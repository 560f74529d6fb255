package models

import "time"

// User is the account row. HouseholdProfile is embedded flat because the
// composition columns live on the users table.
type User struct {
	ID       int64
	Username string
	// Password is the bcrypt hash, never the plaintext.
	Password string
	HouseholdProfile
	Address   string
	Points    int
	CreatedAt time.Time
}

// HouseholdProfile holds the five composition fields that drive product
// list generation. Changing any of them invalidates the cached list;
// changing anything else on the user (address, points) does not.
type HouseholdProfile struct {
	Adults   int
	Children int
	Infants  int
	Elderly  int
	HasPet   bool
}

// CachedProductList is an append-only cache row. For a given
// (user, composition hash) the newest row is authoritative; older rows are
// shadowed, never deleted.
type CachedProductList struct {
	ID              int64
	UserID          int64
	CompositionHash string
	// ProductData is the serialized grouped-results payload.
	ProductData string
	CreatedAt   time.Time
}

// QuizResult is one graded submission. Append-only.
type QuizResult struct {
	ID             int64
	UserID         int64
	Score          int
	TotalQuestions int
	CreatedAt      time.Time
}
