package persistence

import "time"

// Account represents a login identity held by the account store.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

// AccountPatch carries the optional fields applied by an account update.
type AccountPatch struct {
	Active *bool
	Role   *string
}

// Session represents a bearer token bound to a snapshot of the account that
// authenticated.
type Session struct {
	Token     string
	AccountID string
	Username  string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Record represents a training entry persisted to the records file.
type Record struct {
	ID           uint32
	SubjectName  string
	TrainingName string
	DueDate      string
	Status       string
	CreatedBy    string
}

// RecordFields holds the caller supplied portion of a record.
type RecordFields struct {
	SubjectName  string
	TrainingName string
	DueDate      string
	Status       string
}
