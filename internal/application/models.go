package application

import (
	"strings"
	"time"
)

// Account is the public view of an account. The credential hash never
// appears here.
type Account struct {
	ID        string
	Username  string
	Role      Role
	Active    bool
	CreatedAt time.Time
}

// AccountCredentials pairs an account with its stored password hash.
type AccountCredentials struct {
	Account      Account
	PasswordHash string
}

// AccountPatch lists the mutable account attributes. Nil fields are left unchanged.
type AccountPatch struct {
	Active *bool
	Role   *Role
}

// CreateAccountParams captures caller provided account attributes.
type CreateAccountParams struct {
	Username string
	Password string
	Role     string
}

// UpdateAccountParams captures the optional account changes requested by an administrator.
type UpdateAccountParams struct {
	Active *bool
	Role   *string
}

// Session is a bearer token bound to a snapshot of the authenticated identity.
type Session struct {
	Token     string
	AccountID string
	Username  string
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	Token   string
	Account Account
}

// Status classifies a training record as current, due soon or overdue.
type Status string

const (
	StatusGreen  Status = "Green"
	StatusYellow Status = "Yellow"
	StatusRed    Status = "Red"
)

// ParseStatus accepts a status name case-insensitively and returns its
// canonical form. The desktop client's gruen, gelb and rot are aliases.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "green", "gruen":
		return StatusGreen, true
	case "yellow", "gelb":
		return StatusYellow, true
	case "red", "rot":
		return StatusRed, true
	}
	return "", false
}

// RecordInput captures caller provided record fields.
type RecordInput struct {
	SubjectName  string
	TrainingName string
	DueDate      string
	Status       string
}

// RecordFields holds validated record fields ready for storage.
type RecordFields struct {
	SubjectName  string
	TrainingName string
	DueDate      string
	Status       Status
}

// Record is a training entry for one employee.
type Record struct {
	ID           uint32
	SubjectName  string
	TrainingName string
	DueDate      string
	Status       Status
	CreatedBy    string
}
