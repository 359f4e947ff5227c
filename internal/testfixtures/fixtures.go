package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/training-dashboard/internal/application"
	"github.com/example/training-dashboard/internal/persistence"
)

var (
	accountCounter uint64
	sessionCounter uint64
	recordCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Account fixtures ----------------------------

// AccountFixture represents a deterministic account that can be materialised
// for application or persistence tests.
type AccountFixture struct {
	ID           string
	Username     string
	PasswordHash string
	Role         application.Role
	Active       bool
	CreatedAt    time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic active user account with optional
// overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	fixture := AccountFixture{
		ID:           fmt.Sprintf("account-%03d", idx),
		Username:     fmt.Sprintf("user%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleUser,
		Active:       true,
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccountID overrides the generated account ID.
func WithAccountID(id string) AccountOption {
	return func(f *AccountFixture) {
		f.ID = id
	}
}

// WithUsername overrides the generated username.
func WithUsername(username string) AccountOption {
	return func(f *AccountFixture) {
		f.Username = username
	}
}

// WithRole sets the account role.
func WithRole(role application.Role) AccountOption {
	return func(f *AccountFixture) {
		f.Role = role
	}
}

// Application returns the fixture as an application.Account value.
func (f AccountFixture) Application() application.Account {
	return application.Account{
		ID:        f.ID,
		Username:  f.Username,
		Role:      f.Role,
		Active:    f.Active,
		CreatedAt: f.CreatedAt,
	}
}

// Credentials returns the fixture as application.AccountCredentials.
func (f AccountFixture) Credentials() application.AccountCredentials {
	return application.AccountCredentials{
		Account:      f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Persistence returns the fixture as a persistence.Account value.
func (f AccountFixture) Persistence() persistence.Account {
	return persistence.Account{
		ID:           f.ID,
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		Active:       f.Active,
		CreatedAt:    f.CreatedAt,
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic bearer session.
type SessionFixture struct {
	Token     string
	AccountID string
	Username  string
	Role      application.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session without an expiry.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		Token:     fmt.Sprintf("token-%03d", idx),
		AccountID: fmt.Sprintf("account-%03d", idx),
		Username:  fmt.Sprintf("user%03d", idx),
		Role:      application.RoleUser,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// ForAccount binds the session to the identity held by account.
func ForAccount(account AccountFixture) SessionOption {
	return func(f *SessionFixture) {
		f.AccountID = account.ID
		f.Username = account.Username
		f.Role = account.Role
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiry instant.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		Token:     f.Token,
		AccountID: f.AccountID,
		Username:  f.Username,
		Role:      f.Role,
		CreatedAt: f.CreatedAt,
		ExpiresAt: f.ExpiresAt,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		Token:     f.Token,
		AccountID: f.AccountID,
		Username:  f.Username,
		Role:      string(f.Role),
		CreatedAt: f.CreatedAt,
		ExpiresAt: f.ExpiresAt,
	}
}

// ----------------------------- Record fixtures -----------------------------

// RecordFixture represents the caller supplied fields of a training record.
type RecordFixture struct {
	SubjectName  string
	TrainingName string
	DueDate      string
	Status       application.Status
}

// RecordOption configures the generated record fixture.
type RecordOption func(*RecordFixture)

// NewRecordFixture returns deterministic record fields with optional overrides.
func NewRecordFixture(opts ...RecordOption) RecordFixture {
	idx := atomic.AddUint64(&recordCounter, 1)
	fixture := RecordFixture{
		SubjectName:  fmt.Sprintf("Employee %03d", idx),
		TrainingName: fmt.Sprintf("Course %03d", idx),
		DueDate:      referenceTime.AddDate(0, 0, int(idx)).Format(time.DateOnly),
		Status:       application.StatusGreen,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSubjectName overrides the employee name.
func WithSubjectName(name string) RecordOption {
	return func(f *RecordFixture) {
		f.SubjectName = name
	}
}

// WithStatus overrides the record status.
func WithStatus(status application.Status) RecordOption {
	return func(f *RecordFixture) {
		f.Status = status
	}
}

// Input returns the fixture as an application.RecordInput.
func (f RecordFixture) Input() application.RecordInput {
	return application.RecordInput{
		SubjectName:  f.SubjectName,
		TrainingName: f.TrainingName,
		DueDate:      f.DueDate,
		Status:       string(f.Status),
	}
}
