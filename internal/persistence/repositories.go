package persistence

import (
	"context"
	"time"
)

// AccountRepository exposes CRUD operations for accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByUsername(ctx context.Context, username string) (Account, error)
	UpdateAccount(ctx context.Context, id string, patch AccountPatch) (Account, error)
	DeleteAccount(ctx context.Context, id, requestingID string) error
	ListAccounts(ctx context.Context) ([]Account, error)
	CountAccounts(ctx context.Context) (int, error)
	// CreateIfEmpty stores account only when no accounts exist and reports
	// whether it did.
	CreateIfEmpty(ctx context.Context, account Account) (bool, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsForAccount(ctx context.Context, accountID string) (int, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error)
}

// RecordRepository stores training records and allocates their identifiers.
type RecordRepository interface {
	ListRecords(ctx context.Context) ([]Record, error)
	CreateRecord(ctx context.Context, fields RecordFields, createdBy string) (Record, error)
	UpdateRecord(ctx context.Context, id uint32, fields RecordFields) (Record, error)
	DeleteRecord(ctx context.Context, id uint32) error
}
