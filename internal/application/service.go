package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// AccountStore captures the account persistence operations required by the service.
type AccountStore interface {
	CreateAccount(ctx context.Context, account AccountCredentials) error
	CreateIfEmpty(ctx context.Context, account AccountCredentials) (bool, error)
	GetAccount(ctx context.Context, id string) (AccountCredentials, error)
	GetAccountByUsername(ctx context.Context, username string) (AccountCredentials, error)
	UpdateAccount(ctx context.Context, id string, patch AccountPatch) (Account, error)
	DeleteAccount(ctx context.Context, id, requestingID string) error
	ListAccounts(ctx context.Context) ([]Account, error)
}

// SessionStore captures the persistence interactions for issued sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsForAccount(ctx context.Context, accountID string) (int, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error)
}

// RecordStore captures the record persistence operations required by the service.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]Record, error)
	CreateRecord(ctx context.Context, fields RecordFields, createdBy string) (Record, error)
	UpdateRecord(ctx context.Context, id uint32, fields RecordFields) (Record, error)
	DeleteRecord(ctx context.Context, id uint32) error
}

// ServiceDeps wires the stores and policies used by Service.
type ServiceDeps struct {
	Accounts       AccountStore
	Sessions       SessionStore
	Records        RecordStore
	Hasher         PasswordHasher
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	// SessionTTL bounds session lifetime. Zero keeps sessions until logout.
	SessionTTL time.Duration
	// RefreshSessionRoles re-reads the account on every authenticated call
	// instead of trusting the identity captured at login.
	RefreshSessionRoles bool
}

// Service is the facade combining credential checks, sessions, the role
// policy and the stores into token-taking operations.
type Service struct {
	accounts       AccountStore
	sessions       SessionStore
	records        RecordStore
	hasher         PasswordHasher
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	refreshRoles   bool
	logger         *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs a Service with the provided dependencies.
func NewService(deps ServiceDeps) *Service {
	return NewServiceWithLogger(deps, nil)
}

// NewServiceWithLogger constructs a Service with a specified logger.
func NewServiceWithLogger(deps ServiceDeps, logger *slog.Logger) *Service {
	if deps.Hasher == nil {
		deps.Hasher = NewArgon2idHasher()
	}
	if deps.IDGenerator == nil {
		deps.IDGenerator = func() string { return "" }
	}
	if deps.TokenGenerator == nil {
		deps.TokenGenerator = func() string { return "" }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SessionTTL < 0 {
		deps.SessionTTL = 0
	}
	return &Service{
		accounts:       deps.Accounts,
		sessions:       deps.Sessions,
		records:        deps.Records,
		hasher:         deps.Hasher,
		idGenerator:    deps.IDGenerator,
		tokenGenerator: deps.TokenGenerator,
		now:            deps.Now,
		sessionTTL:     deps.SessionTTL,
		refreshRoles:   deps.RefreshSessionRoles,
		logger:         defaultLogger(logger),
	}
}

func (s *Service) loggerWith(ctx context.Context, serviceName, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, serviceName, operation, attrs...)
}

func (s *Service) ready() error {
	if s == nil {
		return fmt.Errorf("Service is nil")
	}
	if s.accounts == nil {
		return fmt.Errorf("account store not configured")
	}
	if s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}
	return nil
}

// authorize resolves token to its session and checks the session's role
// against required.
func (s *Service) authorize(ctx context.Context, token string, required Role) (Session, error) {
	if err := s.ready(); err != nil {
		return Session{}, err
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Session{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}

	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(s.now()) {
		_ = s.sessions.DeleteSession(ctx, trimmed)
		return Session{}, ErrUnauthorized
	}

	if s.refreshRoles {
		creds, err := s.accounts.GetAccount(ctx, session.AccountID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				_ = s.sessions.DeleteSession(ctx, trimmed)
				return Session{}, ErrUnauthorized
			}
			return Session{}, err
		}
		if !creds.Account.Active {
			return Session{}, ErrUnauthorized
		}
		session.Role = creds.Account.Role
	}

	if !Satisfies(session.Role, required) {
		return Session{}, ErrForbidden
	}
	return session, nil
}

// absorbApplied turns a persistence failure whose mutation still stands into
// a logged warning. Any other error is returned unchanged.
func absorbApplied(ctx context.Context, logger *slog.Logger, err error) error {
	var pErr *PersistenceError
	if errors.As(err, &pErr) && pErr.Applied {
		logger.ErrorContext(ctx, "record file not updated; change kept in memory", "error", err, "error_kind", ErrorKind(err))
		return nil
	}
	return err
}
