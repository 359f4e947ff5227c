package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// plainHasher stores passwords with a readable prefix so tests stay fast.
type plainHasher struct {
	checks []string
}

func (h *plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *plainHasher) Check(encoded, password string) bool {
	h.checks = append(h.checks, encoded)
	return encoded == "hashed:"+password
}

// failingDummyHasher fails the first Hash call and records every call.
type failingDummyHasher struct {
	plainHasher
	hashed []string
	failed bool
}

func (h *failingDummyHasher) Hash(password string) (string, error) {
	h.hashed = append(h.hashed, password)
	if !h.failed {
		h.failed = true
		return "", errors.New("entropy unavailable")
	}
	return h.plainHasher.Hash(password)
}

// accountStoreStub provides an in-memory implementation of AccountStore for tests.
type accountStoreStub struct {
	accounts map[string]AccountCredentials

	getErr    error
	createErr error
}

func newAccountStoreStub(accounts ...AccountCredentials) *accountStoreStub {
	stub := &accountStoreStub{accounts: make(map[string]AccountCredentials)}
	for _, account := range accounts {
		stub.accounts[account.Account.ID] = account
	}
	return stub
}

func (s *accountStoreStub) CreateAccount(ctx context.Context, account AccountCredentials) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.accounts {
		if existing.Account.Username == account.Account.Username {
			return ErrConflict
		}
	}
	s.accounts[account.Account.ID] = account
	return nil
}

func (s *accountStoreStub) CreateIfEmpty(ctx context.Context, account AccountCredentials) (bool, error) {
	if len(s.accounts) > 0 {
		return false, nil
	}
	s.accounts[account.Account.ID] = account
	return true, nil
}

func (s *accountStoreStub) GetAccount(ctx context.Context, id string) (AccountCredentials, error) {
	if s.getErr != nil {
		return AccountCredentials{}, s.getErr
	}
	account, ok := s.accounts[id]
	if !ok {
		return AccountCredentials{}, ErrNotFound
	}
	return account, nil
}

func (s *accountStoreStub) GetAccountByUsername(ctx context.Context, username string) (AccountCredentials, error) {
	if s.getErr != nil {
		return AccountCredentials{}, s.getErr
	}
	for _, account := range s.accounts {
		if account.Account.Username == username {
			return account, nil
		}
	}
	return AccountCredentials{}, ErrNotFound
}

func (s *accountStoreStub) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	if patch.Active != nil {
		account.Account.Active = *patch.Active
	}
	if patch.Role != nil {
		account.Account.Role = *patch.Role
	}
	s.accounts[id] = account
	return account.Account, nil
}

func (s *accountStoreStub) DeleteAccount(ctx context.Context, id, requestingID string) error {
	if id == requestingID {
		return ErrSelfDelete
	}
	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *accountStoreStub) ListAccounts(ctx context.Context) ([]Account, error) {
	out := make([]Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account.Account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// sessionStoreStub provides an in-memory implementation of SessionStore for tests.
type sessionStoreStub struct {
	sessions map[string]Session

	createErr error
	pruneErr  error

	pruneCalls []time.Time
}

func newSessionStoreStub(sessions ...Session) *sessionStoreStub {
	stub := &sessionStoreStub{sessions: make(map[string]Session)}
	for _, session := range sessions {
		stub.sessions[session.Token] = session
	}
	return stub
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionStoreStub) GetSession(ctx context.Context, token string) (Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) DeleteSession(ctx context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *sessionStoreStub) DeleteSessionsForAccount(ctx context.Context, accountID string) (int, error) {
	removed := 0
	for token, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	s.pruneCalls = append(s.pruneCalls, reference)
	if s.pruneErr != nil {
		return 0, s.pruneErr
	}
	removed := 0
	for token, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// recordStoreStub mimics the record store's counter semantics for tests.
type recordStoreStub struct {
	records []Record
	nextID  uint32

	// persistErr is returned alongside the mutated result when set.
	persistErr error
}

func newRecordStoreStub() *recordStoreStub {
	return &recordStoreStub{nextID: 1}
}

func (s *recordStoreStub) ListRecords(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *recordStoreStub) CreateRecord(ctx context.Context, fields RecordFields, createdBy string) (Record, error) {
	record := Record{
		ID:           s.nextID,
		SubjectName:  fields.SubjectName,
		TrainingName: fields.TrainingName,
		DueDate:      fields.DueDate,
		Status:       fields.Status,
		CreatedBy:    createdBy,
	}
	s.nextID++
	s.records = append(s.records, record)
	return record, s.persistErr
}

func (s *recordStoreStub) UpdateRecord(ctx context.Context, id uint32, fields RecordFields) (Record, error) {
	for i, record := range s.records {
		if record.ID != id {
			continue
		}
		record.SubjectName = fields.SubjectName
		record.TrainingName = fields.TrainingName
		record.DueDate = fields.DueDate
		record.Status = fields.Status
		s.records[i] = record
		return record, s.persistErr
	}
	return Record{}, ErrNotFound
}

func (s *recordStoreStub) DeleteRecord(ctx context.Context, id uint32) error {
	for i, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.persistErr
		}
	}
	return ErrNotFound
}

// serviceFixture bundles a Service with its stubs.
type serviceFixture struct {
	svc      *Service
	accounts *accountStoreStub
	sessions *sessionStoreStub
	records  *recordStoreStub
	hasher   *plainHasher
	now      time.Time
}

func newServiceFixture(mutate func(*ServiceDeps)) *serviceFixture {
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	fixture := &serviceFixture{
		accounts: newAccountStoreStub(
			credentials("admin-1", "admin", RoleAdmin, true),
			credentials("manager-1", "mia", RoleManager, true),
			credentials("user-1", "uma", RoleUser, true),
			credentials("user-2", "ivan", RoleUser, false),
		),
		sessions: newSessionStoreStub(
			Session{Token: "admin-token", AccountID: "admin-1", Username: "admin", Role: RoleAdmin},
			Session{Token: "manager-token", AccountID: "manager-1", Username: "mia", Role: RoleManager},
			Session{Token: "user-token", AccountID: "user-1", Username: "uma", Role: RoleUser},
		),
		records: newRecordStoreStub(),
		hasher:  &plainHasher{},
		now:     now,
	}

	counter := 0
	deps := ServiceDeps{
		Accounts: fixture.accounts,
		Sessions: fixture.sessions,
		Records:  fixture.records,
		Hasher:   fixture.hasher,
		IDGenerator: func() string {
			counter++
			return "generated-" + strings.Repeat("x", counter)
		},
		TokenGenerator: func() string {
			counter++
			return "token-" + strings.Repeat("t", counter)
		},
		Now: func() time.Time { return now },
	}
	if mutate != nil {
		mutate(&deps)
	}
	fixture.svc = NewService(deps)
	return fixture
}

func credentials(id, username string, role Role, active bool) AccountCredentials {
	return AccountCredentials{
		Account:      Account{ID: id, Username: username, Role: role, Active: active},
		PasswordHash: "hashed:" + username + "-pw",
	}
}
