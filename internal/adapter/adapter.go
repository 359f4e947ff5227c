// Package adapter converts between the persistence stores and the
// application service interfaces, translating store errors into
// application sentinels.
package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/example/training-dashboard/internal/application"
	"github.com/example/training-dashboard/internal/persistence"
)

// Accounts adapts an account repository to application.AccountStore.
func Accounts(repo persistence.AccountRepository) application.AccountStore {
	return &accountStoreAdapter{repo: repo}
}

// Sessions adapts a session repository to application.SessionStore.
func Sessions(repo persistence.SessionRepository) application.SessionStore {
	return &sessionStoreAdapter{repo: repo}
}

// Records adapts a record repository to application.RecordStore.
func Records(repo persistence.RecordRepository) application.RecordStore {
	return &recordStoreAdapter{repo: repo}
}

type accountStoreAdapter struct {
	repo persistence.AccountRepository
}

func (a *accountStoreAdapter) CreateAccount(ctx context.Context, account application.AccountCredentials) error {
	return translateError(a.repo.CreateAccount(ctx, toPersistenceAccount(account)))
}

func (a *accountStoreAdapter) CreateIfEmpty(ctx context.Context, account application.AccountCredentials) (bool, error) {
	created, err := a.repo.CreateIfEmpty(ctx, toPersistenceAccount(account))
	return created, translateError(err)
}

func (a *accountStoreAdapter) GetAccount(ctx context.Context, id string) (application.AccountCredentials, error) {
	model, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.AccountCredentials{}, translateError(err)
	}
	return toApplicationCredentials(model), nil
}

func (a *accountStoreAdapter) GetAccountByUsername(ctx context.Context, username string) (application.AccountCredentials, error) {
	model, err := a.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		return application.AccountCredentials{}, translateError(err)
	}
	return toApplicationCredentials(model), nil
}

func (a *accountStoreAdapter) UpdateAccount(ctx context.Context, id string, patch application.AccountPatch) (application.Account, error) {
	var p persistence.AccountPatch
	p.Active = patch.Active
	if patch.Role != nil {
		role := string(*patch.Role)
		p.Role = &role
	}
	model, err := a.repo.UpdateAccount(ctx, id, p)
	if err != nil {
		return application.Account{}, translateError(err)
	}
	return toApplicationAccount(model), nil
}

func (a *accountStoreAdapter) DeleteAccount(ctx context.Context, id, requestingID string) error {
	return translateError(a.repo.DeleteAccount(ctx, id, requestingID))
}

func (a *accountStoreAdapter) ListAccounts(ctx context.Context) ([]application.Account, error) {
	models, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	accounts := make([]application.Account, 0, len(models))
	for _, model := range models {
		accounts = append(accounts, toApplicationAccount(model))
	}
	return accounts, nil
}

type sessionStoreAdapter struct {
	repo persistence.SessionRepository
}

func (a *sessionStoreAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	model, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(model), nil
}

func (a *sessionStoreAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	model, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(model), nil
}

func (a *sessionStoreAdapter) DeleteSession(ctx context.Context, token string) error {
	return translateError(a.repo.DeleteSession(ctx, token))
}

func (a *sessionStoreAdapter) DeleteSessionsForAccount(ctx context.Context, accountID string) (int, error) {
	removed, err := a.repo.DeleteSessionsForAccount(ctx, accountID)
	return removed, translateError(err)
}

func (a *sessionStoreAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	removed, err := a.repo.DeleteExpiredSessions(ctx, reference)
	return removed, translateError(err)
}

type recordStoreAdapter struct {
	repo persistence.RecordRepository
}

func (a *recordStoreAdapter) ListRecords(ctx context.Context) ([]application.Record, error) {
	models, err := a.repo.ListRecords(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	records := make([]application.Record, 0, len(models))
	for _, model := range models {
		records = append(records, toApplicationRecord(model))
	}
	return records, nil
}

// CreateRecord keeps the stored record alongside a persistence error so the
// service can decide whether the change stands.
func (a *recordStoreAdapter) CreateRecord(ctx context.Context, fields application.RecordFields, createdBy string) (application.Record, error) {
	model, err := a.repo.CreateRecord(ctx, toPersistenceFields(fields), createdBy)
	return toApplicationRecord(model), translateError(err)
}

func (a *recordStoreAdapter) UpdateRecord(ctx context.Context, id uint32, fields application.RecordFields) (application.Record, error) {
	model, err := a.repo.UpdateRecord(ctx, id, toPersistenceFields(fields))
	return toApplicationRecord(model), translateError(err)
}

func (a *recordStoreAdapter) DeleteRecord(ctx context.Context, id uint32) error {
	return translateError(a.repo.DeleteRecord(ctx, id))
}

// translateError maps persistence sentinels onto application sentinels.
// Unknown errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pErr *persistence.PersistError
	switch {
	case errors.As(err, &pErr):
		return &application.PersistenceError{Applied: pErr.Applied, Err: pErr.Err}
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrConflict
	case errors.Is(err, persistence.ErrSelfDelete):
		return application.ErrSelfDelete
	}
	return err
}

func toApplicationAccount(model persistence.Account) application.Account {
	return application.Account{
		ID:        model.ID,
		Username:  model.Username,
		Role:      application.Role(model.Role),
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
	}
}

func toApplicationCredentials(model persistence.Account) application.AccountCredentials {
	return application.AccountCredentials{
		Account:      toApplicationAccount(model),
		PasswordHash: model.PasswordHash,
	}
}

func toPersistenceAccount(account application.AccountCredentials) persistence.Account {
	return persistence.Account{
		ID:           account.Account.ID,
		Username:     account.Account.Username,
		PasswordHash: account.PasswordHash,
		Role:         string(account.Account.Role),
		Active:       account.Account.Active,
		CreatedAt:    account.Account.CreatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		Token:     model.Token,
		AccountID: model.AccountID,
		Username:  model.Username,
		Role:      application.Role(model.Role),
		CreatedAt: model.CreatedAt,
		ExpiresAt: model.ExpiresAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		Token:     session.Token,
		AccountID: session.AccountID,
		Username:  session.Username,
		Role:      string(session.Role),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
}

func toApplicationRecord(model persistence.Record) application.Record {
	return application.Record{
		ID:           model.ID,
		SubjectName:  model.SubjectName,
		TrainingName: model.TrainingName,
		DueDate:      model.DueDate,
		Status:       application.Status(model.Status),
		CreatedBy:    model.CreatedBy,
	}
}

func toPersistenceFields(fields application.RecordFields) persistence.RecordFields {
	return persistence.RecordFields{
		SubjectName:  fields.SubjectName,
		TrainingName: fields.TrainingName,
		DueDate:      fields.DueDate,
		Status:       string(fields.Status),
	}
}
