package application

import (
	"context"
	"fmt"
	"strings"
)

// ListAccounts returns the public view of every account to managers and administrators.
func (s *Service) ListAccounts(ctx context.Context, token string) (accounts []Account, err error) {
	if err = s.ready(); err != nil {
		return nil, err
	}

	logger := s.loggerWith(ctx, "AccountService", "ListAccounts")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "account listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_count", len(accounts)).InfoContext(ctx, "accounts listed")
	}()

	if _, err = s.authorize(ctx, token, RoleManager); err != nil {
		return nil, err
	}

	var stored []Account
	if stored, err = s.accounts.ListAccounts(ctx); err != nil {
		return nil, err
	}
	accounts = make([]Account, len(stored))
	copy(accounts, stored)
	return accounts, nil
}

// CreateAccount validates input and stores a new active account for administrators.
func (s *Service) CreateAccount(ctx context.Context, token string, params CreateAccountParams) (account Account, err error) {
	if err = s.ready(); err != nil {
		return Account{}, err
	}

	logger := s.loggerWith(ctx, "AccountService", "CreateAccount", "username", params.Username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "account creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", account.ID, "role", string(account.Role)).InfoContext(ctx, "account created")
	}()

	if _, err = s.authorize(ctx, token, RoleAdmin); err != nil {
		return Account{}, err
	}

	role, vErr := validateCreateAccount(params)
	if vErr.HasErrors() {
		err = vErr
		return Account{}, err
	}

	var hash string
	if hash, err = s.hasher.Hash(params.Password); err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return Account{}, err
	}

	account = Account{
		ID:        s.idGenerator(),
		Username:  strings.TrimSpace(params.Username),
		Role:      role,
		Active:    true,
		CreatedAt: s.now(),
	}
	if err = s.accounts.CreateAccount(ctx, AccountCredentials{Account: account, PasswordHash: hash}); err != nil {
		return Account{}, err
	}
	return account, nil
}

// UpdateAccount changes the active flag and/or role of an account for administrators.
func (s *Service) UpdateAccount(ctx context.Context, token, accountID string, params UpdateAccountParams) (account Account, err error) {
	if err = s.ready(); err != nil {
		return Account{}, err
	}

	logger := s.loggerWith(ctx, "AccountService", "UpdateAccount", "account_id", accountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "account update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("role", string(account.Role), "active", account.Active).InfoContext(ctx, "account updated")
	}()

	if _, err = s.authorize(ctx, token, RoleAdmin); err != nil {
		return Account{}, err
	}

	patch := AccountPatch{Active: params.Active}
	if params.Role != nil {
		role, vErr := validateRole(*params.Role)
		if vErr.HasErrors() {
			err = vErr
			return Account{}, err
		}
		patch.Role = &role
	}

	account, err = s.accounts.UpdateAccount(ctx, accountID, patch)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// DeleteAccount removes an account and every session issued to it. An
// administrator may not delete their own account.
func (s *Service) DeleteAccount(ctx context.Context, token, accountID string) (err error) {
	if err = s.ready(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "AccountService", "DeleteAccount", "account_id", accountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "account deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account deleted")
	}()

	var session Session
	if session, err = s.authorize(ctx, token, RoleAdmin); err != nil {
		return err
	}
	if accountID == session.AccountID {
		return ErrSelfDelete
	}

	if err = s.accounts.DeleteAccount(ctx, accountID, session.AccountID); err != nil {
		return err
	}

	removed, sErr := s.sessions.DeleteSessionsForAccount(ctx, accountID)
	if sErr != nil {
		logger.ErrorContext(ctx, "failed to destroy sessions of deleted account", "error", sErr)
		return nil
	}
	if removed > 0 {
		logger.DebugContext(ctx, "destroyed sessions of deleted account", "count", removed)
	}
	return nil
}

func validateCreateAccount(params CreateAccountParams) (Role, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(params.Username) == "" {
		vErr.add("username", "username is required")
	}
	if params.Password == "" {
		vErr.add("password", "password is required")
	}

	role, roleErr := validateRole(params.Role)
	vErr.merge(roleErr)

	return role, vErr
}

func validateRole(value string) (Role, *ValidationError) {
	vErr := &ValidationError{}
	role, ok := ParseRole(value)
	if !ok {
		vErr.add("role", "role must be one of admin, manager, user")
	}
	return role, vErr
}
