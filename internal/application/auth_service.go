package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultBootstrapUsername names the administrator created on an empty account store.
	DefaultBootstrapUsername = "admin"
	// DefaultBootstrapPassword is the well-known initial administrator password.
	DefaultBootstrapPassword = "admin123"
)

// BootstrapParams captures the credentials of the initial administrator.
type BootstrapParams struct {
	Username string
	Password string
}

// BootstrapAdmin creates one active administrator when no accounts exist. It
// reports whether an account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, params BootstrapParams) (created bool, err error) {
	if err = s.ready(); err != nil {
		return false, err
	}

	username := strings.TrimSpace(params.Username)
	if username == "" {
		username = DefaultBootstrapUsername
	}
	password := params.Password
	if password == "" {
		password = DefaultBootstrapPassword
	}

	logger := s.loggerWith(ctx, "AuthService", "BootstrapAdmin", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "bootstrap failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if created {
			logger.InfoContext(ctx, "bootstrap administrator created")
			if password == DefaultBootstrapPassword {
				logger.WarnContext(ctx, "bootstrap administrator uses the default password; change it or replace the account")
			}
			return
		}
		logger.DebugContext(ctx, "accounts present; bootstrap skipped")
	}()

	var hash string
	hash, err = s.hasher.Hash(password)
	if err != nil {
		err = fmt.Errorf("hash bootstrap password: %w", err)
		return false, err
	}

	account := AccountCredentials{
		Account: Account{
			ID:        s.idGenerator(),
			Username:  username,
			Role:      RoleAdmin,
			Active:    true,
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	}
	created, err = s.accounts.CreateIfEmpty(ctx, account)
	return created, err
}

// Login verifies credentials and issues a new session token. Every failure
// reason yields ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (result LoginResult, err error) {
	if err = s.ready(); err != nil {
		return LoginResult{}, err
	}

	logger := s.loggerWith(ctx, "AuthService", "Login", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", result.Account.ID, "role", string(result.Account.Role)).InfoContext(ctx, "login succeeded")
	}()

	if username == "" || password == "" {
		s.spendPasswordCheck(password)
		return LoginResult{}, ErrUnauthorized
	}

	creds, lookupErr := s.accounts.GetAccountByUsername(ctx, username)
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return LoginResult{}, lookupErr
		}
		s.spendPasswordCheck(password)
		return LoginResult{}, ErrUnauthorized
	}

	if !s.hasher.Check(creds.PasswordHash, password) {
		return LoginResult{}, ErrUnauthorized
	}
	if !creds.Account.Active {
		return LoginResult{}, ErrUnauthorized
	}

	now := s.now()
	session := Session{
		Token:     s.tokenGenerator(),
		AccountID: creds.Account.ID,
		Username:  creds.Account.Username,
		Role:      creds.Account.Role,
		CreatedAt: now,
	}
	if s.sessionTTL > 0 {
		session.ExpiresAt = now.Add(s.sessionTTL)
		var pruned int
		if pruned, err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return LoginResult{}, err
		}
		if pruned > 0 {
			logger.DebugContext(ctx, "pruned expired sessions", "count", pruned)
		}
	}

	if session, err = s.sessions.CreateSession(ctx, session); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: session.Token, Account: creds.Account}, nil
}

// spendPasswordCheck costs what a real password check costs, so a rejected
// login does not reveal whether the username exists. Without a dummy hash it
// hashes password with a fresh salt instead.
func (s *Service) spendPasswordCheck(password string) {
	if hash := s.dummyPasswordHash(); hash != "" {
		s.hasher.Check(hash, password)
		return
	}
	if _, err := s.hasher.Hash(password); err != nil {
		s.logger.Error("failed to hash password for rejected login", "error", err)
	}
}

// dummyPasswordHash returns the hash checked when the username is unknown,
// or "" when it could not be built.
func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.logger.Error("failed to prepare dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Logout destroys the session for token when present. It never fails for
// unknown or missing tokens.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ready(); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "AuthService", "Logout", "token_provided", trimmed != "")
	if trimmed == "" {
		logger.DebugContext(ctx, "logout without token")
		return nil
	}

	if err := s.sessions.DeleteSession(ctx, trimmed); err != nil {
		logger.ErrorContext(ctx, "failed to destroy session", "error", err, "error_kind", ErrorKind(err))
		return nil
	}
	logger.InfoContext(ctx, "session destroyed")
	return nil
}

// WhoAmI returns the current public view of the session's account.
func (s *Service) WhoAmI(ctx context.Context, token string) (account Account, err error) {
	if err = s.ready(); err != nil {
		return Account{}, err
	}

	logger := s.loggerWith(ctx, "AuthService", "WhoAmI")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "whoami failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", account.ID).DebugContext(ctx, "whoami succeeded")
	}()

	var session Session
	if session, err = s.authorize(ctx, token, RoleUser); err != nil {
		return Account{}, err
	}

	var creds AccountCredentials
	creds, err = s.accounts.GetAccount(ctx, session.AccountID)
	if err != nil {
		return Account{}, err
	}
	return creds.Account, nil
}
