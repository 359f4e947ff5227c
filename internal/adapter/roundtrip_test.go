package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/training-dashboard/internal/adapter"
	"github.com/example/training-dashboard/internal/application"
	"github.com/example/training-dashboard/internal/persistence/memory"
	"github.com/example/training-dashboard/internal/testfixtures"
)

func TestAccounts_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := adapter.Accounts(memory.NewAccountStore())

	bob := testfixtures.NewAccountFixture(testfixtures.WithUsername("bob"), testfixtures.WithRole(application.RoleManager))
	admin := testfixtures.NewAccountFixture(testfixtures.WithRole(application.RoleAdmin))

	require.NoError(t, store.CreateAccount(ctx, bob.Credentials()))
	assert.ErrorIs(t, store.CreateAccount(ctx, bob.Credentials()), application.ErrConflict)

	got, err := store.GetAccountByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.Credentials(), got)

	listed, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []application.Account{bob.Application()}, listed)

	role := application.RoleUser
	updated, err := store.UpdateAccount(ctx, bob.ID, application.AccountPatch{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, application.RoleUser, updated.Role)

	assert.ErrorIs(t, store.DeleteAccount(ctx, bob.ID, bob.ID), application.ErrSelfDelete)
	require.NoError(t, store.DeleteAccount(ctx, bob.ID, admin.ID))
	_, err = store.GetAccount(ctx, bob.ID)
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestSessions_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := adapter.Sessions(memory.NewSessionStore())

	owner := testfixtures.NewAccountFixture(testfixtures.WithRole(application.RoleAdmin))
	session := testfixtures.NewSessionFixture(testfixtures.ForAccount(owner)).Application()

	_, err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	got, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session, got)
	assert.Equal(t, application.RoleAdmin, got.Role)

	removed, err := store.DeleteSessionsForAccount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, application.ErrNotFound)
}
