package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/training-dashboard/internal/application"
	"github.com/example/training-dashboard/internal/persistence"
	"github.com/example/training-dashboard/internal/persistence/memory"
	"github.com/example/training-dashboard/internal/testfixtures"
)

func newPersistenceAccount(opts ...testfixtures.AccountOption) persistence.Account {
	return testfixtures.NewAccountFixture(opts...).Persistence()
}

func TestAccountStore_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewAccountStore()

	admin := newPersistenceAccount(testfixtures.WithUsername("admin"), testfixtures.WithRole(application.RoleAdmin))
	bob := newPersistenceAccount(testfixtures.WithUsername("bob"))

	require.NoError(t, store.CreateAccount(ctx, bob))
	require.NoError(t, store.CreateAccount(ctx, admin))

	byName, err := store.GetAccountByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob, byName)

	_, err = store.GetAccountByUsername(ctx, "Bob")
	assert.ErrorIs(t, err, persistence.ErrNotFound, "usernames are case-sensitive")

	listed, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "admin", listed[0].Username, "accounts are ordered by creation time")

	inactive := false
	manager := string(application.RoleManager)
	updated, err := store.UpdateAccount(ctx, bob.ID, persistence.AccountPatch{Active: &inactive, Role: &manager})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, manager, updated.Role)

	unchanged, err := store.UpdateAccount(ctx, bob.ID, persistence.AccountPatch{})
	require.NoError(t, err)
	assert.Equal(t, updated, unchanged)

	_, err = store.UpdateAccount(ctx, "missing", persistence.AccountPatch{})
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, store.DeleteAccount(ctx, bob.ID, admin.ID))
	_, err = store.GetAccount(ctx, bob.ID)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	_, err = store.GetAccountByUsername(ctx, "bob")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	assert.ErrorIs(t, store.DeleteAccount(ctx, bob.ID, admin.ID), persistence.ErrNotFound)
}

func TestAccountStore_RejectsDuplicateUsernames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewAccountStore()

	require.NoError(t, store.CreateAccount(ctx, newPersistenceAccount(testfixtures.WithUsername("bob"))))
	err := store.CreateAccount(ctx, newPersistenceAccount(testfixtures.WithUsername("bob"), testfixtures.WithRole(application.RoleManager)))
	assert.ErrorIs(t, err, persistence.ErrDuplicate)

	count, err := store.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAccountStore_RefusesSelfDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewAccountStore()
	admin := newPersistenceAccount(testfixtures.WithRole(application.RoleAdmin))
	require.NoError(t, store.CreateAccount(ctx, admin))

	assert.ErrorIs(t, store.DeleteAccount(ctx, admin.ID, admin.ID), persistence.ErrSelfDelete)
	_, err := store.GetAccount(ctx, admin.ID)
	assert.NoError(t, err)
}

func TestAccountStore_CreateIfEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewAccountStore()

	var wg sync.WaitGroup
	created := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := newPersistenceAccount(
				testfixtures.WithAccountID(fmt.Sprintf("bootstrap-%d", i)),
				testfixtures.WithUsername("admin"),
				testfixtures.WithRole(application.RoleAdmin),
			)
			ok, err := store.CreateIfEmpty(ctx, candidate)
			assert.NoError(t, err)
			created <- ok
		}(i)
	}
	wg.Wait()
	close(created)

	wins := 0
	for ok := range created {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	count, _ := store.CountAccounts(ctx)
	assert.Equal(t, 1, count)
}
