package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/training-dashboard/internal/persistence"
	"github.com/example/training-dashboard/internal/persistence/memory"
	"github.com/example/training-dashboard/internal/testfixtures"
)

func newPersistenceSession(opts ...testfixtures.SessionOption) persistence.Session {
	return testfixtures.NewSessionFixture(opts...).Persistence()
}

func TestSessionStore_ResolveAndDestroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewSessionStore()

	owner := testfixtures.NewAccountFixture(testfixtures.WithUsername("bob"))
	session := newPersistenceSession(testfixtures.ForAccount(owner))
	_, err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	resolved, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session, resolved)
	assert.Equal(t, owner.ID, resolved.AccountID)

	_, err = store.CreateSession(ctx, session)
	assert.ErrorIs(t, err, persistence.ErrDuplicate)

	require.NoError(t, store.DeleteSession(ctx, session.Token))
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	assert.NoError(t, store.DeleteSession(ctx, session.Token), "destroy is idempotent")
}

func TestSessionStore_RejectsIncompleteSessions(t *testing.T) {
	t.Parallel()
	store := memory.NewSessionStore()

	_, err := store.CreateSession(context.Background(), newPersistenceSession(testfixtures.WithSessionToken(" ")))
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)

	orphan := newPersistenceSession()
	orphan.AccountID = ""
	_, err = store.CreateSession(context.Background(), orphan)
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}

func TestSessionStore_Pruning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewSessionStore()
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	first := testfixtures.NewAccountFixture()
	second := testfixtures.NewAccountFixture()

	for _, s := range []persistence.Session{
		newPersistenceSession(testfixtures.WithSessionToken("expired"), testfixtures.ForAccount(first), testfixtures.WithSessionExpiresAt(now.Add(-time.Minute))),
		newPersistenceSession(testfixtures.WithSessionToken("boundary"), testfixtures.ForAccount(first), testfixtures.WithSessionExpiresAt(now)),
		newPersistenceSession(testfixtures.WithSessionToken("live"), testfixtures.ForAccount(second), testfixtures.WithSessionExpiresAt(now.Add(time.Hour))),
		newPersistenceSession(testfixtures.WithSessionToken("forever"), testfixtures.ForAccount(first)),
	} {
		_, err := store.CreateSession(ctx, s)
		require.NoError(t, err)
	}

	removed, err := store.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = store.DeleteSessionsForAccount(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.GetSession(ctx, "live")
	assert.NoError(t, err)
	_, err = store.GetSession(ctx, "forever")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}
