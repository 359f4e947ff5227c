package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/training-dashboard/internal/adapter"
	"github.com/example/training-dashboard/internal/application"
	"github.com/example/training-dashboard/internal/persistence/csvstore"
	"github.com/example/training-dashboard/internal/persistence/memory"
)

// StoreHarness provides the in-memory account and session stores together
// with a record store backed by a temporary CSV file, for integration-style
// tests.
type StoreHarness struct {
	Accounts    *memory.AccountStore
	Sessions    *memory.SessionStore
	Records     *csvstore.Store
	RecordsPath string
}

// NewStoreHarness constructs a StoreHarness in a fresh temporary directory.
// opts configures the record store; its Logger defaults to slog.Default.
func NewStoreHarness(tb testing.TB, opts csvstore.Options) *StoreHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "employees.csv")
	records, _, err := csvstore.Open(context.Background(), path, opts)
	if err != nil {
		tb.Fatalf("failed to open record store: %v", err)
	}

	return &StoreHarness{
		Accounts:    memory.NewAccountStore(),
		Sessions:    memory.NewSessionStore(),
		Records:     records,
		RecordsPath: path,
	}
}

// Reopen loads a second record store from the harness file, simulating a
// process restart.
func (h *StoreHarness) Reopen(tb testing.TB, opts csvstore.Options) (*csvstore.Store, csvstore.LoadReport) {
	tb.Helper()

	records, report, err := csvstore.Open(context.Background(), h.RecordsPath, opts)
	if err != nil {
		tb.Fatalf("failed to reopen record store: %v", err)
	}
	return records, report
}

// Deps returns service dependencies wired to the harness stores.
func (h *StoreHarness) Deps() application.ServiceDeps {
	return application.ServiceDeps{
		Accounts: adapter.Accounts(h.Accounts),
		Sessions: adapter.Sessions(h.Sessions),
		Records:  adapter.Records(h.Records),
	}
}
