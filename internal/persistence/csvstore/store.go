// Package csvstore implements the record store: an in-memory collection of
// training records backed by a comma-separated file that is rewritten in full
// after every mutation.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/moby/sys/atomicwriter"

	"github.com/example/training-dashboard/internal/persistence"
)

// Durability selects what happens to an in-memory mutation when the durable
// rewrite fails.
type Durability int

const (
	// BestEffort keeps the mutation and reports the failure.
	BestEffort Durability = iota
	// Strict rolls the mutation back and fails the call.
	Strict
)

// LoadPolicy selects how malformed rows are treated at load time.
type LoadPolicy int

const (
	// SkipMalformed logs and drops malformed rows.
	SkipMalformed LoadPolicy = iota
	// AbortOnMalformed fails the load on the first malformed row.
	AbortOnMalformed
)

// WriteFunc replaces the contents of path with data so that readers never
// observe a partial file.
type WriteFunc func(path string, data []byte, perm os.FileMode) error

// Options configures a Store.
type Options struct {
	Durability Durability
	LoadPolicy LoadPolicy
	Logger     *slog.Logger
	// Write overrides the atomic file writer. Tests use it to inject failures.
	Write WriteFunc
}

// ErrIDsExhausted is returned by CreateRecord once the identifier 4294967295
// has been handed out or recovered. Identifiers are never reused, so no
// further records can be created.
var ErrIDsExhausted = errors.New("csvstore: record identifiers exhausted")

// LoadReport summarises a load from the durable file. NextID is zero when
// the identifier space is exhausted.
type LoadReport struct {
	Loaded  int
	Skipped []Row
	NextID  uint32
}

// Store owns the record collection and the identifier counter. All methods
// are safe for concurrent use; mutations and the file rewrite they trigger
// share one critical section.
type Store struct {
	mu         sync.Mutex
	path       string
	records    []persistence.Record
	nextID     uint32
	durability Durability
	loadPolicy LoadPolicy
	write      WriteFunc
	logger     *slog.Logger
}

// New returns an empty store bound to path. Call Load to recover existing
// records.
func New(path string, opts Options) *Store {
	write := opts.Write
	if write == nil {
		write = atomicwriter.WriteFile
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:       path,
		nextID:     1,
		durability: opts.Durability,
		loadPolicy: opts.LoadPolicy,
		write:      write,
		logger:     logger.With("component", "csvstore", "path", path),
	}
}

// Open constructs a store and loads the durable file.
func Open(ctx context.Context, path string, opts Options) (*Store, LoadReport, error) {
	store := New(path, opts)
	report, err := store.Load(ctx)
	if err != nil {
		return nil, report, err
	}
	return store, report, nil
}

// Load replaces the in-memory collection with the contents of the durable
// file. A missing or empty file yields an empty collection. The counter is
// set to one past the largest recovered identifier.
func (s *Store) Load(ctx context.Context) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.records = nil
		s.nextID = 1
		s.logger.InfoContext(ctx, "records file absent, starting empty")
		return LoadReport{NextID: s.nextID}, nil
	}
	if err != nil {
		return LoadReport{}, fmt.Errorf("csvstore: open %s: %w", s.path, err)
	}
	defer file.Close()

	rows, err := decodeRows(file)
	if err != nil {
		return LoadReport{}, err
	}

	var (
		records []persistence.Record
		skipped []Row
		maxID   uint32
	)
	for _, row := range rows {
		if row.Malformed() {
			if s.loadPolicy == AbortOnMalformed {
				return LoadReport{}, fmt.Errorf("csvstore: line %d: %w", row.Line, row.Err)
			}
			s.logger.WarnContext(ctx, "skipping malformed record row", "line", row.Line, "raw", row.Raw, "error", row.Err)
			skipped = append(skipped, row)
			continue
		}
		records = append(records, row.Record)
		if row.Record.ID > maxID {
			maxID = row.Record.ID
		}
	}

	s.records = records
	// Wraps to zero when math.MaxUint32 was recovered; CreateRecord then refuses.
	s.nextID = maxID + 1

	report := LoadReport{Loaded: len(records), Skipped: skipped, NextID: s.nextID}
	s.logger.InfoContext(ctx, "records loaded", "loaded", report.Loaded, "skipped", len(skipped), "next_id", report.NextID)
	return report, nil
}

// ListRecords returns a copy of the collection in insertion order.
func (s *Store) ListRecords(ctx context.Context) ([]persistence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records), nil
}

// CreateRecord appends a record under the next identifier and rewrites the
// file.
func (s *Store) CreateRecord(ctx context.Context, fields persistence.RecordFields, createdBy string) (persistence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A zero counter means the last identifier wrapped.
	if s.nextID == 0 {
		return persistence.Record{}, ErrIDsExhausted
	}

	record := persistence.Record{
		ID:           s.nextID,
		SubjectName:  fields.SubjectName,
		TrainingName: fields.TrainingName,
		DueDate:      fields.DueDate,
		Status:       fields.Status,
		CreatedBy:    createdBy,
	}
	// The counter advances even if a strict rollback follows; identifiers
	// are never handed out twice.
	s.nextID++

	previous := s.records
	s.records = append(slices.Clone(previous), record)

	if err := s.persistLocked(ctx, previous); err != nil {
		if s.durability == Strict {
			return persistence.Record{}, err
		}
		return record, err
	}
	return record, nil
}

// UpdateRecord overwrites the caller supplied fields of the record with the
// given identifier. The identifier and CreatedBy are preserved.
func (s *Store) UpdateRecord(ctx context.Context, id uint32, fields persistence.RecordFields) (persistence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return persistence.Record{}, persistence.ErrNotFound
	}

	previous := s.records
	s.records = slices.Clone(previous)
	updated := s.records[idx]
	updated.SubjectName = fields.SubjectName
	updated.TrainingName = fields.TrainingName
	updated.DueDate = fields.DueDate
	updated.Status = fields.Status
	s.records[idx] = updated

	if err := s.persistLocked(ctx, previous); err != nil {
		if s.durability == Strict {
			return persistence.Record{}, err
		}
		return updated, err
	}
	return updated, nil
}

// DeleteRecord removes the record with the given identifier and rewrites the
// file.
func (s *Store) DeleteRecord(ctx context.Context, id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return persistence.ErrNotFound
	}

	previous := s.records
	s.records = slices.Delete(slices.Clone(previous), idx, idx+1)

	return s.persistLocked(ctx, previous)
}

// NextID reports the identifier the next create will receive, or zero when
// the identifier space is exhausted.
func (s *Store) NextID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

func (s *Store) indexLocked(id uint32) int {
	return slices.IndexFunc(s.records, func(r persistence.Record) bool { return r.ID == id })
}

// persistLocked rewrites the durable file from the current collection. On
// failure under Strict durability the collection is restored to previous.
func (s *Store) persistLocked(ctx context.Context, previous []persistence.Record) error {
	data, err := encodeRecords(s.records)
	if err == nil {
		err = s.write(s.path, data, 0o644)
	}
	if err == nil {
		return nil
	}

	applied := s.durability != Strict
	if !applied {
		s.records = previous
	}
	s.logger.ErrorContext(ctx, "failed to persist records", "error", err, "applied", applied)
	return &persistence.PersistError{Applied: applied, Err: err}
}
