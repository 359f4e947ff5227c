package application

import (
	"context"
	"errors"
	"testing"
)

func TestService_RecordLifecycle(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(nil)
	ctx := context.Background()

	record, err := f.svc.CreateRecord(ctx, "user-token", RecordInput{SubjectName: "Alice", TrainingName: "Safety", DueDate: "2025-01-01", Status: "Red"})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if record.ID != 1 || record.Status != StatusRed || record.CreatedBy != "uma" {
		t.Fatalf("unexpected record %#v", record)
	}

	if err := f.svc.DeleteRecord(ctx, "user-token", record.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for user role, got %v", err)
	}
	if err := f.svc.DeleteRecord(ctx, "manager-token", record.ID); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}

	next, err := f.svc.CreateRecord(ctx, "manager-token", RecordInput{SubjectName: "Bob", TrainingName: "First Aid", DueDate: "2025-02-01", Status: "green"})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if next.ID != 2 || next.Status != StatusGreen || next.CreatedBy != "mia" {
		t.Fatalf("unexpected record %#v", next)
	}

	records, err := f.svc.ListRecords(ctx, "user-token")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != 2 {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestService_CreateRecordAcceptsDesktopClientStatuses(t *testing.T) {
	t.Parallel()

	cases := map[string]Status{
		"gruen": StatusGreen,
		"gelb":  StatusYellow,
		"rot":   StatusRed,
		"Rot":   StatusRed,
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(nil)
			record, err := f.svc.CreateRecord(context.Background(), "user-token", RecordInput{SubjectName: "Alice", TrainingName: "Safety", DueDate: "2025-01-01", Status: input})
			if err != nil {
				t.Fatalf("CreateRecord(%q) failed: %v", input, err)
			}
			if record.Status != want {
				t.Fatalf("expected status %q, got %q", want, record.Status)
			}
		})
	}
}

func TestService_UpdateRecord(t *testing.T) {
	t.Parallel()

	t.Run("preserves identifier and author", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(nil)
		ctx := context.Background()
		created, err := f.svc.CreateRecord(ctx, "manager-token", RecordInput{SubjectName: "Alice", TrainingName: "Safety", Status: "Yellow"})
		if err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}

		updated, err := f.svc.UpdateRecord(ctx, "user-token", created.ID, RecordInput{SubjectName: "Alice B", TrainingName: "Safety II", DueDate: "2026-01-01", Status: "Green"})
		if err != nil {
			t.Fatalf("UpdateRecord failed: %v", err)
		}
		if updated.ID != created.ID || updated.CreatedBy != "mia" || updated.SubjectName != "Alice B" || updated.Status != StatusGreen {
			t.Fatalf("unexpected record %#v", updated)
		}
	})

	t.Run("reports missing records", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(nil)
		_, err := f.svc.UpdateRecord(context.Background(), "user-token", 42, RecordInput{Status: "Red"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(nil)
		_, err := f.svc.CreateRecord(context.Background(), "user-token", RecordInput{SubjectName: "Alice", Status: "Purple"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["status"] == "" {
			t.Fatalf("expected status validation error, got %v", err)
		}
		if len(f.records.records) != 0 {
			t.Fatalf("expected nothing stored")
		}
	})
}

func TestService_RecordPersistenceFailures(t *testing.T) {
	t.Parallel()

	t.Run("keeps applied changes", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(nil)
		f.records.persistErr = &PersistenceError{Applied: true, Err: errors.New("disk full")}

		record, err := f.svc.CreateRecord(context.Background(), "user-token", RecordInput{SubjectName: "Alice", Status: "Red"})
		if err != nil {
			t.Fatalf("expected applied change to succeed, got %v", err)
		}
		if record.ID != 1 {
			t.Fatalf("expected record to be returned, got %#v", record)
		}
		if err := f.svc.DeleteRecord(context.Background(), "manager-token", record.ID); err != nil {
			t.Fatalf("expected applied delete to succeed, got %v", err)
		}
	})

	t.Run("surfaces rolled back changes", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(nil)
		f.records.persistErr = &PersistenceError{Applied: false, Err: errors.New("disk full")}

		_, err := f.svc.CreateRecord(context.Background(), "user-token", RecordInput{SubjectName: "Alice", Status: "Red"})
		if !errors.Is(err, ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
	})
}
