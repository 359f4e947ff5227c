package application

import (
	"context"
	"fmt"
)

func (s *Service) recordsReady() error {
	if err := s.ready(); err != nil {
		return err
	}
	if s.records == nil {
		return fmt.Errorf("record store not configured")
	}
	return nil
}

// ListRecords returns every training record to any authenticated session.
func (s *Service) ListRecords(ctx context.Context, token string) (records []Record, err error) {
	if err = s.recordsReady(); err != nil {
		return nil, err
	}

	logger := s.loggerWith(ctx, "RecordService", "ListRecords")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "record listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_count", len(records)).InfoContext(ctx, "records listed")
	}()

	if _, err = s.authorize(ctx, token, RoleUser); err != nil {
		return nil, err
	}
	return s.records.ListRecords(ctx)
}

// CreateRecord stores a new record authored by the session's username.
func (s *Service) CreateRecord(ctx context.Context, token string, input RecordInput) (record Record, err error) {
	if err = s.recordsReady(); err != nil {
		return Record{}, err
	}

	logger := s.loggerWith(ctx, "RecordService", "CreateRecord")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "record creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID, "created_by", record.CreatedBy).InfoContext(ctx, "record created")
	}()

	var session Session
	if session, err = s.authorize(ctx, token, RoleUser); err != nil {
		return Record{}, err
	}

	fields, vErr := validateRecordInput(input)
	if vErr.HasErrors() {
		err = vErr
		return Record{}, err
	}

	record, err = s.records.CreateRecord(ctx, fields, session.Username)
	if err = absorbApplied(ctx, logger, err); err != nil {
		return Record{}, err
	}
	return record, nil
}

// UpdateRecord overwrites the editable fields of a record. The identifier
// and author are preserved.
func (s *Service) UpdateRecord(ctx context.Context, token string, id uint32, input RecordInput) (record Record, err error) {
	if err = s.recordsReady(); err != nil {
		return Record{}, err
	}

	logger := s.loggerWith(ctx, "RecordService", "UpdateRecord", "record_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "record update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record updated")
	}()

	if _, err = s.authorize(ctx, token, RoleUser); err != nil {
		return Record{}, err
	}

	fields, vErr := validateRecordInput(input)
	if vErr.HasErrors() {
		err = vErr
		return Record{}, err
	}

	record, err = s.records.UpdateRecord(ctx, id, fields)
	if err = absorbApplied(ctx, logger, err); err != nil {
		return Record{}, err
	}
	return record, nil
}

// DeleteRecord removes a record for managers and administrators. Identifiers
// are never reassigned.
func (s *Service) DeleteRecord(ctx context.Context, token string, id uint32) (err error) {
	if err = s.recordsReady(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "RecordService", "DeleteRecord", "record_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "record deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record deleted")
	}()

	if _, err = s.authorize(ctx, token, RoleManager); err != nil {
		return err
	}

	err = s.records.DeleteRecord(ctx, id)
	return absorbApplied(ctx, logger, err)
}

func validateRecordInput(input RecordInput) (RecordFields, *ValidationError) {
	vErr := &ValidationError{}

	status, ok := ParseStatus(input.Status)
	if !ok {
		vErr.add("status", "status must be one of Green, Yellow, Red")
	}

	return RecordFields{
		SubjectName:  input.SubjectName,
		TrainingName: input.TrainingName,
		DueDate:      input.DueDate,
		Status:       status,
	}, vErr
}
