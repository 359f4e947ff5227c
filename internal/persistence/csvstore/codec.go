package csvstore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/example/training-dashboard/internal/persistence"
)

// Column names of the records file. Order is significant.
var (
	header       = []string{"id", "name", "training", "duedate", "status", "created_by"}
	legacyHeader = header[:5]
)

var (
	// ErrHeaderMismatch marks rows read under a header that is neither the
	// current nor the legacy record-only layout.
	ErrHeaderMismatch = errors.New("csvstore: header mismatch")
	// ErrMalformedRow marks a data row that could not be decoded.
	ErrMalformedRow = errors.New("csvstore: malformed row")
)

// Row is the decode result of a single data line: either a Record or the raw
// fields together with the reason they were rejected.
type Row struct {
	Line   int
	Record persistence.Record
	Raw    []string
	Err    error
}

// Malformed reports whether the row failed to decode.
func (r Row) Malformed() bool {
	return r.Err != nil
}

// decodeRows reads every data row from r. Only read failures of the
// underlying reader are returned as an error; per-row problems are carried on
// the returned rows.
func decodeRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvstore: read header: %w", err)
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\ufeff")
	}

	columns := len(header)
	var headerErr error
	switch {
	case slices.Equal(first, header):
	case slices.Equal(first, legacyHeader):
		columns = len(legacyHeader)
	default:
		headerErr = fmt.Errorf("%w: got %q", ErrHeaderMismatch, strings.Join(first, ","))
	}

	var rows []Row
	seen := make(map[uint32]struct{})
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return rows, fmt.Errorf("csvstore: read row: %w", err)
			}
			rows = append(rows, Row{Line: parseErr.StartLine, Raw: fields, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)})
			continue
		}
		line, _ := reader.FieldPos(0)

		if headerErr != nil {
			rows = append(rows, Row{Line: line, Raw: fields, Err: headerErr})
			continue
		}

		record, err := decodeRecord(fields, columns)
		if err == nil {
			if _, dup := seen[record.ID]; dup {
				err = fmt.Errorf("%w: duplicate id %d", ErrMalformedRow, record.ID)
			}
		}
		if err != nil {
			rows = append(rows, Row{Line: line, Raw: fields, Err: err})
			continue
		}
		seen[record.ID] = struct{}{}
		rows = append(rows, Row{Line: line, Record: record})
	}

	return rows, nil
}

func decodeRecord(fields []string, columns int) (persistence.Record, error) {
	if len(fields) != columns {
		return persistence.Record{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRow, columns, len(fields))
	}

	id, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
	if err != nil || id == 0 {
		return persistence.Record{}, fmt.Errorf("%w: invalid id %q", ErrMalformedRow, fields[0])
	}

	status, ok := NormalizeStatus(fields[4])
	if !ok {
		return persistence.Record{}, fmt.Errorf("%w: invalid status %q", ErrMalformedRow, fields[4])
	}

	record := persistence.Record{
		ID:           uint32(id),
		SubjectName:  fields[1],
		TrainingName: fields[2],
		DueDate:      fields[3],
		Status:       status,
	}
	if columns == len(header) {
		record.CreatedBy = fields[5]
	}
	return record, nil
}

// encodeRecords renders the full file contents, header included.
func encodeRecords(records []persistence.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, record := range records {
		row := []string{
			strconv.FormatUint(uint64(record.ID), 10),
			record.SubjectName,
			record.TrainingName,
			record.DueDate,
			record.Status,
			record.CreatedBy,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NormalizeStatus maps a status label to its canonical spelling. Matching is
// case-insensitive and ignores surrounding whitespace. The German labels
// written by the desktop client are accepted as aliases.
func NormalizeStatus(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "green", "gruen":
		return "Green", true
	case "yellow", "gelb":
		return "Yellow", true
	case "red", "rot":
		return "Red", true
	}
	return "", false
}
