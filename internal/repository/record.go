package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recordbox/recordbox/internal/model"
)

// ErrRecordNotFound is returned when the target record does not exist.
var ErrRecordNotFound = errors.New("record not found")

// CreateRecord inserts a new record and returns it with the storage-assigned id.
func (s *Session) CreateRecord(ctx context.Context, title, img string) (*model.Record, error) {
	query := `
		INSERT INTO records (title, img)
		VALUES ($1, $2)
		RETURNING id, title, img
	`

	record, err := scanRecord(s.conn.QueryRow(ctx, query, title, img))
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return record, nil
}

// GetRecord retrieves a record by its id.
func (s *Session) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	query := `
		SELECT id, title, img
		FROM records
		WHERE id = $1
	`

	record, err := scanRecord(s.conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return record, nil
}

// ListRecords retrieves a page of records using an offset/limit pair.
// Ordered by id for deterministic pages.
func (s *Session) ListRecords(ctx context.Context, skip, limit int) ([]model.Record, error) {
	query := `
		SELECT id, title, img
		FROM records
		ORDER BY id
		OFFSET $1 LIMIT $2
	`

	rows, err := s.conn.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0, limit)
	for rows.Next() {
		var record model.Record
		if err := rows.Scan(&record.ID, &record.Title, &record.Img); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// UpdateRecord replaces every editable field of the record.
func (s *Session) UpdateRecord(ctx context.Context, id int64, title, img string) (*model.Record, error) {
	query := `
		UPDATE records
		SET title = $2, img = $3
		WHERE id = $1
		RETURNING id, title, img
	`

	record, err := scanRecord(s.conn.QueryRow(ctx, query, id, title, img))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	return record, nil
}

// PatchRecord updates only the fields whose pointers are non-nil.
func (s *Session) PatchRecord(ctx context.Context, id int64, title, img *string) (*model.Record, error) {
	query := `
		UPDATE records
		SET title = COALESCE($2, title), img = COALESCE($3, img)
		WHERE id = $1
		RETURNING id, title, img
	`

	record, err := scanRecord(s.conn.QueryRow(ctx, query, id, title, img))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to patch record: %w", err)
	}

	return record, nil
}

// DeleteRecord removes the record row.
func (s *Session) DeleteRecord(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*model.Record, error) {
	var record model.Record
	if err := row.Scan(&record.ID, &record.Title, &record.Img); err != nil {
		return nil, err
	}
	return &record, nil
}
