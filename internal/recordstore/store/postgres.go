package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recordsync/internal/records/models"
)

// Schema is applied by EnsureSchema. Columns default to empty strings so
// every record carries all six fields.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	email    TEXT NOT NULL DEFAULT '',
	phone    TEXT NOT NULL DEFAULT '',
	city     TEXT NOT NULL DEFAULT '',
	district TEXT NOT NULL DEFAULT ''
)`

const recordColumns = "id, name, username, email, phone, city, district"

// PostgresStore keeps records in the records table; ids come from its
// BIGSERIAL sequence.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		id  int64
		rec models.Record
	)
	err := row.Scan(&id, &rec.Name, &rec.Username, &rec.Email, &rec.Phone, &rec.City, &rec.District)
	if err != nil {
		return models.Record{}, err
	}
	rec.ID = formatID(id)
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id models.RecordID) (models.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Record{}, err
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = $1`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, notFound(id)
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, fields models.Fields) (models.Record, error) {
	query := `
		INSERT INTO records (name, username, email, phone, city, district)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + recordColumns
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query,
		fields.Name, fields.Username, fields.Email, fields.Phone, fields.City, fields.District))
	if err != nil {
		return models.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Replace(ctx context.Context, id models.RecordID, fields models.Fields) (models.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Record{}, err
	}
	query := `
		UPDATE records
		SET name = $2, username = $3, email = $4, phone = $5, city = $6, district = $7
		WHERE id = $1
		RETURNING ` + recordColumns
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query,
		n, fields.Name, fields.Username, fields.Email, fields.Phone, fields.City, fields.District))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, notFound(id)
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("update record %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id models.RecordID) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}
