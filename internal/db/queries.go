package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/history"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.RotorError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const entryColumns = `id, op, shift, input_text, output_text, input_chars, score, label, created_at, deleted_at`

// Insert stores a new history entry in the database.
func Insert(ctx context.Context, db *sql.DB, r *history.Record) error {
	query := `
		INSERT INTO entries (
			id, op, shift, input_text, output_text,
			input_chars, score, label, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err := db.ExecContext(ctx, query,
		r.ID, string(r.Op), r.Shift, r.InputText, r.OutputText,
		r.InputChars, toNullFloat(r.Score), toNullString(r.Label), r.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// InsertTx stores a new history entry within a transaction.
// Used by import in error mode, where all inserts commit or none do.
func InsertTx(ctx context.Context, tx *sql.Tx, r *history.Record) error {
	query := `
		INSERT INTO entries (
			id, op, shift, input_text, output_text,
			input_chars, score, label, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		r.ID, string(r.Op), r.Shift, r.InputText, r.OutputText,
		r.InputChars, toNullFloat(r.Score), toNullString(r.Label), r.CreatedAt,
		toNullInt(r.DeletedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// Replace overwrites an existing entry (same id) with the given record.
// Used by import in replace mode.
func Replace(ctx context.Context, db *sql.DB, r *history.Record) error {
	query := `
		INSERT OR REPLACE INTO entries (
			id, op, shift, input_text, output_text,
			input_chars, score, label, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		r.ID, string(r.Op), r.Shift, r.InputText, r.OutputText,
		r.InputChars, toNullFloat(r.Score), toNullString(r.Label), r.CreatedAt,
		toNullInt(r.DeletedAt),
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a history entry by its ULID.
// If includeDeleted is false, soft-deleted entries are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*history.Record, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	row := db.QueryRowContext(ctx, query, id)
	r, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFound(id)
		}
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// List retrieves entry summaries newest-first with pagination.
// op filters to a single operation kind when non-nil.
func List(ctx context.Context, db *sql.DB, op *history.Op, limit, offset int, includeDeleted bool) ([]history.Summary, int, error) {
	where, args := listFilter(op, includeDeleted)

	var total int
	countQuery := `SELECT COUNT(*) FROM entries` + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + entryColumns + ` FROM entries` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := make([]history.Summary, 0, limit)
	for rows.Next() {
		r, err := ScanRecordFromRows(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, r.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// GetLatest retrieves the most recently created entry, or nil if none exists.
// op filters to a single operation kind when non-nil.
func GetLatest(ctx context.Context, db *sql.DB, op *history.Op, includeDeleted bool) (*history.Record, error) {
	where, args := listFilter(op, includeDeleted)
	query := `SELECT ` + entryColumns + ` FROM entries` + where +
		` ORDER BY created_at DESC, id DESC LIMIT 1`

	row := db.QueryRowContext(ctx, query, args...)
	r, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// listFilter builds the WHERE clause shared by List and GetLatest.
func listFilter(op *history.Op, includeDeleted bool) (string, []any) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 1)

	if !includeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	if op != nil {
		clauses = append(clauses, "op = ?")
		args = append(args, string(*op))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// SoftDelete marks an entry as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	query := `UPDATE entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
	result, err := db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// PurgeDeleted permanently removes soft-deleted entries.
// olderThanDays, when non-nil, restricts the purge to entries deleted more
// than N days ago. Returns the number of rows removed.
func PurgeDeleted(ctx context.Context, db *sql.DB, olderThanDays *int) (int, error) {
	query := `DELETE FROM entries WHERE deleted_at IS NOT NULL`
	args := []any{}

	if olderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*olderThanDays).Unix()
		query += ` AND deleted_at < ?`
		args = append(args, cutoff)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(affected), nil
}

// StreamForExport returns rows over all entries for export, oldest first.
// Callers must Close the returned rows and scan with ScanRecordFromRows.
func StreamForExport(ctx context.Context, db *sql.DB, includeDeleted bool) (*sql.Rows, error) {
	query := `SELECT ` + entryColumns + ` FROM entries`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// scanRecord scans a single row into a history.Record.
func scanRecord(row *sql.Row) (*history.Record, error) {
	var r history.Record
	var op string
	var score sql.NullFloat64
	var label sql.NullString
	var deletedAt sql.NullInt64

	err := row.Scan(&r.ID, &op, &r.Shift, &r.InputText, &r.OutputText,
		&r.InputChars, &score, &label, &r.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	r.Op = history.Op(op)
	r.Score = fromNullFloat(score)
	r.Label = fromNullString(label)
	r.DeletedAt = fromNullInt(deletedAt)
	return &r, nil
}

// ScanRecordFromRows scans the current row of a multi-row result set.
func ScanRecordFromRows(rows *sql.Rows) (*history.Record, error) {
	var r history.Record
	var op string
	var score sql.NullFloat64
	var label sql.NullString
	var deletedAt sql.NullInt64

	err := rows.Scan(&r.ID, &op, &r.Shift, &r.InputText, &r.OutputText,
		&r.InputChars, &score, &label, &r.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	r.Op = history.Op(op)
	r.Score = fromNullFloat(score)
	r.Label = fromNullString(label)
	r.DeletedAt = fromNullInt(deletedAt)
	return &r, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func toNullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func fromNullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}
