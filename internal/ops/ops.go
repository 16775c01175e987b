package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/history"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// validateText enforces the configured input size limit.
// Empty text is valid: the cipher operations are total over all text.
func validateText(text string, cfg *config.Config) error {
	if cfg == nil || cfg.MaxTextChars <= 0 {
		return nil
	}
	chars := history.CountChars(text)
	if chars > cfg.MaxTextChars {
		return errors.NewTextTooLarge(cfg.MaxTextChars, chars)
	}
	return nil
}

// parseOpFilter validates an optional op filter string.
func parseOpFilter(op string) (*history.Op, error) {
	if op == "" {
		return nil, nil
	}
	o := history.Op(op)
	if !history.KnownOp(o) {
		return nil, errors.NewInvalidRequest("op must be one of: encrypt, decrypt, crack")
	}
	return &o, nil
}

// recordEntry writes a history entry for a cipher operation and returns its ID.
// Recording is skipped (empty ID, nil error) when history is disabled by
// config or by the per-call noHistory flag.
func recordEntry(ctx context.Context, database *sql.DB, cfg *config.Config, rec *history.Record, noHistory bool) (string, error) {
	if noHistory || (cfg != nil && cfg.DisableHistory) {
		return "", nil
	}

	id, err := generateULID()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	rec.ID = id
	rec.CreatedAt = time.Now().Unix()

	if err := db.Insert(ctx, database, rec); err != nil {
		return "", err
	}
	return id, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
