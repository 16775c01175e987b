package ops

import (
	"context"
	"database/sql"

	"github.com/quietfold/rotor/internal/cipher"
	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/history"
)

// EncryptInput contains parameters for the Encrypt operation.
type EncryptInput struct {
	Text      string  // may be empty
	Shift     int     // any integer; normalized before use
	Label     *string // optional note on the history entry
	NoHistory bool    // skip history recording for this call
}

// EncryptOutput contains the result of the Encrypt operation.
type EncryptOutput struct {
	Text            string `json:"text"`
	Shift           int    `json:"shift"`
	NormalizedShift int    `json:"normalized_shift"`
	HistoryID       string `json:"history_id,omitempty"`
}

// Encrypt applies the Caesar cipher to text and records a history entry.
func Encrypt(ctx context.Context, database *sql.DB, cfg *config.Config, input EncryptInput) (*EncryptOutput, error) {
	if err := validateText(input.Text, cfg); err != nil {
		return nil, err
	}

	normalized := cipher.Normalize(input.Shift)
	result := cipher.Encrypt(input.Text, input.Shift)

	id, err := recordEntry(ctx, database, cfg, &history.Record{
		Op:         history.OpEncrypt,
		Shift:      normalized,
		InputText:  input.Text,
		OutputText: result,
		InputChars: history.CountChars(input.Text),
		Label:      input.Label,
	}, input.NoHistory)
	if err != nil {
		return nil, err
	}

	return &EncryptOutput{
		Text:            result,
		Shift:           input.Shift,
		NormalizedShift: normalized,
		HistoryID:       id,
	}, nil
}
