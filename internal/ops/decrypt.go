package ops

import (
	"context"
	"database/sql"

	"github.com/quietfold/rotor/internal/cipher"
	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/history"
)

// DecryptInput contains parameters for the Decrypt operation.
type DecryptInput struct {
	Text      string
	Shift     int // the shift the text was encrypted with; any integer
	Label     *string
	NoHistory bool
}

// DecryptOutput contains the result of the Decrypt operation.
type DecryptOutput struct {
	Text            string `json:"text"`
	Shift           int    `json:"shift"`
	NormalizedShift int    `json:"normalized_shift"`
	HistoryID       string `json:"history_id,omitempty"`
}

// Decrypt reverses the Caesar cipher for text and records a history entry.
// The recorded shift is the normalized encryption shift, matching Encrypt.
func Decrypt(ctx context.Context, database *sql.DB, cfg *config.Config, input DecryptInput) (*DecryptOutput, error) {
	if err := validateText(input.Text, cfg); err != nil {
		return nil, err
	}

	normalized := cipher.Normalize(input.Shift)
	result := cipher.Decrypt(input.Text, input.Shift)

	id, err := recordEntry(ctx, database, cfg, &history.Record{
		Op:         history.OpDecrypt,
		Shift:      normalized,
		InputText:  input.Text,
		OutputText: result,
		InputChars: history.CountChars(input.Text),
		Label:      input.Label,
	}, input.NoHistory)
	if err != nil {
		return nil, err
	}

	return &DecryptOutput{
		Text:            result,
		Shift:           input.Shift,
		NormalizedShift: normalized,
		HistoryID:       id,
	}, nil
}
