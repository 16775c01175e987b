package ops

import (
	"context"
	"database/sql"

	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/history"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	Op             string // optional filter: encrypt|decrypt|crack
	IncludeText    *bool  // default: false (summary only)
	IncludeDeleted bool
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *LatestItem `json:"item"` // nil if history is empty
}

// LatestItem contains the latest entry with optional texts.
type LatestItem struct {
	history.Summary        // embedded summary
	InputText       string `json:"input_text,omitempty"`  // only if include_text
	OutputText      string `json:"output_text,omitempty"` // only if include_text
}

// Latest retrieves the most recently recorded history entry.
func Latest(ctx context.Context, database *sql.DB, input LatestInput) (*LatestOutput, error) {
	op, err := parseOpFilter(input.Op)
	if err != nil {
		return nil, err
	}

	// Determine include_text (default: false)
	includeText := false
	if input.IncludeText != nil {
		includeText = *input.IncludeText
	}

	r, err := db.GetLatest(ctx, database, op, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return &LatestOutput{Item: nil}, nil
	}

	item := &LatestItem{Summary: r.ToSummary()}
	if includeText {
		item.InputText = r.InputText
		item.OutputText = r.OutputText
	}

	return &LatestOutput{Item: item}, nil
}
