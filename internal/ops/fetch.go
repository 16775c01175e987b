package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/history"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeDeleted bool
	IncludeText    *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	history.Record // embedded (copy, not pointer)
}

// Fetch retrieves a history entry by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetByID(ctx, database, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Record: *r, // copy, not pointer
	}

	includeText := true
	if input.IncludeText != nil {
		includeText = *input.IncludeText
	}
	if !includeText {
		output.InputText = ""
		output.OutputText = ""
	}

	return output, nil
}
