package ops

import (
	"context"
	"database/sql"

	"github.com/quietfold/rotor/internal/db"
	"github.com/quietfold/rotor/internal/history"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Op             string // optional filter: encrypt|decrypt|crack
	Limit          int    // default: 20, max: 100
	Offset         int    // default: 0
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []history.Summary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List retrieves history entry summaries newest-first with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	op, err := parseOpFilter(input.Op)
	if err != nil {
		return nil, err
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	// Query database
	summaries, total, err := db.List(ctx, database, op, limit, offset, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []history.Summary{}
	}

	// Calculate has_more
	hasMore := offset+len(summaries) < total

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
