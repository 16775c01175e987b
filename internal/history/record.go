package history

// Op identifies which cipher operation produced a history entry.
type Op string

const (
	OpEncrypt Op = "encrypt"
	OpDecrypt Op = "decrypt"
	OpCrack   Op = "crack"
)

// KnownOp reports whether op is one of the recorded operation kinds.
func KnownOp(op Op) bool {
	return op == OpEncrypt || op == OpDecrypt || op == OpCrack
}

// Record is one entry in the operation history.
type Record struct {
	// ID is a ULID that uniquely identifies this entry
	ID string `json:"id"`

	// Op is the operation that produced the entry
	Op Op `json:"op"`

	// Shift is the normalized shift that was applied.
	// For crack entries it is the best-scoring candidate's shift.
	Shift int `json:"shift"`

	// InputText is the text the operation received
	InputText string `json:"input_text"`

	// OutputText is the text the operation produced.
	// For crack entries it is the best-scoring candidate's text.
	OutputText string `json:"output_text"`

	// InputChars is the input character count (runes, not bytes)
	InputChars int `json:"input_chars"`

	// Score is the English-likelihood score of the best candidate (crack only)
	Score *float64 `json:"score,omitempty"`

	// Label is an optional user-supplied note
	Label *string `json:"label,omitempty"`

	// CreatedAt is the Unix timestamp when the entry was recorded
	CreatedAt int64 `json:"created_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// Summary is a Record without the full texts, for browse operations.
type Summary struct {
	ID         string   `json:"id"`
	Op         Op       `json:"op"`
	Shift      int      `json:"shift"`
	Preview    string   `json:"preview"`
	InputChars int      `json:"input_chars"`
	Score      *float64 `json:"score,omitempty"`
	Label      *string  `json:"label,omitempty"`
	CreatedAt  int64    `json:"created_at"`
	DeletedAt  *int64   `json:"deleted_at,omitempty"`
}

// ToSummary converts a Record to a Summary, replacing the texts with a
// short preview of the input.
func (r *Record) ToSummary() Summary {
	return Summary{
		ID:         r.ID,
		Op:         r.Op,
		Shift:      r.Shift,
		Preview:    Preview(r.InputText, PreviewChars),
		InputChars: r.InputChars,
		Score:      r.Score,
		Label:      r.Label,
		CreatedAt:  r.CreatedAt,
		DeletedAt:  r.DeletedAt,
	}
}
