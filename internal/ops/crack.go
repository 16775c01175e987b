package ops

import (
	"context"
	"database/sql"
	"sort"

	"github.com/quietfold/rotor/internal/cipher"
	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/history"
)

// CrackInput contains parameters for the Crack operation.
type CrackInput struct {
	Text      string
	Top       int // trim the ranked candidate list to the top N; 0 = all 26
	Label     *string
	NoHistory bool
}

// RankedCandidate is a scored candidate with its 1-based rank after sorting.
type RankedCandidate struct {
	Rank  int     `json:"rank"`
	Shift int     `json:"shift"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// CrackOutput contains the result of the Crack operation.
type CrackOutput struct {
	Best       cipher.ScoredCandidate `json:"best"`
	Candidates []RankedCandidate      `json:"candidates"`
	HistoryID  string                 `json:"history_id,omitempty"`
}

// Crack tries all 26 shifts against ciphertext, scores every candidate
// against the English letter-frequency profile, and returns the best match
// plus the full ranked list (descending score; ties keep ascending shift
// order). The history entry records the best candidate.
func Crack(ctx context.Context, database *sql.DB, cfg *config.Config, input CrackInput) (*CrackOutput, error) {
	if err := validateText(input.Text, cfg); err != nil {
		return nil, err
	}

	candidates := cipher.BruteForce(input.Text)

	best, err := cipher.SelectBest(candidates)
	if err != nil {
		// Unreachable: BruteForce always yields 26 candidates
		return nil, err
	}

	// Rank on the unclamped score: short candidates all clamp to 0, which
	// would erase the ordering between them. Stable sort keeps ascending
	// shift order within exact ties, consistent with SelectBest's
	// first-seen-wins rule.
	type scoredRow struct {
		cand cipher.Candidate
		raw  float64
	}
	rows := make([]scoredRow, len(candidates))
	for i, c := range candidates {
		rows[i] = scoredRow{cand: c, raw: cipher.RawScore(c.Text)}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].raw > rows[j].raw
	})

	if input.Top > 0 && input.Top < len(rows) {
		rows = rows[:input.Top]
	}

	ranked := make([]RankedCandidate, len(rows))
	for i, row := range rows {
		score := row.raw
		if score < 0 {
			score = 0
		}
		ranked[i] = RankedCandidate{
			Rank:  i + 1,
			Shift: row.cand.Shift,
			Text:  row.cand.Text,
			Score: score,
		}
	}

	id, err := recordEntry(ctx, database, cfg, &history.Record{
		Op:         history.OpCrack,
		Shift:      best.Shift,
		InputText:  input.Text,
		OutputText: best.Text,
		InputChars: history.CountChars(input.Text),
		Score:      &best.Score,
		Label:      input.Label,
	}, input.NoHistory)
	if err != nil {
		return nil, err
	}

	return &CrackOutput{
		Best:       *best,
		Candidates: ranked,
		HistoryID:  id,
	}, nil
}
