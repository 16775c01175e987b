package ops

import (
	"github.com/quietfold/rotor/internal/cipher"
	"github.com/quietfold/rotor/internal/config"
)

// ScoreInput contains parameters for the Score operation.
type ScoreInput struct {
	Text string
}

// ScoreOutput contains the result of the Score operation.
type ScoreOutput struct {
	Score float64 `json:"score"`
}

// Score measures the English-likelihood of text. Scoring is a read-only
// probe and never records a history entry.
func Score(cfg *config.Config, input ScoreInput) (*ScoreOutput, error) {
	if err := validateText(input.Text, cfg); err != nil {
		return nil, err
	}
	return &ScoreOutput{Score: cipher.Score(input.Text)}, nil
}
