package cipher

import (
	"github.com/quietfold/rotor/internal/errors"
)

// englishFreq is the relative frequency of each letter in English prose
// (Lewand's table), indexed by alphabet position. Values sum to ~1.
var englishFreq = [AlphabetSize]float64{
	0.08167, // a
	0.01492, // b
	0.02782, // c
	0.04253, // d
	0.12702, // e
	0.02228, // f
	0.02015, // g
	0.06094, // h
	0.06966, // i
	0.00153, // j
	0.00772, // k
	0.04025, // l
	0.02406, // m
	0.06749, // n
	0.07507, // o
	0.01929, // p
	0.00095, // q
	0.05987, // r
	0.06327, // s
	0.09056, // t
	0.02758, // u
	0.00978, // v
	0.02360, // w
	0.00150, // x
	0.01974, // y
	0.00074, // z
}

// ScoredCandidate is a Candidate with its English-likelihood score attached.
type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// Score measures how closely the letter-frequency profile of text matches
// English. Only ASCII letters count (case-insensitive); text with no letters
// scores exactly 0. Otherwise the score is max(0, 1 - D) where D is the L1
// distance between the observed distribution and englishFreq. The value is a
// ranking signal, not a calibrated probability.
func Score(text string) float64 {
	return clampScore(RawScore(text))
}

// RawScore is Score without the floor at 0. Short texts routinely deviate
// from the reference profile by more than 1, so their clamped scores all
// collapse to 0; ordering candidates against each other has to use the
// unclamped value.
func RawScore(text string) float64 {
	var counts [AlphabetSize]int
	total := 0
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			counts[r-'a']++
			total++
		case r >= 'A' && r <= 'Z':
			counts[r-'A']++
			total++
		}
	}

	if total == 0 {
		return 0
	}

	deviation := 0.0
	for i := 0; i < AlphabetSize; i++ {
		observed := float64(counts[i]) / float64(total)
		diff := observed - englishFreq[i]
		if diff < 0 {
			diff = -diff
		}
		deviation += diff
	}

	return 1 - deviation
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	return s
}

// SelectBest returns the candidate whose frequency profile sits strictly
// closest to English. Comparison uses RawScore so that candidates whose
// reported score clamps to 0 still order correctly; the returned Score is
// clamped. Ties go to the earliest candidate in the slice: a candidate only
// displaces the current best on strict improvement. Returns INVALID_REQUEST
// if candidates is empty.
func SelectBest(candidates []Candidate) (*ScoredCandidate, error) {
	if len(candidates) == 0 {
		return nil, errors.NewInvalidRequest("candidates must not be empty")
	}

	bestRaw := RawScore(candidates[0].Text)
	best := ScoredCandidate{
		Candidate: candidates[0],
		Score:     clampScore(bestRaw),
	}
	for _, c := range candidates[1:] {
		if raw := RawScore(c.Text); raw > bestRaw {
			bestRaw = raw
			best = ScoredCandidate{Candidate: c, Score: clampScore(raw)}
		}
	}
	return &best, nil
}
