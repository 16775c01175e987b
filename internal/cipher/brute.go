package cipher

// Candidate is the result of one brute-force trial: the shift that was
// applied and the resulting text. Immutable once produced.
type Candidate struct {
	Shift int    `json:"shift"`
	Text  string `json:"text"`
}

// BruteForce applies every possible shift 0..25 to ciphertext and returns
// all 26 candidates in ascending shift order. Trying all 26 encrypt-shifts
// covers all 26 decrypt-shifts, since encrypting with shift s equals
// decrypting with shift 26-s. Always returns exactly 26 entries, even for
// empty or non-alphabetic input.
func BruteForce(ciphertext string) []Candidate {
	candidates := make([]Candidate, AlphabetSize)
	for shift := 0; shift < AlphabetSize; shift++ {
		candidates[shift] = Candidate{
			Shift: shift,
			Text:  Encrypt(ciphertext, shift),
		}
	}
	return candidates
}
