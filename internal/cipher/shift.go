package cipher

// AlphabetSize is the number of letters in the Latin alphabet.
const AlphabetSize = 26

// Normalize reduces any integer shift to its canonical representative in [0,26).
// Go's % truncates toward zero, so negative shifts need the add-then-mod fold.
func Normalize(shift int) int {
	return ((shift % AlphabetSize) + AlphabetSize) % AlphabetSize
}
