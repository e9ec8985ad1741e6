package analyzer

import (
	"github.com/surgebase/porter2"
)

// minStemLength keeps short command-like tokens ("ls", "cp", "dd") intact.
const minStemLength = 4

// Stemmer reduces English words to their Porter2 stems.
type Stemmer struct{}

func NewStemmer() *Stemmer {
	return &Stemmer{}
}

// Stem returns the stem of a lowercase word.
func (s *Stemmer) Stem(word string) string {
	if len(word) < minStemLength {
		return word
	}
	return porter2.Stem(word)
}
