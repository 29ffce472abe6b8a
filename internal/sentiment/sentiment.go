// Package sentiment scores article text for subjectivity. The scoring
// model is deliberately opaque to callers: anything that satisfies
// Analyzer can be plugged in.
package sentiment

import "strings"

// Analyzer returns a subjectivity value in [0,1] for a piece of text.
// Higher means more opinionated.
type Analyzer interface {
	Subjectivity(text string) float64
}

// Objectivity is the complement of the analyzer's subjectivity score,
// clamped into [0,1].
func Objectivity(a Analyzer, text string) float64 {
	o := 1 - a.Subjectivity(text)
	if o < 0 {
		return 0
	}
	if o > 1 {
		return 1
	}
	return o
}

// Lexicon is a word-list analyzer: the subjectivity of a text is the
// mean weight of its scored words. Words outside the lexicon count as
// fully objective.
type Lexicon struct {
	weights map[string]float64
}

// NewLexicon returns an analyzer with the built-in lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{weights: defaultWeights}
}

func (l *Lexicon) Subjectivity(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '\'')
	})
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += l.weights[strings.Trim(w, "'")]
	}
	return sum / float64(len(words))
}

// Weights lean towards opinion markers: evaluative adjectives,
// intensifiers and hedges.
var defaultWeights = map[string]float64{
	"awful": 1, "amazing": 1, "fantastic": 1, "terrible": 1,
	"horrible": 1, "wonderful": 1, "best": 0.9, "worst": 0.9,
	"great": 0.8, "bad": 0.7, "good": 0.6, "beautiful": 0.8,
	"ugly": 0.8, "brilliant": 0.9, "stupid": 0.9, "ridiculous": 0.9,
	"absolutely": 0.9, "totally": 0.8, "really": 0.6, "very": 0.5,
	"extremely": 0.8, "incredibly": 0.9, "honestly": 0.7,
	"obviously": 0.7, "clearly": 0.5, "surely": 0.6, "definitely": 0.7,
	"think": 0.5, "believe": 0.6, "feel": 0.6, "hate": 0.9,
	"love": 0.8, "like": 0.4, "dislike": 0.7, "prefer": 0.5,
	"should": 0.5, "must": 0.4, "probably": 0.5, "perhaps": 0.4,
	"maybe": 0.4, "seems": 0.4, "apparently": 0.5, "arguably": 0.7,
	"overrated": 1, "underrated": 1, "pathetic": 0.9, "genius": 0.8,
	"disappointing": 0.9, "impressive": 0.8, "boring": 0.8,
	"exciting": 0.7, "shocking": 0.8, "outrageous": 0.9,
}
