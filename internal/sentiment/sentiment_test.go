package sentiment

import "testing"

func TestObjectivityRange(t *testing.T) {
	a := NewLexicon()
	texts := []string{
		"",
		"The report was published on Tuesday.",
		"Absolutely amazing, the best most wonderful fantastic thing.",
		"water water water",
	}
	for _, text := range texts {
		o := Objectivity(a, text)
		if o < 0 || o > 1 {
			t.Errorf("Objectivity(%q) = %v, out of [0,1]", text, o)
		}
	}
}

func TestSubjectiveTextScoresLower(t *testing.T) {
	a := NewLexicon()
	neutral := Objectivity(a, "The committee met on Thursday to review the budget figures.")
	opinion := Objectivity(a, "I honestly think this is absolutely the worst, most ridiculous idea.")
	if opinion >= neutral {
		t.Errorf("opinionated text objectivity %v should be below neutral %v", opinion, neutral)
	}
}

func TestEmptyTextIsObjective(t *testing.T) {
	if got := Objectivity(NewLexicon(), ""); got != 1 {
		t.Errorf("empty text objectivity = %v, want 1", got)
	}
}

type fixed float64

func (f fixed) Subjectivity(string) float64 { return float64(f) }

func TestObjectivityClamps(t *testing.T) {
	if got := Objectivity(fixed(1.5), "x"); got != 0 {
		t.Errorf("clamp low: got %v", got)
	}
	if got := Objectivity(fixed(-0.5), "x"); got != 1 {
		t.Errorf("clamp high: got %v", got)
	}
}
