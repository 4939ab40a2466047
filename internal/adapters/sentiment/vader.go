package sentiment

import (
	"github.com/jonreiter/govader"
)

// VaderAnalyzer is a lexical implementation of the SentimentAnalyzer
// interface backed by the VADER lexicon. Stateless and safe for
// concurrent use.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer creates a new VADER analyzer
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Polarity returns the compound polarity in [-1, 1] and a subjectivity
// estimate in [0, 1]. Subjectivity is the non-neutral share of the
// lexicon mass: a text scored entirely neutral is fully objective.
func (a *VaderAnalyzer) Polarity(text string) (float64, float64) {
	scores := a.analyzer.PolarityScores(text)

	subjectivity := 1.0 - scores.Neutral
	if subjectivity < 0 {
		subjectivity = 0
	} else if subjectivity > 1 {
		subjectivity = 1
	}

	return scores.Compound, subjectivity
}
