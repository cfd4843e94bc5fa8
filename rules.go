package main

import "sort"

// ──────────────────────────────────────────────
// Rule scoring engine
// ──────────────────────────────────────────────

// cropRule is one row of the qualification table: a climate predicate
// and the fixed confidence awarded when it holds. N, P and K are carried
// through for response echoing but never evaluated here.
type cropRule struct {
	Crop       string
	Confidence float64
	Qualifies  func(v FeatureVector) bool
}

// ruleTable is evaluated in order; table position is the tie-breaker for
// equal confidence constants.
var ruleTable = []cropRule{
	{"rice", 0.9, func(v FeatureVector) bool {
		return v.Temperature >= 20 && v.Temperature <= 35 && v.Humidity >= 80 &&
			v.PH >= 5.5 && v.PH <= 7.0 && v.Rainfall >= 150
	}},
	{"maize", 0.85, func(v FeatureVector) bool {
		return v.Temperature >= 21 && v.Temperature <= 27 && v.Humidity >= 60 && v.Humidity <= 70 &&
			v.PH >= 6.0 && v.PH <= 7.5 && v.Rainfall >= 50 && v.Rainfall <= 75
	}},
	{"wheat", 0.8, func(v FeatureVector) bool {
		return v.Temperature >= 15 && v.Temperature <= 25 && v.Humidity >= 50 && v.Humidity <= 60 &&
			v.PH >= 6.0 && v.PH <= 7.5 && v.Rainfall >= 30 && v.Rainfall <= 100
	}},
	{"cotton", 0.75, func(v FeatureVector) bool {
		return v.Temperature >= 21 && v.Temperature <= 30 && v.Humidity >= 50 && v.Humidity <= 80 &&
			v.PH >= 5.8 && v.PH <= 8.0 && v.Rainfall >= 50 && v.Rainfall <= 100
	}},
	{"apple", 0.7, func(v FeatureVector) bool {
		return v.Temperature >= 15 && v.Temperature <= 25 && v.Humidity >= 60 && v.Humidity <= 70 &&
			v.PH >= 6.0 && v.PH <= 7.0 && v.Rainfall >= 100 && v.Rainfall <= 125
	}},
}

// defaultRanking is returned when no predicate matches. Returning three
// named crops instead of an empty list is intentional: the engine always
// answers, even when it is only guessing.
var defaultRanking = []ScoredCrop{
	{Crop: "rice", Confidence: 0.5},
	{Crop: "maize", Confidence: 0.4},
	{Crop: "wheat", Confidence: 0.3},
}

// RuleEngine is the deterministic threshold matcher. It is self-contained
// and needs no trained artifact, which makes it the fallback when the
// classifier is unavailable.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine { return &RuleEngine{} }

func (e *RuleEngine) Name() string { return "rules" }

// Score returns the qualifying crops sorted by their fixed confidence
// constants, or the default triple when nothing qualifies. Never errors.
func (e *RuleEngine) Score(v FeatureVector) ([]ScoredCrop, error) {
	var ranked []ScoredCrop
	for _, r := range ruleTable {
		if r.Qualifies(v) {
			ranked = append(ranked, ScoredCrop{Crop: r.Crop, Confidence: r.Confidence})
		}
	}

	if len(ranked) == 0 {
		out := make([]ScoredCrop, len(defaultRanking))
		copy(out, defaultRanking)
		return out, nil
	}

	// Stable sort keeps table order for equal constants.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Confidence > ranked[b].Confidence
	})
	return ranked, nil
}
