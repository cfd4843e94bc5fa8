package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// Recommendation resolver
// ──────────────────────────────────────────────

// Resolver orchestrates validation, engine selection and knowledge
// enrichment into one Recommendation. Which engine answered is invisible
// in the response shape; only the model_used field records it.
type Resolver struct {
	classifier ScoringEngine
	rules      ScoringEngine
	store      *KnowledgeStore
	log        *zap.SugaredLogger
}

func NewResolver(log *zap.SugaredLogger, classifier ScoringEngine, rules ScoringEngine, store *KnowledgeStore) *Resolver {
	return &Resolver{classifier: classifier, rules: rules, store: store, log: log}
}

// Recommend validates raw input and produces the unified recommendation.
// The only error it ever returns is a *ValidationError; an unavailable
// classifier is recovered transparently via the rule engine.
func (r *Resolver) Recommend(raw map[string]any) (*Recommendation, error) {
	v, err := validateFeatures(raw)
	if err != nil {
		return nil, err
	}

	engine := r.classifier
	ranked, err := engine.Score(v)
	if err != nil {
		// Single recovery path: the rule engine needs no artifact and
		// never errors.
		engine = r.rules
		ranked, _ = engine.Score(v)
	}

	// Top-3 is a slice of the ranking, never a re-sort.
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	primary := top[0]
	profile, ok := r.store.Lookup(primary.Crop)
	if !ok {
		r.log.Warnf("⚠ No knowledge profile for %q – recommendation degrades to ranking only", primary.Crop)
		profile = nil
	}

	return &Recommendation{
		Input:     v,
		Primary:   primary,
		Top:       top,
		Profile:   profile,
		Summary:   formatRecommendation(v, top, profile),
		ModelUsed: engine.Name(),
	}, nil
}

// formatRecommendation composes the human-readable summary. The optimal
// conditions section is interpolated from the profile's stat ranges and
// omitted entirely when the primary crop has no profile.
func formatRecommendation(v FeatureVector, top []ScoredCrop, profile *CropProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on your soil and climate conditions:\n")
	fmt.Fprintf(&b, "- Nitrogen (N): %g\n", v.N)
	fmt.Fprintf(&b, "- Phosphorus (P): %g\n", v.P)
	fmt.Fprintf(&b, "- Potassium (K): %g\n", v.K)
	fmt.Fprintf(&b, "- Temperature: %g°C\n", v.Temperature)
	fmt.Fprintf(&b, "- Humidity: %g%%\n", v.Humidity)
	fmt.Fprintf(&b, "- pH: %g\n", v.PH)
	fmt.Fprintf(&b, "- Rainfall: %gmm\n\n", v.Rainfall)

	fmt.Fprintf(&b, "**Recommended Crop: %s**\n\n", titleCase(top[0].Crop))
	fmt.Fprintf(&b, "**Top %d Recommendations:**\n", len(top))
	for i, sc := range top {
		fmt.Fprintf(&b, "%d. %s (Confidence: %.1f%%)\n", i+1, titleCase(sc.Crop), sc.Confidence*100)
	}

	if profile != nil {
		fmt.Fprintf(&b, "\n**Optimal conditions for %s:**\n", titleCase(profile.ID))
		fmt.Fprintf(&b, "- Average N requirement: %.1f\n", profile.Averages.N)
		fmt.Fprintf(&b, "- Average P requirement: %.1f\n", profile.Averages.P)
		fmt.Fprintf(&b, "- Average K requirement: %.1f\n", profile.Averages.K)
		if rng, ok := profile.Ranges["temperature"]; ok {
			fmt.Fprintf(&b, "- Temperature range: %.1f-%.1f°C\n", rng[0], rng[1])
		}
		if rng, ok := profile.Ranges["humidity"]; ok {
			fmt.Fprintf(&b, "- Humidity range: %.1f-%.1f%%\n", rng[0], rng[1])
		}
		if rng, ok := profile.Ranges["ph"]; ok {
			fmt.Fprintf(&b, "- pH range: %.1f-%.1f\n", rng[0], rng[1])
		}
		if rng, ok := profile.Ranges["rainfall"]; ok {
			fmt.Fprintf(&b, "- Rainfall range: %.1f-%.1fmm\n", rng[0], rng[1])
		}
	}

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
