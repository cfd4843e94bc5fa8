package main

import (
	"math"
	"strconv"
	"strings"
)

// ──────────────────────────────────────────────
// Intent routing
// ──────────────────────────────────────────────

// recommendKeywords triggers the numeric-recommendation rule.
var recommendKeywords = []string{"recommend", "suggest", "predict", "best crop"}

// topicKeywords maps message keywords to advice topics. Evaluated in
// order; the first hit wins.
var topicKeywords = []struct {
	Topic    string
	Keywords []string
}{
	{"pest", []string{"pest"}},
	{"fertilizer", []string{"fertilizer", "nutrient"}},
	{"irrigation", []string{"irrigation", "water"}},
	{"disease", []string{"disease"}},
	{"sustainable", []string{"sustainable", "organic"}},
	{"harvest", []string{"harvest"}},
}

// classifyIntent classifies one message with an ordered decision list:
// numeric recommendation, then topic advice, then crop guidance, then
// generic. Pure function, no failure mode — anything unmatched is
// Generic. Matching is case-insensitive substring search; this is a
// keyword heuristic, not NLP, and it is knowingly ambiguous ("water"
// matches inside "watermelon").
func classifyIntent(message string, knownCrops []string) Intent {
	lower := strings.ToLower(message)

	// Rule 1: recommendation keyword plus at least 7 numeric tokens.
	if containsAny(lower, recommendKeywords) {
		if nums, ok := extractNumbers(message, 7); ok {
			return Intent{
				Kind: IntentNumericRecommendation,
				Features: FeatureVector{
					N:           nums[0],
					P:           nums[1],
					K:           nums[2],
					Temperature: nums[3],
					Humidity:    nums[4],
					PH:          nums[5],
					Rainfall:    nums[6],
				},
				Raw: message,
			}
		}
		// Keyword without enough numbers falls through.
	}

	// Rule 2: advice topic keywords.
	for _, t := range topicKeywords {
		if containsAny(lower, t.Keywords) {
			return Intent{Kind: IntentTopicAdvice, Topic: t.Topic, Raw: message}
		}
	}

	// Rule 3: known crop mention.
	for _, crop := range knownCrops {
		if strings.Contains(lower, crop) {
			return Intent{Kind: IntentCropGuidance, Crop: crop, Raw: message}
		}
	}

	return Intent{Kind: IntentGeneric, Raw: message}
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// extractNumbers collects whitespace-separated tokens that parse as
// finite non-negative reals, left to right, and reports whether at
// least n were found. Only the first n are returned. ParseFloat also
// accepts "nan" and "inf"; those tokens are skipped, since NaN
// compares false against everything and neither belongs in a feature
// vector.
func extractNumbers(message string, n int) ([]float64, bool) {
	var nums []float64
	for _, tok := range strings.Fields(message) {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		nums = append(nums, f)
		if len(nums) == n {
			return nums, true
		}
	}
	return nums, false
}
