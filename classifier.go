package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// Classifier scoring engine
// ──────────────────────────────────────────────

// ScoringEngine ranks the known crops for a range-valid feature vector.
type ScoringEngine interface {
	Score(v FeatureVector) ([]ScoredCrop, error)
	Name() string
}

// modelArtifact is the trained Gaussian naive-Bayes parameter table
// exported by the offline training pipeline: one prior and seven
// mean/variance pairs per class, in label-encoder index order.
type modelArtifact struct {
	Version   string      `json:"version"`
	Classes   []string    `json:"classes"`
	Priors    []float64   `json:"priors"`
	Means     [][]float64 `json:"means"`
	Variances [][]float64 `json:"variances"`
}

// Classifier wraps the pretrained probabilistic model. When the artifact
// failed to load the engine stays constructed but not ready, and Score
// reports ErrModelUnavailable so the resolver can fall back.
type Classifier struct {
	model  *modelArtifact
	labels []string
}

// NewClassifier loads the model artifact and the label-encoding table.
// Absence or corruption of either is recoverable: the returned engine is
// simply not ready. Startup never fails on a missing model.
func NewClassifier(log *zap.SugaredLogger, modelPath, labelsPath string) *Classifier {
	c := &Classifier{}

	model, err := loadModelArtifact(modelPath)
	if err != nil {
		log.Warnf("⚠ Classifier model unavailable: %v – rule engine will answer recommendations", err)
		return c
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		log.Warnf("⚠ Label table unavailable: %v – rule engine will answer recommendations", err)
		return c
	}

	if len(labels) != len(model.Classes) {
		log.Warnf("⚠ Label table has %d entries but model has %d classes – treating model as corrupt", len(labels), len(model.Classes))
		return c
	}
	for i, class := range model.Classes {
		if labels[i] != class {
			log.Warnf("⚠ Label %d mismatch (%q vs %q) – treating model as corrupt", i, labels[i], class)
			return c
		}
	}

	c.model = model
	c.labels = labels
	log.Infof("Classifier model %s loaded (%d crops)", model.Version, len(labels))
	return c
}

func loadModelArtifact(path string) (*modelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m modelArtifact
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	n := len(m.Classes)
	if n == 0 {
		return nil, fmt.Errorf("model has no classes")
	}
	if len(m.Priors) != n || len(m.Means) != n || len(m.Variances) != n {
		return nil, fmt.Errorf("model parameter tables disagree on class count")
	}
	for i := 0; i < n; i++ {
		if p := m.Priors[i]; p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("class %q has a non-positive or non-finite prior", m.Classes[i])
		}
		if len(m.Means[i]) != 7 || len(m.Variances[i]) != 7 {
			return nil, fmt.Errorf("class %q does not have 7 feature parameters", m.Classes[i])
		}
		for _, v := range m.Variances[i] {
			if v <= 0 {
				return nil, fmt.Errorf("class %q has a non-positive variance", m.Classes[i])
			}
		}
	}
	return &m, nil
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("label table is empty")
	}
	return labels, nil
}

// Ready reports whether the trained artifact is loaded, for /health.
func (c *Classifier) Ready() bool { return c.model != nil }

func (c *Classifier) Name() string { return "classifier" }

// Score computes the full posterior distribution over the label set and
// returns it sorted by descending probability. Ties break on label
// index, matching the training artifact's encoder ordering.
func (c *Classifier) Score(v FeatureVector) ([]ScoredCrop, error) {
	if c.model == nil {
		return nil, ErrModelUnavailable
	}

	x := [7]float64{v.N, v.P, v.K, v.Temperature, v.Humidity, v.PH, v.Rainfall}
	n := len(c.model.Classes)

	// Log joint likelihoods, then normalize with log-sum-exp so the
	// probabilities form a true distribution.
	logp := make([]float64, n)
	for i := 0; i < n; i++ {
		lp := math.Log(c.model.Priors[i])
		for f := 0; f < 7; f++ {
			mu := c.model.Means[i][f]
			sigma2 := c.model.Variances[i][f]
			diff := x[f] - mu
			lp += -0.5*math.Log(2*math.Pi*sigma2) - diff*diff/(2*sigma2)
		}
		logp[i] = lp
	}

	maxLog := logp[0]
	for _, lp := range logp[1:] {
		if lp > maxLog {
			maxLog = lp
		}
	}
	var sum float64
	for i := range logp {
		sum += math.Exp(logp[i] - maxLog)
	}
	logZ := maxLog + math.Log(sum)

	ranked := make([]ScoredCrop, n)
	for i := 0; i < n; i++ {
		ranked[i] = ScoredCrop{Crop: c.labels[i], Confidence: math.Exp(logp[i] - logZ)}
	}

	// Stable sort over label-index order: equal confidences keep the
	// encoder ordering.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Confidence > ranked[b].Confidence
	})

	return ranked, nil
}
