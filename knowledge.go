package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// Crop knowledge store
// ──────────────────────────────────────────────

// KnowledgeStore is the read-only crop reference table: per-crop
// statistics and guidance plus the topic advice entries. It is built once
// at startup and never mutated afterwards, so handlers share it freely.
type KnowledgeStore struct {
	profiles map[string]*CropProfile
	order    []string
	advice   map[string]*AdviceEntry
	source   string
}

// cropRecord is the on-disk/in-DB schema for one crop. Records are
// ordered in the artifact; that order is the canonical crop listing.
type cropRecord struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Averages    map[string]float64    `json:"averages"`
	Ranges      map[string][2]float64 `json:"ranges"`
	Guidance    map[string]string     `json:"guidance"`
}

// knowledgeArtifact is the top-level schema of the knowledge JSON file.
type knowledgeArtifact struct {
	Crops  []cropRecord            `json:"crops"`
	Advice map[string]*AdviceEntry `json:"advice"`
}

// NewKnowledgeStore builds the store from the best available source:
// Postgres when databaseURL is set, else the JSON artifact at path, else
// the embedded default dataset. Source failures degrade, never abort.
func NewKnowledgeStore(log *zap.SugaredLogger, databaseURL, path string) *KnowledgeStore {
	if databaseURL != "" {
		if ks, err := loadKnowledgeFromDB(log, databaseURL); err == nil {
			log.Infof("Knowledge store loaded from PostgreSQL (%d crops)", len(ks.order))
			return ks
		} else {
			log.Warnf("⚠ DB knowledge load failed: %v – falling back to file", err)
		}
	}

	if data, err := os.ReadFile(path); err == nil {
		if ks, err := parseKnowledge(log, data, "file"); err == nil {
			log.Infof("Knowledge store loaded from %s (%d crops)", path, len(ks.order))
			return ks
		} else {
			log.Warnf("⚠ Knowledge file %s unusable: %v – using built-in data", path, err)
		}
	} else {
		log.Warnf("⚠ Knowledge file %s not readable: %v – using built-in data", path, err)
	}

	ks, _ := parseKnowledge(log, defaultKnowledgeJSON, "builtin")
	return ks
}

func loadKnowledgeFromDB(log *zap.SugaredLogger, databaseURL string) (*KnowledgeStore, error) {
	conn, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var rows []struct {
		ID  string `db:"id"`
		Doc []byte `db:"doc"`
	}
	err = conn.Select(&rows, "SELECT id, doc FROM crop_profiles ORDER BY position, id")
	if err != nil {
		return nil, err
	}

	art := knowledgeArtifact{}
	for _, r := range rows {
		var rec cropRecord
		if err := json.Unmarshal(r.Doc, &rec); err != nil {
			log.Warnf("⚠ Skipping crop %q: malformed document: %v", r.ID, err)
			continue
		}
		if rec.ID == "" {
			rec.ID = r.ID
		}
		art.Crops = append(art.Crops, rec)
	}

	var adviceRows []struct {
		Topic string `db:"topic"`
		Doc   []byte `db:"doc"`
	}
	if err := conn.Select(&adviceRows, "SELECT topic, doc FROM advice_topics"); err == nil {
		art.Advice = make(map[string]*AdviceEntry, len(adviceRows))
		for _, r := range adviceRows {
			var e AdviceEntry
			if err := json.Unmarshal(r.Doc, &e); err != nil {
				log.Warnf("⚠ Skipping advice topic %q: %v", r.Topic, err)
				continue
			}
			art.Advice[r.Topic] = &e
		}
	}

	return buildStore(log, art, "postgres"), nil
}

// parseKnowledge decodes an artifact and validates it record by record.
func parseKnowledge(log *zap.SugaredLogger, data []byte, source string) (*KnowledgeStore, error) {
	var art knowledgeArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, err
	}
	return buildStore(log, art, source), nil
}

// buildStore validates crops one at a time: a malformed record is
// skipped with a warning so one bad entry never sinks the rest.
func buildStore(log *zap.SugaredLogger, art knowledgeArtifact, source string) *KnowledgeStore {
	ks := &KnowledgeStore{
		profiles: make(map[string]*CropProfile, len(art.Crops)),
		advice:   make(map[string]*AdviceEntry, len(art.Advice)),
		source:   source,
	}

	for _, rec := range art.Crops {
		p, err := rec.toProfile()
		if err != nil {
			log.Warnf("⚠ Skipping crop record %q: %v", rec.ID, err)
			continue
		}
		if _, dup := ks.profiles[p.ID]; dup {
			log.Warnf("⚠ Skipping duplicate crop record %q", p.ID)
			continue
		}
		ks.profiles[p.ID] = p
		ks.order = append(ks.order, p.ID)
	}

	for topic, entry := range art.Advice {
		if entry == nil || entry.Title == "" || len(entry.Advice) == 0 {
			log.Warnf("⚠ Skipping empty advice topic %q", topic)
			continue
		}
		ks.advice[strings.ToLower(topic)] = entry
	}

	return ks
}

func (r cropRecord) toProfile() (*CropProfile, error) {
	id := strings.ToLower(strings.TrimSpace(r.ID))
	if id == "" {
		return nil, fmt.Errorf("missing id")
	}
	if r.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if r.Category == "" {
		return nil, fmt.Errorf("missing category")
	}
	for _, field := range []string{"temperature", "humidity", "ph", "rainfall"} {
		rng, ok := r.Ranges[field]
		if !ok {
			return nil, fmt.Errorf("missing ranges.%s", field)
		}
		if rng[0] > rng[1] {
			return nil, fmt.Errorf("inverted ranges.%s", field)
		}
	}

	return &CropProfile{
		ID:          id,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Averages: FeatureVector{
			N:           r.Averages["N"],
			P:           r.Averages["P"],
			K:           r.Averages["K"],
			Temperature: r.Averages["temperature"],
			Humidity:    r.Averages["humidity"],
			PH:          r.Averages["ph"],
			Rainfall:    r.Averages["rainfall"],
		},
		Ranges:   r.Ranges,
		Guidance: r.Guidance,
	}, nil
}

// ---------- Read operations ----------

// Lookup returns the profile for a crop id, case-insensitively.
// A miss is an empty result, never an error.
func (ks *KnowledgeStore) Lookup(cropID string) (*CropProfile, bool) {
	p, ok := ks.profiles[strings.ToLower(cropID)]
	return p, ok
}

// ListCrops returns the crop identifiers in artifact order.
func (ks *KnowledgeStore) ListCrops() []string {
	out := make([]string, len(ks.order))
	copy(out, ks.order)
	return out
}

// Categories groups the known crop ids by their category tag,
// preserving artifact order within each group.
func (ks *KnowledgeStore) Categories() map[string][]string {
	out := make(map[string][]string)
	for _, id := range ks.order {
		p := ks.profiles[id]
		out[p.Category] = append(out[p.Category], id)
	}
	return out
}

// Advice returns the advice entry for a topic key, if present.
func (ks *KnowledgeStore) Advice(topic string) (*AdviceEntry, bool) {
	e, ok := ks.advice[strings.ToLower(topic)]
	return e, ok
}

// Source reports where the store's data came from, for /health.
func (ks *KnowledgeStore) Source() string { return ks.source }
