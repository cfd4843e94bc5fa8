package main

import (
	"time"
)

// ---------- Domain Models ----------

// FeatureVector holds the seven validated soil/climate measurements.
// Values are always range-checked before construction; engines may
// assume every field is inside its declared domain.
type FeatureVector struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// ScoredCrop pairs a crop identifier with an engine confidence in [0,1].
type ScoredCrop struct {
	Crop       string  `json:"crop"`
	Confidence float64 `json:"confidence"`
}

// CropProfile is the knowledge-store record for one crop: per-feature
// statistics from the training data plus the agronomic guidance bundle.
// Profiles are immutable once loaded.
type CropProfile struct {
	ID          string                `json:"id" db:"id"`
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Averages    FeatureVector         `json:"averages"`
	Ranges      map[string][2]float64 `json:"ranges"`
	Guidance    map[string]string     `json:"guidance"`
}

// AdviceEntry is one topic of the agronomic advice table.
type AdviceEntry struct {
	Title  string   `json:"title"`
	Advice []string `json:"advice"`
}

// Recommendation is the resolver's unified answer, identical in shape
// regardless of which scoring engine produced the ranking.
type Recommendation struct {
	Input     FeatureVector `json:"input_conditions"`
	Primary   ScoredCrop    `json:"primary"`
	Top       []ScoredCrop  `json:"top_recommendations"`
	Profile   *CropProfile  `json:"crop_details,omitempty"`
	Summary   string        `json:"formatted_recommendation"`
	ModelUsed string        `json:"model_used"`
}

// ---------- Chat Intents ----------

// IntentKind tags the classified purpose of a chat message.
type IntentKind int

const (
	IntentGeneric IntentKind = iota
	IntentNumericRecommendation
	IntentTopicAdvice
	IntentCropGuidance
)

// Intent is the router's classification of a single message. Exactly the
// fields matching Kind are populated; Raw always carries the original text.
type Intent struct {
	Kind     IntentKind
	Features FeatureVector // numeric recommendation request
	Topic    string        // topic advice request
	Crop     string        // crop guidance request
	Raw      string
}

// ChatTurn is one prior exchange forwarded to the generative responder.
// The deterministic routing rules never look at history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ---------- API Request/Response Models ----------

// RecommendRequest is the POST /recommend body. Fields arrive as raw JSON
// values so the validator can report missing vs non-numeric precisely.
type RecommendRequest map[string]any

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"conversation_history,omitempty"`
}

// ChatResponse is the POST /chat payload. The chat path always reports
// success; degraded answers are still answers.
type ChatResponse struct {
	Success     bool      `json:"success"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// RecommendResponse is the POST /recommend payload.
type RecommendResponse struct {
	Success            bool          `json:"success"`
	Input              FeatureVector `json:"input_conditions"`
	RecommendedCrop    string        `json:"recommended_crop"`
	TopRecommendations []ScoredCrop  `json:"top_recommendations"`
	CropDetails        *CropProfile  `json:"crop_details,omitempty"`
	Formatted          string        `json:"formatted_recommendation"`
	ModelUsed          string        `json:"model_used"`
}

// CropsResponse is the GET /crops payload.
type CropsResponse struct {
	Success    bool                `json:"success"`
	Crops      []string            `json:"crops"`
	Categories map[string][]string `json:"categories"`
	TotalCrops int                 `json:"total_crops"`
}

// HealthResponse is the GET /health payload with engine readiness flags.
type HealthResponse struct {
	Success             bool   `json:"success"`
	Status              string `json:"status"`
	ClassifierLoaded    bool   `json:"classifier_loaded"`
	KnowledgeSource     string `json:"knowledge_source"`
	KnownCrops          int    `json:"known_crops"`
	ResponderConfigured bool   `json:"responder_configured"`
}
