package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// Chat dispatch
// ──────────────────────────────────────────────

// clarifyingPrompt answers topic requests the advice table cannot serve.
const clarifyingPrompt = "I can help with pest management, fertilizers, irrigation, crop diseases, " +
	"sustainable practices, and harvesting. What specific topic would you like to know about?"

// apologyText replaces any failed generative call. The chat endpoint
// still reports success on this path.
const apologyText = "I apologize, but I'm having trouble connecting to my AI service. However, I can " +
	"still help you with crop recommendations and agricultural advice using my built-in knowledge. " +
	"Try asking about a specific crop or topic, or send seven values (N, P, K, temperature, humidity, " +
	"pH, rainfall) for a recommendation."

// guidanceOrder fixes the rendering order of a profile's guidance bundle.
var guidanceOrder = []struct{ Key, Label string }{
	{"land_preparation", "Land preparation"},
	{"planting", "Planting"},
	{"water", "Water management"},
	{"nutrients", "Nutrient management"},
	{"weeds", "Weed control"},
	{"disease_prevention", "Disease prevention"},
	{"pest_control", "Pest control"},
	{"harvesting", "Harvesting"},
}

// guidanceSections lists the section keys in rendering order.
func guidanceSections() []string {
	keys := make([]string, len(guidanceOrder))
	for i, g := range guidanceOrder {
		keys[i] = g.Key
	}
	return keys
}

// ChatService turns a classified intent into a text answer. Every path
// produces an answer; deterministic handlers cover three intents and the
// external responder covers the rest, degrading to the apology text.
type ChatService struct {
	resolver  *Resolver
	store     *KnowledgeStore
	responder *Responder
	log       *zap.SugaredLogger
}

func NewChatService(log *zap.SugaredLogger, resolver *Resolver, store *KnowledgeStore, responder *Responder) *ChatService {
	return &ChatService{resolver: resolver, store: store, responder: responder, log: log}
}

// Respond answers one free-text message. History is forwarded to the
// generative responder only; the deterministic rules never read it.
func (s *ChatService) Respond(ctx context.Context, message string, history []ChatTurn) string {
	intent := classifyIntent(message, s.store.ListCrops())

	switch intent.Kind {
	case IntentNumericRecommendation:
		return s.respondRecommendation(intent.Features)
	case IntentTopicAdvice:
		return s.respondTopic(intent.Topic)
	case IntentCropGuidance:
		// Chat always serves the full bundle; the guidance endpoint
		// asks for a single section.
		return s.respondCrop(intent.Crop, "")
	default:
		reply, err := s.responder.Reply(ctx, message, history)
		if err != nil {
			s.log.Warnf("⚠ Generative responder failed: %v – substituting canned reply", err)
			return apologyText
		}
		return reply
	}
}

func (s *ChatService) respondRecommendation(v FeatureVector) string {
	rec, err := s.resolver.Recommend(v.asMap())
	if err != nil {
		// Chat-extracted values can be out of range; answer
		// conversationally instead of failing the request.
		if ve, ok := err.(*ValidationError); ok {
			return fmt.Sprintf("I couldn't run that recommendation: the value for %s %s. "+
				"Please check the number and try again.", ve.Field, ve.Reason)
		}
		return apologyText
	}
	return rec.Summary
}

func (s *ChatService) respondTopic(topic string) string {
	entry, ok := s.store.Advice(topic)
	if !ok {
		return clarifyingPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", entry.Title)
	for _, line := range entry.Advice {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func (s *ChatService) respondCrop(crop, section string) string {
	profile, ok := s.store.Lookup(crop)
	if !ok {
		return clarifyingPrompt
	}

	if section != "" {
		if text, ok := profile.Guidance[section]; ok {
			return fmt.Sprintf("**%s – %s**: %s", profile.Name, section, text)
		}
		return clarifyingPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n%s\n", profile.Name, profile.Category, profile.Description)

	if rng, ok := profile.Ranges["temperature"]; ok {
		fmt.Fprintf(&b, "\nOptimal temperature: %g-%g°C", rng[0], rng[1])
	}
	if rng, ok := profile.Ranges["humidity"]; ok {
		fmt.Fprintf(&b, ", humidity: %g-%g%%", rng[0], rng[1])
	}
	if rng, ok := profile.Ranges["ph"]; ok {
		fmt.Fprintf(&b, ", pH: %g-%g", rng[0], rng[1])
	}
	if rng, ok := profile.Ranges["rainfall"]; ok {
		fmt.Fprintf(&b, ", rainfall: %g-%gmm", rng[0], rng[1])
	}
	b.WriteString("\n")

	for _, g := range guidanceOrder {
		if text, ok := profile.Guidance[g.Key]; ok {
			fmt.Fprintf(&b, "\n**%s**: %s", g.Label, text)
		}
	}
	return b.String()
}
