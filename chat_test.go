package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChatService(t *testing.T, responder *Responder) *ChatService {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := NewKnowledgeStore(log, "", "missing.json")
	classifier := NewClassifier(log, "no-model.json", "no-labels.json")
	resolver := NewResolver(log, classifier, NewRuleEngine(), store)
	if responder == nil {
		responder = NewResponder(log, &Config{LLMBaseURL: "http://127.0.0.1:0", LLMTimeout: time.Second})
	}
	return NewChatService(log, resolver, store, responder)
}

func TestChatNumericRecommendation(t *testing.T) {
	s := newTestChatService(t, nil)

	reply := s.Respond(context.Background(), "recommend 90 42 43 20.88 82 6.5 202.94", nil)

	assert.Contains(t, reply, "Recommended Crop: Rice")
	assert.Contains(t, reply, "Confidence: 90.0%")
}

func TestChatNumericOutOfRangeAnsweredConversationally(t *testing.T) {
	s := newTestChatService(t, nil)

	reply := s.Respond(context.Background(), "recommend 90 42 43 20.88 82 15 202.94", nil)

	assert.Contains(t, reply, "ph")
	assert.NotContains(t, reply, "Recommended Crop")
}

func TestChatTopicAdvice(t *testing.T) {
	s := newTestChatService(t, nil)

	reply := s.Respond(context.Background(), "what about pest control", nil)

	assert.Contains(t, reply, "Pest Management")
	assert.Contains(t, reply, "- ")
}

func TestChatCropGuidance(t *testing.T) {
	s := newTestChatService(t, nil)

	reply := s.Respond(context.Background(), "tell me about maize", nil)

	assert.Contains(t, reply, "Maize")
	assert.Contains(t, reply, "Optimal temperature: 21-27°C")
	assert.Contains(t, reply, "Pest control")
}

func TestChatCropGuidanceSingleSection(t *testing.T) {
	s := newTestChatService(t, nil)

	reply := s.respondCrop("rice", "water")

	assert.Contains(t, reply, "**Rice – water**")
	assert.Contains(t, reply, "Maintain 2-5 cm water depth")
	assert.NotContains(t, reply, "Land preparation")

	assert.Equal(t, clarifyingPrompt, s.respondCrop("rice", "astrology"))
}

func TestChatGenericFallsBackToApology(t *testing.T) {
	// Unconfigured responder: the generic path degrades to canned text
	// but still answers.
	s := newTestChatService(t, nil)

	reply := s.Respond(context.Background(), "hello, who are you?", nil)

	assert.Equal(t, apologyText, reply)
}

func TestChatGenericUsesResponder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello, farmer!"}}]}`))
	}))
	defer srv.Close()

	log := zap.NewNop().Sugar()
	responder := NewResponder(log, &Config{
		LLMBaseURL: srv.URL,
		LLMModel:   "test-model",
		LLMAPIKey:  "test-key",
		LLMTimeout: 5 * time.Second,
	})
	s := newTestChatService(t, responder)

	reply := s.Respond(context.Background(), "hello, who are you?", nil)
	assert.Equal(t, "Hello, farmer!", reply)
}

func TestChatResponderFailureSubstitutesApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	log := zap.NewNop().Sugar()
	responder := NewResponder(log, &Config{
		LLMBaseURL: srv.URL,
		LLMModel:   "test-model",
		LLMAPIKey:  "test-key",
		LLMTimeout: 5 * time.Second,
	})
	s := newTestChatService(t, responder)

	reply := s.Respond(context.Background(), "hello, who are you?", nil)
	assert.Equal(t, apologyText, reply)
}

func TestResponderForwardsHistory(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	log := zap.NewNop().Sugar()
	responder := NewResponder(log, &Config{
		LLMBaseURL: srv.URL, LLMModel: "m", LLMAPIKey: "k", LLMTimeout: 5 * time.Second,
	})

	history := []ChatTurn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	_, err := responder.Reply(context.Background(), "follow-up", history)
	require.NoError(t, err)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "earlier question", got.Messages[1].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "follow-up", got.Messages[3].Content)
}

func TestResponderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	log := zap.NewNop().Sugar()
	responder := NewResponder(log, &Config{
		LLMBaseURL: srv.URL, LLMModel: "m", LLMAPIKey: "k", LLMTimeout: 50 * time.Millisecond,
	})

	_, err := responder.Reply(context.Background(), "slow?", nil)
	require.Error(t, err)
	var ese *ExternalServiceError
	assert.ErrorAs(t, err, &ese)
}
