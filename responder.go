package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// External generative responder
// ──────────────────────────────────────────────

// systemPrompt is the fixed instruction sent with every generative call.
const systemPrompt = `You are an expert agricultural advisor and crop recommendation specialist. ` +
	`Provide accurate crop recommendations, practical farming advice, and guidance on pest management, ` +
	`fertilizers, irrigation and sustainable practices. Be conversational but professional, explain the ` +
	`reasoning behind your suggestions, and ask clarifying questions when needed.`

// Responder speaks the OpenAI-compatible chat-completions API. It is the
// only blocking boundary call in the service: one attempt, explicit
// timeout, no retries. Callers absorb every failure into canned text.
type Responder struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewResponder(log *zap.SugaredLogger, cfg *Config) *Responder {
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Responder{
		baseURL:    strings.TrimRight(cfg.LLMBaseURL, "/"),
		model:      cfg.LLMModel,
		apiKey:     cfg.LLMAPIKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Configured reports whether a credential is present, for /health.
func (r *Responder) Configured() bool { return r.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Reply sends the fixed system prompt, any prior turns and the current
// message, and returns the single text answer. All failure modes come
// back as *ExternalServiceError.
func (r *Responder) Reply(ctx context.Context, message string, history []ChatTurn) (string, error) {
	if r.apiKey == "" {
		return "", &ExternalServiceError{Err: fmt.Errorf("no API key configured")}
	}

	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		role := turn.Role
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	body, err := json.Marshal(completionRequest{
		Model:       r.model,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", &ExternalServiceError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := r.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ExternalServiceError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", &ExternalServiceError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.log.Warnf("⚠ Generative API returned %d: %s", resp.StatusCode, string(raw))
		return "", &ExternalServiceError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ExternalServiceError{Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &ExternalServiceError{Err: fmt.Errorf("empty completion")}
	}

	return parsed.Choices[0].Message.Content, nil
}
