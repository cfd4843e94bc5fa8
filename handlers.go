package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ══════════════════════════════════════════════
//  HTTP HANDLERS
// ══════════════════════════════════════════════

// App bundles the process-wide, read-only components handlers share.
// Built once in main; no ambient globals, no post-init mutation.
type App struct {
	log        *zap.SugaredLogger
	store      *KnowledgeStore
	classifier *Classifier
	resolver   *Resolver
	chat       *ChatService
	responder  *Responder
}

// ── POST /recommend ─────────────────────────

func (a *App) handleRecommend(c *gin.Context) {
	var raw RecommendRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	rec, err := a.resolver.Recommend(raw)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
			return
		}
		a.log.Errorf("recommend failed unexpectedly: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Success:            true,
		Input:              rec.Input,
		RecommendedCrop:    rec.Primary.Crop,
		TopRecommendations: rec.Top,
		CropDetails:        rec.Profile,
		Formatted:          rec.Summary,
		ModelUsed:          rec.ModelUsed,
	})
}

// ── POST /chat ──────────────────────────────

func (a *App) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message field"})
		return
	}

	reply := a.chat.Respond(c.Request.Context(), req.Message, req.History)

	c.JSON(http.StatusOK, ChatResponse{
		Success:     true,
		UserMessage: req.Message,
		BotResponse: reply,
		Timestamp:   time.Now().UTC(),
	})
}

// ── GET /crops ──────────────────────────────

func (a *App) handleCrops(c *gin.Context) {
	crops := a.store.ListCrops()
	c.JSON(http.StatusOK, CropsResponse{
		Success:    true,
		Crops:      crops,
		Categories: a.store.Categories(),
		TotalCrops: len(crops),
	})
}

// ── GET /crop/:name ─────────────────────────

func (a *App) handleCrop(c *gin.Context) {
	name := c.Param("name")

	profile, ok := a.store.Lookup(name)
	if !ok {
		nf := &NotFoundError{Crop: name}
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"crop_name":    profile.ID,
		"crop_details": profile,
	})
}

// ── GET /guidance/:name/:section ────────────

// Serves one guidance section of a crop profile. Unknown crops 404 like
// /crop/:name; unknown sections are a caller error and 400 with the
// supported list.
func (a *App) handleGuidance(c *gin.Context) {
	name := c.Param("name")
	section := strings.ToLower(c.Param("section"))

	profile, ok := a.store.Lookup(name)
	if !ok {
		nf := &NotFoundError{Crop: name}
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
		return
	}

	if _, ok := profile.Guidance[section]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Guidance type %q not supported. Use: %s",
				section, strings.Join(guidanceSections(), ", ")),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"crop_name":     profile.ID,
		"guidance_type": section,
		"guidance":      a.chat.respondCrop(profile.ID, section),
	})
}

// ── GET /advice/:topic ──────────────────────

// Never 404s: unknown topics degrade to the generic clarifying prompt.
func (a *App) handleAdvice(c *gin.Context) {
	topic := c.Param("topic")

	if entry, ok := a.store.Advice(topic); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "topic": topic, "advice": entry})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "topic": topic, "advice": clarifyingPrompt})
}

// ── GET /health ─────────────────────────────

func (a *App) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Success:             true,
		Status:              "healthy",
		ClassifierLoaded:    a.classifier.Ready(),
		KnowledgeSource:     a.store.Source(),
		KnownCrops:          len(a.store.ListCrops()),
		ResponderConfigured: a.responder.Configured(),
	})
}

// registerRoutes wires the HTTP surface onto a gin engine.
func (a *App) registerRoutes(r *gin.Engine) {
	r.POST("/recommend", a.handleRecommend)
	r.POST("/chat", a.handleChat)
	r.GET("/crops", a.handleCrops)
	r.GET("/crop/:name", a.handleCrop)
	r.GET("/guidance/:name/:section", a.handleGuidance)
	r.GET("/advice/:topic", a.handleAdvice)
	r.GET("/health", a.handleHealth)
}
