package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// main – bootstrap engines + router
// ──────────────────────────────────────────────

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	app := buildApp(sugar, cfg)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	app.registerRoutes(r)

	sugar.Infof("🚀 Crop Advisor API listening on 0.0.0.0:%s", cfg.Port)
	if err := r.Run("0.0.0.0:" + cfg.Port); err != nil {
		sugar.Fatalf("server failed: %v", err)
	}
}

// buildApp constructs every process-wide component in dependency order.
// Missing collaborators (model artifact, DB, LLM credential) degrade to
// fallbacks here; nothing short of a broken config aborts startup.
func buildApp(sugar *zap.SugaredLogger, cfg *Config) *App {
	store := NewKnowledgeStore(sugar, cfg.DatabaseURL, cfg.KnowledgePath)
	classifier := NewClassifier(sugar, cfg.ModelPath, cfg.LabelsPath)
	rules := NewRuleEngine()
	resolver := NewResolver(sugar, classifier, rules, store)
	responder := NewResponder(sugar, cfg)
	chat := NewChatService(sugar, resolver, store, responder)

	return &App{
		log:        sugar,
		store:      store,
		classifier: classifier,
		resolver:   resolver,
		chat:       chat,
		responder:  responder,
	}
}
