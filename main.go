package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulsedeck/backend/ai"
	"github.com/pulsedeck/backend/config"
	"github.com/pulsedeck/backend/handlers"
	"github.com/pulsedeck/backend/metrics"
	"github.com/pulsedeck/backend/router"
	"github.com/pulsedeck/backend/services"
	"github.com/pulsedeck/backend/store"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Println("no PORT configured, defaulting to 8080")
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	ctx := context.Background()

	// Firestore backs production; without credentials the server runs on the
	// in-memory store (demo mode).
	var st store.Store
	if cfg.FirebaseCredentialsPath != "" {
		fs, err := store.NewFirestore(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("failed to initialise firestore: %v", err)
		}
		defer fs.Close()
		st = fs
	} else {
		log.Println("no firestore credentials configured, using in-memory store")
		st = store.NewMemory()
	}

	events := services.NewEventPublisher(cfg.KafkaBrokers)
	defer events.Close()

	incidentService := services.NewIncidentService(st, events)
	registryService := services.NewRegistryService(st, cfg.ProbeTimeout)

	var providers []ai.Provider
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("failed to create gemini client: %v", err)
		}
		defer client.Close()
		providers = append(providers,
			ai.NewGeminiProvider(client, cfg.GeminiModel),
			ai.NewGeminiProvider(client, cfg.GeminiFallbackModel),
		)
	} else {
		log.Println("no gemini api key configured, analysis uses the rule engine only")
	}

	fallback, err := ai.NewRuleAnalyzer(cfg.RulesPath)
	if err != nil {
		log.Fatalf("failed to load analysis rules: %v", err)
	}
	analyzer := ai.NewAnalyzer(incidentService, providers, fallback, cfg.AITimeout, nil)

	h := router.Handlers{
		App:      handlers.NewApp(cfg),
		Auth:     handlers.NewAuthHandler(cfg),
		Incident: handlers.NewIncidentHandler(incidentService, cfg.DefaultListLimit),
		Service:  handlers.NewServiceHandler(registryService),
		System:   handlers.NewSystemHandler(incidentService),
		AI:       handlers.NewAIHandler(analyzer),
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	router.Register(r, h, cfg.CORSOrigins, cfg.JWTSecret)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
