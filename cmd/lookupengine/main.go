// lookupengine server - executes Look-Up enrichment projects over a REST
// API and manages the background audit-retention sweep.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lookupengine/lookupengine/pkg/api"
	"github.com/lookupengine/lookupengine/pkg/audit"
	"github.com/lookupengine/lookupengine/pkg/cache"
	"github.com/lookupengine/lookupengine/pkg/config"
	"github.com/lookupengine/lookupengine/pkg/database"
	"github.com/lookupengine/lookupengine/pkg/llmclient"
	"github.com/lookupengine/lookupengine/pkg/lookupexec"
	"github.com/lookupengine/lookupengine/pkg/orchestrator"
	"github.com/lookupengine/lookupengine/pkg/referencedata"
	"github.com/lookupengine/lookupengine/pkg/retention"
	"github.com/lookupengine/lookupengine/pkg/storage"
	"github.com/lookupengine/lookupengine/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	ginMode := getEnv("GIN_MODE", "debug")
	gin.SetMode(ginMode)

	log.Printf("Starting %s", version.Full())
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("Connected to PostgreSQL database")

	db := dbClient.DB()

	projects := storage.NewProjectRepository(db)
	templates := storage.NewTemplateRepository(db)
	dataSources := storage.NewDataSourceRepository(db)
	links := storage.NewLinkRepository(db)
	auditRepo := storage.NewAuditRepository(db)

	auditLogger := audit.New(auditRepo, slog.Default())

	retentionSvc := retention.New(cfg.AuditRetain, auditRepo, slog.Default())
	retentionSvc.Start(ctx)
	defer retentionSvc.Stop()

	responseCache := cache.New(cfg.Cache)

	llm := llmclient.New(cfg.LLMProviderRegistry, cfg.Token)
	refLoader := referencedata.New(dataSources, referencedata.NewFileBlobStore())

	executor := lookupexec.New(refLoader, templates, responseCache, llm, auditLogger, slog.Default())
	orch := orchestrator.New(executor, cfg.Orchestrator)

	server := api.NewServer(orch, projects, links, auditLogger, responseCache, db, slog.Default())

	log.Printf("HTTP server listening on :%s", httpPort)
	log.Printf("Health check available at: http://localhost:%s/health", httpPort)
	if err := server.Run(":" + httpPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
