package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/auth"
	"github.com/canonry/fact-engine/pkg/config"
	"github.com/canonry/fact-engine/pkg/database"
	"github.com/canonry/fact-engine/pkg/handlers"
	"github.com/canonry/fact-engine/pkg/llm"
	"github.com/canonry/fact-engine/pkg/logging"
	"github.com/canonry/fact-engine/pkg/middleware"
	"github.com/canonry/fact-engine/pkg/repositories"
	"github.com/canonry/fact-engine/pkg/services"
	"github.com/canonry/fact-engine/pkg/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("database", cfg.Database.Database))

	// Migrations run over database/sql; the application itself uses a pgx
	// pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(context.Background(), &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	fileStore, err := storage.NewFilesystemStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal("Failed to create file store", zap.Error(err))
	}

	llmClient, err := llm.NewFromConfig(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	validator, err := auth.NewJWKSValidator(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSURL:            cfg.Auth.JWKSURL,
		Issuer:             cfg.Auth.Issuer,
	})
	if err != nil {
		logger.Fatal("Failed to create token validator", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(validator, cfg.Auth.EnableVerification, logger)

	// Repositories
	factRepo := repositories.NewFactRepository(db)
	historyRepo := repositories.NewFactHistoryRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	fieldRepo := repositories.NewExtractedFieldRepository(db)

	// Services
	factStore := services.NewFactStore(factRepo, historyRepo, db, logger)
	docService := services.NewDocumentService(docRepo, fieldRepo, fileStore, logger)
	extractionService := services.NewExtractionService(docRepo, fieldRepo, factStore, fileStore, llmClient, cfg.LLM.Temperature, logger)
	autofillService := services.NewAutofillService(factRepo, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewFactsHandler(factStore, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDocumentsHandler(docService, extractionService, cfg.Storage.MaxUploadBytes, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAutofillHandler(autofillService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting fact-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))

	if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		err = http.ListenAndServeTLS(addr, cfg.TLSCertPath, cfg.TLSKeyPath, handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}
	if err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
