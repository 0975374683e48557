package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expedientes-backend/config"
	"expedientes-backend/handlers"
	"expedientes-backend/middleware"
	"expedientes-backend/repository"
	"expedientes-backend/service"
	"expedientes-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	fileStorage, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	logger.Info("Storage initialized", zap.String("type", cfg.StorageType))

	// The archive is optional; without DATABASE_URL the service is
	// memory-only, which is the normal single-operator deployment.
	var archiveRepo *repository.CaseArchiveRepository
	if cfg.DatabaseURL != "" {
		db, err := initPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize Postgres", zap.Error(err))
		}
		defer db.Close()
		archiveRepo = repository.NewCaseArchiveRepository(db)
		logger.Info("Case archive enabled")
	}

	geminiClient, err := initGemini(cfg.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini", zap.Error(err))
	}

	caseStore := service.NewCaseStore()
	refStore := service.NewReferenceStore()

	analysisService, err := service.NewAnalysisService(
		service.AnalysisWithCaseStore(caseStore),
		service.AnalysisWithReferenceStore(refStore),
		service.AnalysisWithStorage(fileStorage),
		service.AnalysisWithArchive(archiveRepo),
		service.AnalysisWithGeminiClient(geminiClient),
		service.AnalysisWithModel(cfg.AnalysisModel),
		service.AnalysisWithTimeout(cfg.AnalysisTimeout),
		service.AnalysisWithLogger(logger),
	)
	if err != nil {
		logger.Fatal("Failed to initialize analysis service", zap.Error(err))
	}

	searchService := service.NewSearchService(
		service.SearchWithAPIKey(cfg.GeminiAPIKey),
		service.SearchWithModel(cfg.SearchModel),
		service.SearchWithTimeout(cfg.SearchTimeout),
		service.SearchWithLogger(logger),
	)

	caseHandler := handlers.NewCaseHandler(analysisService, caseStore, fileStorage, archiveRepo, logger, cfg.MaxUploadBytes)
	referenceHandler := handlers.NewReferenceHandler(refStore, cfg.MaxUploadBytes)
	searchHandler := handlers.NewSearchHandler(searchService)
	viewerHandler := handlers.NewViewerHandler(caseStore)

	// Retention sweep so an always-on instance does not grow without bound.
	c := cron.New()
	_, err = c.AddFunc(cfg.StoreSweepSpec, func() {
		dropped := caseStore.Prune(cfg.StoreMaxAge, cfg.StoreMaxCases)
		for _, path := range dropped {
			if path == "" {
				continue
			}
			if err := fileStorage.Delete(context.Background(), path); err != nil {
				logger.Warn("retention sweep file delete failed",
					zap.String("path", path), zap.Error(err))
			}
		}
		if len(dropped) > 0 {
			service.ObservePruned(len(dropped))
			logger.Info("retention sweep", zap.Int("dropped", len(dropped)))
		}
	})
	if err != nil {
		logger.Fatal("Invalid retention sweep schedule", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.APIKeyAuth(cfg.APIKeyHash))
	{
		// Case endpoints
		api.POST("/cases", caseHandler.UploadCases)
		api.GET("/cases", caseHandler.ListCases)
		api.GET("/cases/:id", caseHandler.GetCase)
		api.DELETE("/cases/:id", caseHandler.DeleteCase)
		api.GET("/cases/:id/file", caseHandler.DownloadCaseFile)
		api.GET("/cases/:id/rows", caseHandler.GetCaseRows)
		api.GET("/cases/:id/export/json", caseHandler.ExportCaseJSON)
		api.GET("/cases/:id/export/summary", caseHandler.ExportCaseSummary)
		api.GET("/cases/:id/export/rows", caseHandler.ExportCaseRows)

		// Consolidated table exports across all cases
		api.GET("/export/table", caseHandler.ExportTable)
		api.GET("/export/table.xlsx", caseHandler.ExportTableXLSX)

		// Viewer endpoints
		api.GET("/cases/:id/pages/:page", viewerHandler.GetPageInfo)
		api.GET("/cases/:id/pages/:page/highlights", viewerHandler.GetPageHighlights)

		// Reference corpus endpoints
		api.POST("/references", referenceHandler.UploadReference)
		api.GET("/references", referenceHandler.ListReferences)
		api.DELETE("/references/:id", referenceHandler.DeleteReference)

		// Legal context search
		api.POST("/search", searchHandler.Search)

		// Archive reads are only meaningful with a database behind them.
		if archiveRepo != nil {
			archiveHandler := handlers.NewArchiveHandler(archiveRepo, logger)
			api.GET("/archive", archiveHandler.ListArchive)
			api.GET("/archive/:id", archiveHandler.GetArchivedCase)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}
	return pool, nil
}

func initGemini(apiKey string, logger *zap.Logger) (*genai.Client, error) {
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	logger.Info("Gemini client initialized")
	return client, nil
}
