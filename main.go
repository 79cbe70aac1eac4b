package main

import (
	"log"
	"net/http"

	"dplus/api"
	"dplus/config"
	"dplus/database"
	analyticsapp "dplus/internal/analytics/application"
	analyticsinfra "dplus/internal/analytics/infrastructure"
	exportapp "dplus/internal/export/application"
	exportinfra "dplus/internal/export/infrastructure"
	ingestapp "dplus/internal/ingest/application"
	ingestdomain "dplus/internal/ingest/domain"
	ingestinfra "dplus/internal/ingest/infrastructure"
	"dplus/internal/metrics"
	sharedinfra "dplus/internal/shared/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := sharedinfra.NewLogger()
	reg := metrics.NewRegistry()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := ingestinfra.NewStore(db, cfg.DBDriver)
	if err := store.InitSchema(); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Contexte ingestion
	discovery := ingestinfra.NewDiscovery(cfg.DataDirs, cfg.TikTokPatterns, cfg.ShopeePatterns)
	mapper := ingestdomain.NewSchemaMapper()
	cleaner := ingestapp.NewCleaner(cfg.BlacklistKeywords, cfg.Location())
	ingestService := ingestapp.NewIngestService(
		store, discovery, mapper, cleaner, logger, reg,
		cfg.LossThreshold, cfg.GainThreshold,
	)

	// Contexte analytique
	cache := sharedinfra.NewShardedCache(16)
	queryRepo := analyticsinfra.NewQueryRepository(db, cfg.DBDriver, cfg.ExcludedStatuses)
	queryService := analyticsapp.NewQueryService(queryRepo, cache, cfg.CacheTTL, logger, reg)

	// Contexte export
	exportRepo := exportinfra.NewExportQueryRepository(db, cfg.DBDriver)
	exportService := exportapp.NewExportService(exportRepo, queryService, logger)

	// Reconstruction au démarrage si les fichiers sources ont changé
	needs, err := ingestService.NeedsRebuild()
	if err != nil {
		log.Fatalf("rebuild check: %v", err)
	}
	if needs {
		logger.Info("source files changed, rebuilding store")
		result, err := ingestService.RebuildAll()
		if err != nil {
			log.Fatalf("rebuild: %v", err)
		}
		logger.Info("rebuild done: %d files, %d rows in %s",
			result.FilesProcessed, result.RowsLoaded, result.Duration)
		for _, warning := range result.Warnings {
			logger.Warn("%s", warning)
		}
	} else {
		logger.Info("store up to date, skipping rebuild")
	}

	server := api.NewServer(queryService, ingestService, exportService, store, logger, reg)

	logger.Info("listening on %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, server.Routes()))
}
