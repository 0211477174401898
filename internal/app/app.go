package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/valmyr/matchops/external/faceit"
	"github.com/valmyr/matchops/external/riot"
	"github.com/valmyr/matchops/internal/config"
	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/series"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/domain/transfer"
	"github.com/valmyr/matchops/internal/infrastructure/repository/memory"
	"github.com/valmyr/matchops/internal/infrastructure/repository/postgres"
	"github.com/valmyr/matchops/internal/interfaces/httpapi"
	"github.com/valmyr/matchops/internal/platform/cache"
	idgen "github.com/valmyr/matchops/internal/platform/id"
	"github.com/valmyr/matchops/internal/platform/logging"
	"github.com/valmyr/matchops/internal/platform/resilience"
	"github.com/valmyr/matchops/internal/usecase"
)

// NewHTTPServer wires repositories, providers and services into an HTTP server.
// The returned closer releases the database pool and must run after shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if httpLogger == nil {
		httpLogger = slog.Default()
	}

	var (
		matchRepo    match.Repository
		statRepo     playerstat.Repository
		transferRepo transfer.Repository
		playerRepo   player.Repository
		teamRepo     team.Repository
		seriesRepo   series.Repository
	)
	closer := func() error { return nil }

	if cfg.DBURL != "" {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closer = db.Close

		matchRepo = postgres.NewMatchRepository(db)
		statRepo = postgres.NewStatRepository(db)
		transferRepo = postgres.NewTransferRepository(db)
		playerRepo = postgres.NewPlayerRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		seriesRepo = postgres.NewSeriesRepository(db)

		logger.Info("using postgres repositories", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		store := memory.NewStore()
		memory.Seed(store)

		matchRepo = memory.NewMatchRepository(store)
		statRepo = memory.NewStatRepository(store)
		transferRepo = memory.NewTransferRepository(store)
		playerRepo = memory.NewPlayerRepository(store)
		teamRepo = memory.NewTeamRepository(store)
		seriesRepo = memory.NewSeriesRepository(store)

		logger.Info("using in-memory repositories", "reason", "DB_URL empty")
	}

	// The versions endpoint on ddragon needs no API key, so the riot client
	// is always constructed even when riot imports are disabled.
	riotClient := riot.NewClient(riot.ClientConfig{
		APIKey:          cfg.RiotAPIKey,
		VersionsBaseURL: cfg.RiotVersionsURL,
		Timeout:         cfg.RiotTimeout,
		MaxRetries:      cfg.RiotMaxRetries,
		Logger:          logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.RiotCircuitEnabled,
			FailureThreshold: cfg.RiotCircuitFailureCount,
			OpenTimeout:      cfg.RiotCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.RiotCircuitHalfOpenMaxReq,
		},
	})

	importers := make([]usecase.Importer, 0, 2)
	if cfg.RiotEnabled {
		importers = append(importers, riotClient)
	}
	if cfg.FaceitEnabled {
		importers = append(importers, faceit.NewClient(faceit.ClientConfig{
			BaseURL:    cfg.FaceitBaseURL,
			APIToken:   cfg.FaceitToken,
			Timeout:    cfg.FaceitTimeout,
			MaxRetries: cfg.FaceitMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FaceitCircuitEnabled,
				FailureThreshold: cfg.FaceitCircuitFailureCount,
				OpenTimeout:      cfg.FaceitCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FaceitCircuitHalfOpenMaxReq,
			},
		}))
	}
	if len(importers) == 0 {
		logger.Warn("no match sources enabled", "hint", "set RIOT_ENABLED or FACEIT_ENABLED")
	}

	cacheStore := cache.NewStore(cfg.CacheTTL)

	rosterSvc := usecase.NewRosterService(transferRepo, teamRepo, playerRepo, logger)
	statsSvc := usecase.NewStatsService(statRepo, playerRepo, teamRepo, cacheStore, logger)
	versionSvc := usecase.NewVersionService(riotClient, cache.NewStore(usecase.VersionCacheTTL), logger)
	importSvc := usecase.NewImportService(
		usecase.NewImporterSet(importers...),
		matchRepo,
		playerRepo,
		rosterSvc,
		statsSvc,
		idgen.NewRandomGenerator(),
		logger,
		cfg.ImportMaxWorkers,
	)

	handler := httpapi.NewHandler(
		importSvc, rosterSvc, statsSvc, versionSvc,
		matchRepo, statRepo, seriesRepo, transferRepo,
		httpLogger,
	)
	router := httpapi.NewRouter(handler, httpLogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closer, nil
}
