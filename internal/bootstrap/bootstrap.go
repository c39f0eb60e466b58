// Package bootstrap wires configuration, infrastructure and use cases into
// ready-to-run api and worker applications.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hemoboard/hemoboard/internal/config"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/core/usecase"
	"github.com/hemoboard/hemoboard/internal/infrastructure/dataset"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
	"github.com/hemoboard/hemoboard/internal/infrastructure/forest"
	"github.com/hemoboard/hemoboard/internal/infrastructure/geocode/csvcache"
	"github.com/hemoboard/hemoboard/internal/infrastructure/geocode/nominatim"
	"github.com/hemoboard/hemoboard/internal/infrastructure/kmeans"
	"github.com/hemoboard/hemoboard/internal/infrastructure/queue/nats"
	"github.com/hemoboard/hemoboard/internal/infrastructure/repository/postgres"
	"github.com/hemoboard/hemoboard/internal/infrastructure/resilience"
	"github.com/hemoboard/hemoboard/internal/infrastructure/sentiment"
	"github.com/hemoboard/hemoboard/internal/infrastructure/storage/localfs"
	"github.com/hemoboard/hemoboard/internal/observability/logging"
)

type API struct {
	Config config.Config
	Logger *slog.Logger

	MapUC       *usecase.MapUseCase
	HealthUC    *usecase.HealthUseCase
	ClusterUC   *usecase.ClusteringUseCase
	CampaignUC  *usecase.CampaignUseCase
	RetentionUC *usecase.RetentionUseCase
	SentimentUC *usecase.SentimentUseCase
	PredictSvc  *usecase.PredictionService
	ExportUC    *usecase.ExportUseCase

	closeFn func()
}

func NewAPI(ctx context.Context, cfg config.Config) (*API, error) {
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	canon, err := dataset.NewCanonicalizer()
	if err != nil {
		return nil, fmt.Errorf("init canonicalizer: %w", err)
	}
	loader := dataset.NewLoader(cfg.DonorCSVPath, delimiterRune(cfg.DonorCSVDelimiter), canon, logger)
	store, err := dataset.NewStoreFromLoader(ctx, loader)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	cache, closeCache, err := newGeocodeCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeCache()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	scorer, err := sentiment.NewScorer(cfg.SentimentPositiveThreshold, cfg.SentimentNegativeThreshold)
	if err != nil {
		queue.Close()
		closeCache()
		return nil, fmt.Errorf("init sentiment scorer: %w", err)
	}

	predictSvc, err := trainPredictionService(ctx, store, cfg, logger)
	if err != nil {
		queue.Close()
		closeCache()
		return nil, err
	}

	storage, err := localfs.New(cfg.ExportPath)
	if err != nil {
		queue.Close()
		closeCache()
		return nil, fmt.Errorf("init export storage: %w", err)
	}

	clusterer := kmeans.New(cfg.ClusterCount, cfg.ClusterMaxIter, uint64(cfg.ClusterSeed))

	mapUC := usecase.NewMapUseCase(store, cache, queue, logger)
	healthUC := usecase.NewHealthUseCase(store)
	clusterUC := usecase.NewClusteringUseCase(store, clusterer, cfg.ClusterCount, logger)
	campaignUC := usecase.NewCampaignUseCase(store)
	retentionUC := usecase.NewRetentionUseCase(store)
	sentimentUC := usecase.NewSentimentUseCase(store, scorer)
	exportUC := usecase.NewExportUseCase(clusterUC, healthUC, retentionUC, campaignUC, sentimentUC, storage)

	return &API{
		Config: cfg,
		Logger: logger,

		MapUC:       mapUC,
		HealthUC:    healthUC,
		ClusterUC:   clusterUC,
		CampaignUC:  campaignUC,
		RetentionUC: retentionUC,
		SentimentUC: sentimentUC,
		PredictSvc:  predictSvc,
		ExportUC:    exportUC,

		closeFn: func() {
			queue.Close()
			closeCache()
		},
	}, nil
}

func (a *API) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type Worker struct {
	Config config.Config
	Logger *slog.Logger

	Queue     *nats.Queue
	GeocodeUC *usecase.GeocodeUseCase
	Cache     ports.GeocodeCache

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config) (*Worker, error) {
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	cache, closeCache, err := newGeocodeCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeCache()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	geocoder := nominatim.New(
		cfg.NominatimURL,
		cfg.GeocodeCountry,
		cfg.GeocodeUserAgent,
		time.Duration(cfg.GeocodeMinIntervalMS)*time.Millisecond,
		0,
		executor,
	)

	return &Worker{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		GeocodeUC: usecase.NewGeocodeUseCase(cache, geocoder, logger),
		Cache:     cache,

		closeFn: func() {
			queue.Close()
			closeCache()
		},
	}, nil
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// newGeocodeCache selects the cache backend: a local CSV file for single
// instance setups, Postgres when api and worker replicas share state.
func newGeocodeCache(ctx context.Context, cfg config.Config) (ports.GeocodeCache, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.GeocodeCacheBackend)) {
	case "", "csv":
		return csvcache.New(cfg.GeocodeCachePath), func() {}, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewGeocodeRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown geocode cache backend %q", cfg.GeocodeCacheBackend)
	}
}

// trainPredictionService fits the standardizer and the eligibility forest
// on the full dataset once; the api refuses to start without a usable
// training set.
func trainPredictionService(ctx context.Context, store *dataset.Store, cfg config.Config, logger *slog.Logger) (*usecase.PredictionService, error) {
	donors, err := store.Donors(ctx)
	if err != nil {
		return nil, err
	}
	x, y := features.TrainingSet(donors)
	if len(x) == 0 {
		return nil, fmt.Errorf("train eligibility model: no complete training rows in dataset")
	}

	m := mat.NewDense(len(x), len(features.PredictionFeatures), nil)
	for i, row := range x {
		m.SetRow(i, row)
	}
	scaler := features.FitScaler(m)
	standardized := make([][]float64, len(x))
	for i, row := range x {
		standardized[i] = scaler.Transform(row)
	}

	model, err := forest.Train(standardized, y, forest.Config{
		Trees:    cfg.ForestTrees,
		MaxDepth: cfg.ForestMaxDepth,
		Seed:     uint64(cfg.ForestSeed),
	})
	if err != nil {
		return nil, fmt.Errorf("train eligibility model: %w", err)
	}
	logger.Info("eligibility_model_trained", "rows", len(x), "trees", cfg.ForestTrees)

	return usecase.NewPredictionService(model, scaler), nil
}

func delimiterRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ';'
}
