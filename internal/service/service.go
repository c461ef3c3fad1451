// Package service wires storage, persistence and the coarsening pipeline
// into a runnable application service.
package service

import (
	"bytes"
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hyperpart/internal/coarsening"
	"github.com/hyperpart/internal/community"
	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/internal/repository"
	"github.com/hyperpart/internal/storage"
	"github.com/hyperpart/pkg/compression"
	"github.com/hyperpart/pkg/config"
	"github.com/hyperpart/pkg/model"
	"github.com/hyperpart/pkg/parallel"
	"github.com/hyperpart/pkg/utils"
	"github.com/hyperpart/pkg/writer"
)

const tracerName = "hyperpart/service"

// Service is the main application service.
type Service struct {
	config *config.Config
	logger utils.Logger
	repos  *repository.Repositories
	store  storage.Storage
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger) *Service {
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// Initialize connects the database and the storage backend.
func (s *Service) Initialize(ctx context.Context) error {
	s.logger.Info("Connecting to database (%s)...", s.config.Database.Type)
	db, err := repository.NewGormDB(&s.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	s.repos = repository.NewRepositories(db)

	s.logger.Info("Initializing storage (%s)...", s.config.Storage.Type)
	store, err := storage.New(&s.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	s.store = store

	return nil
}

// InitializeWith wires pre-built backends into the service. Daemons that
// share a database handle with other components use this instead of
// Initialize.
func (s *Service) InitializeWith(repos *repository.Repositories, store storage.Storage) error {
	if repos == nil {
		return fmt.Errorf("repositories must not be nil")
	}
	if store == nil {
		return fmt.Errorf("storage must not be nil")
	}
	s.repos = repos
	s.store = store
	return nil
}

// Close releases the service resources.
func (s *Service) Close() error {
	if s.repos != nil {
		return s.repos.Close()
	}
	return nil
}

// Repos exposes the run repositories.
func (s *Service) Repos() *repository.Repositories { return s.repos }

// Storage exposes the storage backend.
func (s *Service) Storage() storage.Storage { return s.store }

// RunRequest describes one coarsening run.
type RunRequest struct {
	// RunUUID identifies the run; it names the uploaded report.
	RunUUID string

	// InputKey is the storage key of the hMETIS input file.
	InputKey string

	// CommunityKey is the storage key of the community assignment file.
	// When empty, hypernodes are assigned round-robin to NumCommunities
	// communities.
	CommunityKey string

	// NumCommunities is the fallback community count for round-robin
	// assignment; it is ignored when CommunityKey is set.
	NumCommunities int
}

// ReportKey returns the storage key of a run's report.
func ReportKey(runUUID string) string {
	return "reports/" + runUUID + ".json"
}

// Execute runs the coarsening pipeline for one request: load the input,
// assign communities, coarsen, and upload the run report.
func (s *Service) Execute(ctx context.Context, req RunRequest) (*model.Report, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "coarsening-run")
	span.SetAttributes(
		attribute.String("run.uuid", req.RunUUID),
		attribute.String("run.input_key", req.InputKey),
	)
	defer span.End()

	log := s.logger.WithField("run", req.RunUUID)
	timer := utils.NewTimer("coarsening-run")

	var h *hypergraph.Hypergraph
	_, err := timer.TimeFuncWithError("load", func() error {
		rc, err := s.store.Download(ctx, req.InputKey)
		if err != nil {
			return err
		}
		defer rc.Close()

		decoded, err := compression.NewReaderForPath(rc, req.InputKey)
		if err != nil {
			return err
		}
		defer decoded.Close()

		h, err = hypergraph.Parse(decoded)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load hypergraph %s: %w", req.InputKey, err)
	}
	log.Info("Loaded hypergraph: %d hypernodes, %d hyperedges, %d pins",
		h.InitialNumNodes(), h.InitialNumEdges(), h.CurrentNumPins())

	labels, err := s.loadCommunities(ctx, req, h.InitialNumNodes())
	if err != nil {
		return nil, err
	}
	h.SetCommunities(labels)

	stats := model.RunStats{
		InitialNodes:   h.InitialNumNodes(),
		InitialEdges:   h.InitialNumEdges(),
		InitialPins:    h.CurrentNumPins(),
		NumCommunities: community.Count(labels),
	}

	var result *coarsening.Result
	_, err = timer.TimeFuncWithError("coarsen", func() error {
		opts := coarsening.Options{
			Pool:               parallel.DefaultPoolConfig().WithWorkers(s.config.Coarsening.MaxWorkers),
			RespectNodeOrder:   s.config.Coarsening.RespectNodeOrder,
			CommunityNodeLimit: s.config.Coarsening.CommunityNodeLimit,
		}
		var err error
		result, err = coarsening.Coarsen(ctx, h, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("coarsening failed: %w", err)
	}

	stats.CoarseNodes = h.CurrentNumNodes()
	stats.CoarseEdges = h.CurrentNumEdges()
	stats.CoarsePins = h.CurrentNumPins()
	stats.Contractions = len(result.History)
	log.Info("Coarsened to %d hypernodes (%d contractions across %d communities)",
		stats.CoarseNodes, stats.Contractions, stats.NumCommunities)

	report := &model.Report{
		RunUUID:  req.RunUUID,
		InputKey: req.InputKey,
		Stats:    stats,
	}
	for _, p := range timer.GetPhases() {
		report.Timings = append(report.Timings, model.NewPhaseTiming(p.Name, p.Duration))
	}

	var buf bytes.Buffer
	if err := writer.WriteJSONTo(&buf, report); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := s.store.Upload(ctx, ReportKey(req.RunUUID), &buf); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	return report, nil
}

// loadCommunities resolves the community assignment for a run.
func (s *Service) loadCommunities(ctx context.Context, req RunRequest, numNodes int) ([]int, error) {
	if req.CommunityKey == "" {
		n := req.NumCommunities
		if n < 1 {
			n = 1
		}
		return community.RoundRobin(numNodes, n), nil
	}

	rc, err := s.store.Download(ctx, req.CommunityKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load communities %s: %w", req.CommunityKey, err)
	}
	defer rc.Close()

	labels, err := community.Load(rc, numNodes)
	if err != nil {
		return nil, fmt.Errorf("invalid community assignment %s: %w", req.CommunityKey, err)
	}
	return labels, nil
}
