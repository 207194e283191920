package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
	"github.com/wifstudio/catalog-mirror/pkg/metrics"
)

const (
	phaseReconcile = "reconcile"
	phaseLink      = "link"
)

// ErrRunInProgress is returned when another host holds the run lock.
var ErrRunInProgress = errors.New("another sync run is in progress")

type remoteSource interface {
	ListRecords(ctx context.Context, tableID string) ([]airtable.Record, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs one full catalog sync: fetch both remote tables, reconcile
// products in one transaction, link attributes in a second.
type Service struct {
	logg       *logger.Logger
	source     remoteSource
	db         txRunner
	reconciler *Reconciler
	linker     *Linker
	metrics    *metrics.SyncMetrics
	lock       RunLock

	itemsTable      string
	attributesTable string

	now func() time.Time
}

// ServiceParams configures the sync service. Lock and Metrics are optional.
type ServiceParams struct {
	Logger          *logger.Logger
	Source          remoteSource
	DB              txRunner
	Reconciler      *Reconciler
	Linker          *Linker
	Metrics         *metrics.SyncMetrics
	Lock            RunLock
	ItemsTable      string
	AttributesTable string
}

// NewService constructs the sync service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("remote source required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	if params.Linker == nil {
		return nil, fmt.Errorf("linker required")
	}
	if params.ItemsTable == "" || params.AttributesTable == "" {
		return nil, fmt.Errorf("items and attributes table ids required")
	}
	return &Service{
		logg:            params.Logger,
		source:          params.Source,
		db:              params.DB,
		reconciler:      params.Reconciler,
		linker:          params.Linker,
		metrics:         params.Metrics,
		lock:            params.Lock,
		itemsTable:      params.ItemsTable,
		attributesTable: params.AttributesTable,
		now:             time.Now,
	}, nil
}

// Run executes one sync. A full remote fetch failure aborts before any
// mirror mutation; each phase commits independently, so a crash between
// phases leaves reconciled products without fresh links until the next run.
func (s *Service) Run(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx)
		if err != nil {
			return stats, fmt.Errorf("acquiring run lock: %w", err)
		}
		if !ok {
			return stats, ErrRunInProgress
		}
		defer func() {
			if err := s.lock.Release(ctx); err != nil {
				s.logg.Error(ctx, "releasing run lock", err)
			}
		}()
	}

	items, err := s.source.ListRecords(s.logg.WithTable(ctx, s.itemsTable), s.itemsTable)
	if err != nil {
		return stats, fmt.Errorf("fetching inventory items: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "records", len(items)), "fetched inventory items")

	facts, err := s.source.ListRecords(s.logg.WithTable(ctx, s.attributesTable), s.attributesTable)
	if err != nil {
		return stats, fmt.Errorf("fetching attribute facts: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "records", len(facts)), "fetched attribute facts")

	var idMap map[string]int64
	start := s.now()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var outcomes []RecordOutcome
		var txErr error
		idMap, outcomes, stats.Products, txErr = s.reconciler.Reconcile(ctx, tx, items)
		if txErr != nil {
			return txErr
		}
		s.logOutcomes(ctx, "product", outcomes)
		return nil
	})
	s.observePhase(phaseReconcile, s.now().Sub(start), err)
	if err != nil {
		return stats, fmt.Errorf("reconcile phase: %w", err)
	}
	s.metrics.AddRows("inserted", stats.Products.Inserted)
	s.metrics.AddRows("updated", stats.Products.Updated)
	s.metrics.AddRows("deleted", stats.Products.Deleted)
	s.metrics.AddRows("images", stats.Products.Images)

	start = s.now()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var outcomes []RecordOutcome
		var txErr error
		stats.Links, outcomes, txErr = s.linker.Link(ctx, tx, facts, idMap)
		if txErr != nil {
			return txErr
		}
		s.logOutcomes(ctx, "attribute fact", outcomes)
		return nil
	})
	s.observePhase(phaseLink, s.now().Sub(start), err)
	if err != nil {
		return stats, fmt.Errorf("link phase: %w", err)
	}
	s.metrics.AddRows("linked", stats.Links.LinksCreated)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"inserted":       stats.Products.Inserted,
		"updated":        stats.Products.Updated,
		"deleted":        stats.Products.Deleted,
		"skipped":        stats.Products.Skipped,
		"images":         stats.Products.Images,
		"keys_created":   stats.Links.KeysCreated,
		"attrs_created":  stats.Links.AttributesCreated,
		"links_created":  stats.Links.LinksCreated,
		"links_existing": stats.Links.LinksExisting,
		"facts_skipped":  stats.Links.FactsSkipped,
		"unknown_refs":   stats.Links.UnknownReferences,
	}), "sync complete")

	return stats, nil
}

func (s *Service) observePhase(phase string, elapsed time.Duration, err error) {
	s.metrics.ObserveDuration(phase, elapsed)
	if err != nil {
		s.metrics.IncFailure(phase)
		return
	}
	s.metrics.IncSuccess(phase)
}

func (s *Service) logOutcomes(ctx context.Context, kind string, outcomes []RecordOutcome) {
	for _, o := range outcomes {
		if o.Outcome == OutcomeAccepted {
			continue
		}
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"external_id": o.ExternalID,
			"outcome":     string(o.Outcome),
			"reason":      o.Reason,
		}), kind+" skipped")
	}
}
