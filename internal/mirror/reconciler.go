package mirror

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/pkg/db/models"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
)

type productStore interface {
	ExternalIDMapWithTx(tx *gorm.DB) (map[string]int64, error)
	InsertProductWithTx(tx *gorm.DB, product *models.Product) error
	UpdateProductWithTx(tx *gorm.DB, id int64, product *models.Product) error
	DeleteProductsWithTx(tx *gorm.DB, externalIDs []string) (int64, error)
}

type mediaStore interface {
	Materialize(ctx context.Context, refs []airtable.Attachment) ([]string, error)
}

// Reconciler brings the products table in line with one remote snapshot
// while preserving surrogate identity across runs.
type Reconciler struct {
	store productStore
	media mediaStore
	logg  *logger.Logger
}

// ReconcilerParams configures the reconciler.
type ReconcilerParams struct {
	Store  productStore
	Media  mediaStore
	Logger *logger.Logger
}

// NewReconciler constructs the product reconciler.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("product store required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Reconciler{
		store: params.Store,
		media: params.Media,
		logg:  params.Logger,
	}, nil
}

// Reconcile applies one full remote snapshot inside the given transaction:
// upserts in snapshot order, then deletes rows whose external id is gone.
// It returns the complete external-id to surrogate-id map for the link
// phase, per-record outcomes, and phase stats.
func (r *Reconciler) Reconcile(ctx context.Context, tx *gorm.DB, records []airtable.Record) (map[string]int64, []RecordOutcome, ReconcileStats, error) {
	var stats ReconcileStats

	prior, err := r.store.ExternalIDMapWithTx(tx)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("loading prior mirror: %w", err)
	}

	remoteIDs := make(map[string]struct{}, len(records))
	for _, rec := range records {
		remoteIDs[rec.ID] = struct{}{}
	}

	idMap := make(map[string]int64, len(records))
	outcomes := make([]RecordOutcome, 0, len(records))

	for i, rec := range records {
		title := rec.String(fieldItemName)
		if title == "" {
			stats.Skipped++
			outcomes = append(outcomes, RecordOutcome{
				ExternalID: rec.ID,
				Outcome:    OutcomeSkippedMissingField,
				Reason:     "empty title",
			})
			continue
		}

		paths, mediaErr := r.media.Materialize(ctx, rec.Attachments(fieldImages))
		if mediaErr != nil {
			// Failed references are omitted, not fatal for the record.
			r.logg.Warn(r.logg.WithField(ctx, "external_id", rec.ID),
				fmt.Sprintf("media materialization incomplete: %v", mediaErr))
		}
		stats.Images += len(paths)

		product := models.Product{
			Title:        title,
			Description:  rec.String(fieldDescription),
			Price:        decimal.NewFromFloat(rec.Float(fieldPrice, 0)),
			Quantity:     rec.Int(fieldQuantity, 0),
			Currency:     defaultCurrency,
			Images:       paths,
			DisplayOrder: i + 1,
		}
		if len(paths) > 0 {
			main := paths[0]
			product.MainImageURL = &main
		}

		if surrogate, ok := prior[rec.ID]; ok {
			if err := r.store.UpdateProductWithTx(tx, surrogate, &product); err != nil {
				return nil, nil, stats, fmt.Errorf("updating product %s: %w", rec.ID, err)
			}
			idMap[rec.ID] = surrogate
			stats.Updated++
		} else {
			externalID := rec.ID
			product.ExternalID = &externalID
			if err := r.store.InsertProductWithTx(tx, &product); err != nil {
				return nil, nil, stats, fmt.Errorf("inserting product %s: %w", rec.ID, err)
			}
			idMap[rec.ID] = product.ID
			stats.Inserted++
		}
		outcomes = append(outcomes, RecordOutcome{ExternalID: rec.ID, Outcome: OutcomeAccepted})
	}

	var stale []string
	for externalID := range prior {
		if _, ok := remoteIDs[externalID]; !ok {
			stale = append(stale, externalID)
		}
	}
	deleted, err := r.store.DeleteProductsWithTx(tx, stale)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("deleting stale products: %w", err)
	}
	stats.Deleted = int(deleted)

	return idMap, outcomes, stats, nil
}
