package mirror

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/pkg/db/models"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
)

type attributeStore interface {
	FindAttributeKeyWithTx(tx *gorm.DB, keyName string) (*models.AttributeKey, error)
	InsertAttributeKeyWithTx(tx *gorm.DB, key *models.AttributeKey) error
	FindAttributeWithTx(tx *gorm.DB, keyID int64, value string) (*models.Attribute, error)
	InsertAttributeWithTx(tx *gorm.DB, attr *models.Attribute) error
	InsertLinkWithTx(tx *gorm.DB, productID, attributeID int64) (bool, error)
}

// Linker normalizes attribute facts and links them to reconciled products.
type Linker struct {
	store attributeStore
	logg  *logger.Logger
}

// LinkerParams configures the linker.
type LinkerParams struct {
	Store  attributeStore
	Logger *logger.Logger
}

// NewLinker constructs the attribute linker.
func NewLinker(params LinkerParams) (*Linker, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("attribute store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Linker{store: params.Store, logg: params.Logger}, nil
}

type pairKey struct {
	keyID int64
	value string
}

// Link processes attribute facts in input order inside the given
// transaction. Keys and (key, value) pairs are created at most once: the
// run-local cache is consulted first, then storage, then an insert. Facts
// with an empty key, value, or relation set are skipped; relations to
// unknown external ids are skipped; duplicate links are treated as success.
func (l *Linker) Link(ctx context.Context, tx *gorm.DB, facts []airtable.Record, idMap map[string]int64) (LinkStats, []RecordOutcome, error) {
	var stats LinkStats
	outcomes := make([]RecordOutcome, 0, len(facts))

	keyCache := make(map[string]int64)
	attrCache := make(map[pairKey]int64)

	for _, fact := range facts {
		keyName := fact.String(fieldKey)
		value := fact.String(fieldValue)
		related := fact.Strings(fieldRelatedItems)

		if keyName == "" || value == "" || len(related) == 0 {
			stats.FactsSkipped++
			outcomes = append(outcomes, RecordOutcome{
				ExternalID: fact.ID,
				Outcome:    OutcomeSkippedMissingField,
				Reason:     "empty key, value, or relations",
			})
			continue
		}

		keyID, ok := keyCache[keyName]
		if !ok {
			var err error
			keyID, err = l.resolveKey(tx, keyName, &stats)
			if err != nil {
				return stats, outcomes, err
			}
			keyCache[keyName] = keyID
		}

		attrID, ok := attrCache[pairKey{keyID, value}]
		if !ok {
			var err error
			attrID, err = l.resolveAttribute(tx, keyID, value, &stats)
			if err != nil {
				return stats, outcomes, err
			}
			attrCache[pairKey{keyID, value}] = attrID
		}

		unknown := 0
		for _, externalID := range related {
			productID, ok := idMap[externalID]
			if !ok {
				// Referenced product was dropped or never mirrored.
				unknown++
				stats.UnknownReferences++
				continue
			}
			created, err := l.store.InsertLinkWithTx(tx, productID, attrID)
			if err != nil {
				return stats, outcomes, fmt.Errorf("linking product %s to attribute %d: %w", externalID, attrID, err)
			}
			if created {
				stats.LinksCreated++
			} else {
				stats.LinksExisting++
			}
		}

		outcome := RecordOutcome{ExternalID: fact.ID, Outcome: OutcomeAccepted}
		if unknown == len(related) {
			outcome.Outcome = OutcomeSkippedUnknownReference
			outcome.Reason = "no related product is mirrored"
		}
		outcomes = append(outcomes, outcome)
	}

	return stats, outcomes, nil
}

func (l *Linker) resolveKey(tx *gorm.DB, keyName string, stats *LinkStats) (int64, error) {
	existing, err := l.store.FindAttributeKeyWithTx(tx, keyName)
	if err != nil {
		return 0, fmt.Errorf("looking up attribute key %q: %w", keyName, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	key := models.AttributeKey{KeyName: keyName}
	if err := l.store.InsertAttributeKeyWithTx(tx, &key); err != nil {
		return 0, fmt.Errorf("inserting attribute key %q: %w", keyName, err)
	}
	stats.KeysCreated++
	return key.ID, nil
}

func (l *Linker) resolveAttribute(tx *gorm.DB, keyID int64, value string, stats *LinkStats) (int64, error) {
	existing, err := l.store.FindAttributeWithTx(tx, keyID, value)
	if err != nil {
		return 0, fmt.Errorf("looking up attribute (%d, %q): %w", keyID, value, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	attr := models.Attribute{KeyID: keyID, Value: value}
	if err := l.store.InsertAttributeWithTx(tx, &attr); err != nil {
		return 0, fmt.Errorf("inserting attribute (%d, %q): %w", keyID, value, err)
	}
	stats.AttributesCreated++
	return attr.ID, nil
}
