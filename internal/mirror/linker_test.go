package mirror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/pkg/db/models"
)

func seedProducts(t *testing.T, conn *gorm.DB, externalIDs ...string) map[string]int64 {
	t.Helper()
	idMap := make(map[string]int64, len(externalIDs))
	for _, externalID := range externalIDs {
		externalID := externalID
		p := models.Product{ExternalID: &externalID, Title: "seed " + externalID}
		require.NoError(t, conn.Create(&p).Error)
		idMap[externalID] = p.ID
	}
	return idMap
}

func TestLinkCreatesKeysAttributesAndLinks(t *testing.T) {
	conn := setupDB(t)
	l := newTestLinker(t)
	ctx := context.Background()
	idMap := seedProducts(t, conn, "rec1", "rec2")

	facts := []airtable.Record{
		factRecord("fact1", "Color", "Red", "rec1", "rec2"),
		factRecord("fact2", "Size", "M", "rec1"),
	}

	stats, outcomes, err := l.Link(ctx, conn, facts, idMap)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.KeysCreated)
	assert.Equal(t, 2, stats.AttributesCreated)
	assert.Equal(t, 3, stats.LinksCreated)
	assert.Equal(t, 0, stats.LinksExisting)
	assert.Equal(t, 0, stats.UnknownReferences)
	require.Len(t, outcomes, 2)
	assert.Equal(t, OutcomeAccepted, outcomes[0].Outcome)
	assert.Equal(t, OutcomeAccepted, outcomes[1].Outcome)

	var keys []models.AttributeKey
	require.NoError(t, conn.Order("id").Find(&keys).Error)
	require.Len(t, keys, 2)
	assert.Equal(t, "Color", keys[0].KeyName)
	assert.Equal(t, "Size", keys[1].KeyName)
}

func TestLinkDeduplicatesWithinAndAcrossRuns(t *testing.T) {
	conn := setupDB(t)
	l := newTestLinker(t)
	ctx := context.Background()
	idMap := seedProducts(t, conn, "rec1", "rec2")

	facts := []airtable.Record{
		factRecord("fact1", "Color", "Red", "rec1"),
		factRecord("fact2", "Color", "Red", "rec2"),
	}

	stats, _, err := l.Link(ctx, conn, facts, idMap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KeysCreated)
	assert.Equal(t, 1, stats.AttributesCreated)
	assert.Equal(t, 2, stats.LinksCreated)

	// A second run finds everything already in place.
	stats, _, err = l.Link(ctx, conn, facts, idMap)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.KeysCreated)
	assert.Equal(t, 0, stats.AttributesCreated)
	assert.Equal(t, 0, stats.LinksCreated)
	assert.Equal(t, 2, stats.LinksExisting)

	var attrCount, linkCount int64
	require.NoError(t, conn.Model(&models.Attribute{}).Count(&attrCount).Error)
	require.NoError(t, conn.Model(&models.ProductAttribute{}).Count(&linkCount).Error)
	assert.EqualValues(t, 1, attrCount)
	assert.EqualValues(t, 2, linkCount)
}

func TestLinkSkipsIncompleteFacts(t *testing.T) {
	conn := setupDB(t)
	l := newTestLinker(t)
	ctx := context.Background()
	idMap := seedProducts(t, conn, "rec1")

	facts := []airtable.Record{
		factRecord("fact1", "", "Red", "rec1"),
		factRecord("fact2", "Color", "", "rec1"),
		factRecord("fact3", "Color", "Red"),
	}

	stats, outcomes, err := l.Link(ctx, conn, facts, idMap)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FactsSkipped)
	assert.Equal(t, 0, stats.KeysCreated)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.Equal(t, OutcomeSkippedMissingField, o.Outcome)
	}
}

func TestLinkSkipsUnknownReferences(t *testing.T) {
	conn := setupDB(t)
	l := newTestLinker(t)
	ctx := context.Background()
	idMap := seedProducts(t, conn, "rec1")

	facts := []airtable.Record{
		factRecord("fact1", "Color", "Red", "recGone"),
		factRecord("fact2", "Size", "M", "recGone", "rec1"),
	}

	stats, outcomes, err := l.Link(ctx, conn, facts, idMap)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UnknownReferences)
	assert.Equal(t, 1, stats.LinksCreated)

	// The attribute is still normalized even when every relation is unknown.
	assert.Equal(t, 2, stats.KeysCreated)
	assert.Equal(t, 2, stats.AttributesCreated)

	require.Len(t, outcomes, 2)
	assert.Equal(t, OutcomeSkippedUnknownReference, outcomes[0].Outcome)
	assert.Equal(t, OutcomeAccepted, outcomes[1].Outcome)
}

func TestLinkSurvivesDuplicateLinkInsert(t *testing.T) {
	conn := setupDB(t)
	l := newTestLinker(t)
	ctx := context.Background()
	idMap := seedProducts(t, conn, "rec1")

	// Two facts resolving to the same (key, value) against the same product.
	facts := []airtable.Record{
		factRecord("fact1", "Color", "Red", "rec1"),
		factRecord("fact2", "Color", "Red", "rec1"),
	}

	stats, _, err := l.Link(ctx, conn, facts, idMap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LinksCreated)
	assert.Equal(t, 1, stats.LinksExisting)

	var linkCount int64
	require.NoError(t, conn.Model(&models.ProductAttribute{}).Count(&linkCount).Error)
	assert.EqualValues(t, 1, linkCount)
}
