package mirror

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "mirror-test", Output: io.Discard})
}

// setupDB opens a per-test in-memory sqlite database with the mirror schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ddl := []string{
		`CREATE TABLE products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			images TEXT NOT NULL DEFAULT '[]',
			main_image_url TEXT,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE attribute_keys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key_name TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE attributes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key_id INTEGER NOT NULL REFERENCES attribute_keys(id),
			value TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT idx_attributes_key_value UNIQUE (key_id, value)
		)`,
		`CREATE TABLE product_attributes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			attribute_id INTEGER NOT NULL REFERENCES attributes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT idx_product_attributes_pair UNIQUE (product_id, attribute_id)
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// stubMedia satisfies mediaStore without touching the filesystem or network.
type stubMedia struct {
	paths []string
	err   error
	calls int
}

func (s *stubMedia) Materialize(_ context.Context, refs []airtable.Attachment) ([]string, error) {
	s.calls++
	if len(refs) == 0 {
		return nil, nil
	}
	return s.paths, s.err
}

func newTestReconciler(t *testing.T, media mediaStore) *Reconciler {
	t.Helper()
	if media == nil {
		media = &stubMedia{}
	}
	r, err := NewReconciler(ReconcilerParams{
		Store:  NewRepository(),
		Media:  media,
		Logger: testLogger(),
	})
	require.NoError(t, err)
	return r
}

func newTestLinker(t *testing.T) *Linker {
	t.Helper()
	l, err := NewLinker(LinkerParams{Store: NewRepository(), Logger: testLogger()})
	require.NoError(t, err)
	return l
}

func itemRecord(id, title string, price float64, qty int) airtable.Record {
	fields := map[string]any{}
	if title != "" {
		fields[fieldItemName] = title
	}
	fields[fieldPrice] = price
	fields[fieldQuantity] = float64(qty)
	return airtable.Record{ID: id, Fields: fields}
}

func factRecord(id, key, value string, related ...string) airtable.Record {
	rel := make([]any, 0, len(related))
	for _, r := range related {
		rel = append(rel, r)
	}
	return airtable.Record{ID: id, Fields: map[string]any{
		fieldKey:          key,
		fieldValue:        value,
		fieldRelatedItems: rel,
	}}
}
