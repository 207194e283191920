package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wifstudio/catalog-mirror/pkg/migrate"
)

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres"} {
		matches, err := filepath.Glob(filepath.Join("migrations", dialect, "*_create_catalog_tables.sql"))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no catalog migration file found for %s", dialect)
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)

		checks := []string{
			"CREATE TABLE products",
			"CREATE TABLE attribute_keys",
			"CREATE TABLE attributes",
			"CREATE TABLE product_attributes",
			"external_id TEXT UNIQUE",
			"UNIQUE (key_id, value)",
			"UNIQUE (product_id, attribute_id)",
			"ON DELETE CASCADE",
		}

		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s migration missing expected statement %q", dialect, sub)
			}
		}
	}
}

func TestValidateShippedMigrationDirs(t *testing.T) {
	for _, dir := range []string{"migrations/sqlite", "migrations/postgres"} {
		if err := migrate.ValidateDir(dir); err != nil {
			t.Errorf("ValidateDir(%s): %v", dir, err)
		}
	}
}
