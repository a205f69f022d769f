package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mexilux/optica-backend/pkg/migrate"
)

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_lens_catalog.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no lens catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS lens_materials",
		"CHECK (refractive_idx IN ('1.50', '1.56', '1.60', '1.67', '1.74'))",
		"CREATE TABLE IF NOT EXISTS lens_treatments",
		"incompatible_with TEXT[] NOT NULL DEFAULT '{}'",
		"CREATE TABLE IF NOT EXISTS lens_usage_options",
		"DROP TABLE IF EXISTS lens_materials",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("catalog migration missing %q", check)
		}
	}
}

func TestConfigurationMigrationIndexesExpiry(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_lens_configurations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no lens configurations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS lens_configurations",
		"idx_lens_configurations_expires",
		"WHERE NOT is_complete",
		"DROP TABLE IF EXISTS lens_configurations",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("configurations migration missing %q", check)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
