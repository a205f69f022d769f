package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
)

func TestRepositoryCatalogFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	active := &models.LensMaterial{
		ID:             fmt.Sprintf("test-cr39-%s", uuid.NewString()),
		Name:           "Test CR-39",
		RefractiveIdx:  "1.50",
		ThinnessFactor: decimal.NewFromInt(1),
		Price:          decimal.NewFromInt(800),
		Currency:       enums.CurrencyMXN,
		IsActive:       true,
	}
	inactive := &models.LensMaterial{
		ID:             fmt.Sprintf("test-old-%s", uuid.NewString()),
		Name:           "Test Retired",
		RefractiveIdx:  "1.56",
		ThinnessFactor: decimal.NewFromInt(1),
		Price:          decimal.NewFromInt(500),
		Currency:       enums.CurrencyMXN,
		IsActive:       false,
	}
	if err := tx.Create(active).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}
	if err := tx.Create(inactive).Error; err != nil {
		t.Fatalf("create inactive material: %v", err)
	}

	materials, err := repo.ListActiveMaterials(ctx)
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	var sawActive, sawInactive bool
	for _, m := range materials {
		if m.ID == active.ID {
			sawActive = true
		}
		if m.ID == inactive.ID {
			sawInactive = true
		}
	}
	if !sawActive {
		t.Fatal("expected active material in listing")
	}
	if sawInactive {
		t.Fatal("inactive material must not be listed")
	}

	treatment := &models.LensTreatment{
		ID:                fmt.Sprintf("test-ar-%s", uuid.NewString()),
		Name:              "Test AR",
		Category:          enums.TreatmentCoating,
		Price:             decimal.NewFromInt(300),
		Currency:          enums.CurrencyMXN,
		IncompatibleWith:  pq.StringArray{"test-tint"},
		RequiresMaterials: pq.StringArray{},
		IsActive:          true,
	}
	if err := tx.Create(treatment).Error; err != nil {
		t.Fatalf("create treatment: %v", err)
	}

	treatments, err := repo.ListActiveTreatments(ctx)
	if err != nil {
		t.Fatalf("list treatments: %v", err)
	}
	found := false
	for _, tr := range treatments {
		if tr.ID == treatment.ID {
			found = true
			if len(tr.IncompatibleWith) != 1 || tr.IncompatibleWith[0] != "test-tint" {
				t.Fatalf("incompatible_with did not round-trip: %v", tr.IncompatibleWith)
			}
		}
	}
	if !found {
		t.Fatal("expected treatment in listing")
	}

	got, err := repo.FindMaterial(ctx, inactive.ID)
	if err != nil {
		t.Fatalf("find material: %v", err)
	}
	if got.IsActive {
		t.Fatal("FindMaterial must return inactive rows as stored")
	}
}
