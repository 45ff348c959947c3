package facultystore_test

import (
	"context"
	"errors"
	"testing"

	facultystore "github.com/dalemusser/eduflow/internal/app/store/faculties"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

func TestStore_AddDefaultsAndScopes(t *testing.T) {
	ctx := context.Background()
	store := facultystore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	fac, err := store.Add(ctx, "org_1", models.Faculty{Name: "Languages", Code: "LANG"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if fac.Status != models.UnitActive {
		t.Errorf("status: got %q, want %q", fac.Status, models.UnitActive)
	}
	if fac.OrganizationID != "org_1" {
		t.Errorf("organization_id: got %q, want org_1", fac.OrganizationID)
	}
	if _, err := store.Add(ctx, "org_2", models.Faculty{Name: "Sciences"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list, err := store.GetAll(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != fac.ID {
		t.Errorf("org_1 faculties: got %+v, want only %s", list, fac.ID)
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := facultystore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	var ve *scoped.ValidationError
	if _, err := store.Add(ctx, "org_1", models.Faculty{Code: "X"}); !errors.As(err, &ve) {
		t.Errorf("Add without name: got %v, want *ValidationError", err)
	}

	fac, err := store.Add(ctx, "org_1", models.Faculty{Name: "Languages"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.UpdateInOrg(ctx, "org_1", fac.ID, records.Record{"status": "CLOSED"}); !errors.As(err, &ve) {
		t.Errorf("UpdateInOrg bad status: got %v, want *ValidationError", err)
	}
	got, err := store.GetByID(ctx, "org_1", fac.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.UnitActive {
		t.Errorf("status: got %q, want %q", got.Status, models.UnitActive)
	}
}

func TestStore_AddIgnoresSuppliedID(t *testing.T) {
	ctx := context.Background()
	store := facultystore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	theirs, err := store.Add(ctx, "org_2", models.Faculty{Name: "Sciences"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	mine, err := store.Add(ctx, "org_1", models.Faculty{ID: theirs.ID, Name: "Languages"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if mine.ID == theirs.ID {
		t.Errorf("id: got %s, want a fresh id", mine.ID)
	}

	kept, err := store.GetByID(ctx, "org_2", theirs.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if kept.Name != "Sciences" {
		t.Errorf("name: got %q, want Sciences", kept.Name)
	}
}
