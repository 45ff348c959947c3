package departmentstore_test

import (
	"context"
	"errors"
	"testing"

	departmentstore "github.com/dalemusser/eduflow/internal/app/store/departments"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

func TestStore_InFacultyIsScoped(t *testing.T) {
	ctx := context.Background()
	store := departmentstore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	eng, err := store.Add(ctx, "org_1", models.Department{Name: "English", FacultyID: "f1"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if eng.Status != models.UnitActive {
		t.Errorf("status: got %q, want %q", eng.Status, models.UnitActive)
	}
	if _, err := store.Add(ctx, "org_1", models.Department{Name: "Maths", FacultyID: "f2"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, "org_2", models.Department{Name: "German", FacultyID: "f1"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := store.InFaculty(ctx, "org_1", "f1")
	if err != nil {
		t.Fatalf("InFaculty failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != eng.ID {
		t.Errorf("departments: got %+v, want only %s", got, eng.ID)
	}

	var ve *scoped.ValidationError
	if _, err := store.InFaculty(ctx, "", "f1"); !errors.As(err, &ve) {
		t.Errorf("InFaculty without organization: got %v, want *ValidationError", err)
	}
}

func TestStore_UpdateCannotMoveOrganization(t *testing.T) {
	ctx := context.Background()
	store := departmentstore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	dep, err := store.Add(ctx, "org_1", models.Department{Name: "English"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var ve *scoped.ValidationError
	for _, key := range []string{"organization_id", "organization_id.x"} {
		if _, err := store.UpdateInOrg(ctx, "org_1", dep.ID, records.Record{key: "org_2"}); !errors.As(err, &ve) {
			t.Errorf("update %s: got %v, want *ValidationError", key, err)
		}
	}

	moved, err := store.UpdateInOrg(ctx, "org_1", dep.ID, records.Record{"faculty_id": "f9"})
	if err != nil {
		t.Fatalf("UpdateInOrg failed: %v", err)
	}
	if moved.FacultyID != "f9" || moved.OrganizationID != "org_1" {
		t.Errorf("department: got faculty %q org %q, want f9 org_1", moved.FacultyID, moved.OrganizationID)
	}
	if err := store.DeleteInOrg(ctx, "org_2", dep.ID); err != nil {
		t.Errorf("DeleteInOrg other org: got %v, want nil", err)
	}
	if _, err := store.GetByID(ctx, "org_1", dep.ID); err != nil {
		t.Errorf("department removed by another organization: %v", err)
	}
}
