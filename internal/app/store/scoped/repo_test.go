package scoped_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"github.com/dalemusser/eduflow/internal/testutil"
	"go.uber.org/zap"
)

func newStudents(rs records.Store) *scoped.Repo[models.Student] {
	return scoped.New[models.Student](rs, scoped.Config{
		Collection: "users",
		Match:      records.Filter{"role": models.RoleStudent},
		Defaults:   records.Record{"status": models.StudentActive},
	}, zap.NewNop())
}

func names(list []models.Student) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.FirstName
	}
	sort.Strings(out)
	return out
}

func TestRepo_WatchIsOrganizationScoped(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	repo := newStudents(rs)

	for _, s := range []struct{ org, name string }{
		{"org_1", "Ann"},
		{"org_1", "Bob"},
		{"org_2", "Cid"},
	} {
		if _, err := repo.Add(ctx, s.org, models.Student{FirstName: s.name}); err != nil {
			t.Fatalf("Add %s failed: %v", s.name, err)
		}
	}

	live, err := repo.Watch(ctx, "org_1", nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer live.Cancel()

	got, err := live.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if n := names(got); len(n) != 2 || n[0] != "Ann" || n[1] != "Bob" {
		t.Errorf("students: got %v, want [Ann Bob]", n)
	}
	for _, s := range got {
		if s.OrganizationID != "org_1" {
			t.Errorf("student %s belongs to %s", s.ID, s.OrganizationID)
		}
	}
}

func TestRepo_AddStampsOrganizationAndDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newStudents(records.NewMemory(zap.NewNop()))

	s, err := repo.Add(ctx, "org_1", models.Student{FirstName: "Ann", OrganizationID: "org_other"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if s.ID == "" {
		t.Error("expected assigned id")
	}
	if s.OrganizationID != "org_1" {
		t.Errorf("organization_id: got %q, want org_1", s.OrganizationID)
	}
	if s.Role != models.RoleStudent {
		t.Errorf("role: got %q, want %q", s.Role, models.RoleStudent)
	}
	if s.Status != models.StudentActive {
		t.Errorf("status: got %q, want %q", s.Status, models.StudentActive)
	}
	if s.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestRepo_AddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	repo := newStudents(rs)

	_, err := repo.Add(ctx, "org_1", models.Student{})
	var ve *scoped.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err: got %v, want *ValidationError", err)
	}
	if ve.Field != "first_name" {
		t.Errorf("field: got %q, want first_name", ve.Field)
	}

	if _, err := repo.Add(ctx, "", models.Student{FirstName: "Ann"}); !errors.As(err, &ve) {
		t.Errorf("empty org: got %v, want *ValidationError", err)
	}

	all, err := rs.Find(ctx, "users", records.Filter{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected writes reached the store: %v", all)
	}
}

func TestRepo_QueriesRequireOrganization(t *testing.T) {
	repo := newStudents(records.NewMemory(zap.NewNop()))
	var ve *scoped.ValidationError
	if _, err := repo.GetAll(context.Background(), ""); !errors.As(err, &ve) {
		t.Errorf("GetAll: got %v, want *ValidationError", err)
	}
	if _, err := repo.Watch(context.Background(), "", nil); !errors.As(err, &ve) {
		t.Errorf("Watch: got %v, want *ValidationError", err)
	}
}

func TestRepo_SkipsUndecodableRecords(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	fx := testutil.NewFixtures(t, rs)
	repo := newStudents(rs)

	fx.CreateStudent(ctx, "org_1", "Ann")
	fx.Insert(ctx, "users", records.Record{
		"organization_id": "org_1",
		"role":            "STUDENT",
		"status":          "NOT_A_STATUS",
		"first_name":      "Broken",
	})

	got, err := repo.GetAll(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if n := names(got); len(n) != 1 || n[0] != "Ann" {
		t.Errorf("students: got %v, want [Ann]", n)
	}
}

func TestRepo_DecodeReportsFields(t *testing.T) {
	repo := newStudents(records.NewMemory(zap.NewNop()))
	_, err := repo.Decode(records.Record{
		"organization_id": "org_1",
		"role":            "STUDENT",
		"status":          "ACTIVE",
	})
	var de *scoped.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err: got %v, want *DecodeError", err)
	}
	want := map[string]bool{"_id": true, "first_name": true}
	if len(de.Fields) != len(want) {
		t.Fatalf("fields: got %v, want _id and first_name", de.Fields)
	}
	for _, f := range de.Fields {
		if !want[f] {
			t.Errorf("unexpected field %q", f)
		}
	}
}

func TestRepo_SharedCollectionDiscriminator(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	students := newStudents(rs)

	fx := testutil.NewFixtures(t, rs)
	teacher := fx.Insert(ctx, "users", records.Record{
		"organization_id": "org_1",
		"role":            "TEACHER",
		"first_name":      "Tom",
		"status":          "ACTIVE",
	})
	fx.CreateStudent(ctx, "org_1", "Ann")

	got, err := students.GetAll(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if n := names(got); len(n) != 1 || n[0] != "Ann" {
		t.Errorf("students: got %v, want [Ann]", n)
	}
	if _, err := students.GetByID(ctx, "org_1", teacher.ID()); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("GetByID teacher: got %v, want ErrNotFound", err)
	}
}

func TestRepo_GetByIDOtherOrganization(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	repo := newStudents(rs)

	s, err := repo.Add(ctx, "org_2", models.Student{FirstName: "Cid"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "org_1", s.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("cross-org GetByID: got %v, want ErrNotFound", err)
	}
	got, err := repo.GetByID(ctx, "org_2", s.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Cid" {
		t.Errorf("first_name: got %q, want Cid", got.FirstName)
	}
}

func TestRepo_UpdateGuardsScopeFields(t *testing.T) {
	ctx := context.Background()
	repo := newStudents(records.NewMemory(zap.NewNop()))
	s, err := repo.Add(ctx, "org_1", models.Student{FirstName: "Ann"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var ve *scoped.ValidationError
	if _, err := repo.Update(ctx, s.ID, records.Record{"organization_id": "org_2"}); !errors.As(err, &ve) {
		t.Errorf("move org: got %v, want *ValidationError", err)
	}
	if _, err := repo.Update(ctx, s.ID, records.Record{"role": "TEACHER"}); !errors.As(err, &ve) {
		t.Errorf("change role: got %v, want *ValidationError", err)
	}
	for _, key := range []string{"organization_id.x", "role.x", "_id", "created_at", "created_at.t", "$set"} {
		if _, err := repo.Update(ctx, s.ID, records.Record{key: "org_2"}); !errors.As(err, &ve) {
			t.Errorf("update %s: got %v, want *ValidationError", key, err)
		}
	}

	updated, err := repo.Update(ctx, s.ID, records.Record{"last_name": "Lee"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.LastName != "Lee" || updated.FirstName != "Ann" {
		t.Errorf("updated: got %q %q, want Ann Lee", updated.FirstName, updated.LastName)
	}

	if _, err := repo.Update(ctx, "missing", records.Record{"last_name": "x"}); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("Update missing: got %v, want ErrNotFound", err)
	}
}

func TestRepo_InOrgVariants(t *testing.T) {
	ctx := context.Background()
	repo := newStudents(records.NewMemory(zap.NewNop()))
	s, err := repo.Add(ctx, "org_2", models.Student{FirstName: "Cid"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := repo.UpdateInOrg(ctx, "org_1", s.ID, records.Record{"last_name": "x"}); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("UpdateInOrg other org: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteInOrg(ctx, "org_1", s.ID); err != nil {
		t.Errorf("DeleteInOrg other org: got %v, want nil", err)
	}
	if _, err := repo.GetByID(ctx, "org_2", s.ID); err != nil {
		t.Errorf("record removed by another organization: %v", err)
	}

	if err := repo.DeleteInOrg(ctx, "org_2", s.ID); err != nil {
		t.Fatalf("DeleteInOrg failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "org_2", s.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestRepo_Save(t *testing.T) {
	ctx := context.Background()
	repo := newStudents(records.NewMemory(zap.NewNop()))

	created, err := repo.Save(ctx, "org_1", models.Student{FirstName: "Ann"})
	if err != nil {
		t.Fatalf("Save new failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected id on created record")
	}

	created.LastName = "Lee"
	saved, err := repo.Save(ctx, "org_1", created)
	if err != nil {
		t.Fatalf("Save existing failed: %v", err)
	}
	if saved.ID != created.ID || saved.LastName != "Lee" {
		t.Errorf("saved: got %s %q, want %s Lee", saved.ID, saved.LastName, created.ID)
	}
	if !saved.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: got %v, want %v", saved.CreatedAt, created.CreatedAt)
	}

	all, err := repo.GetAll(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("records: got %d, want 1", len(all))
	}

	var ve *scoped.ValidationError
	created.FirstName = ""
	if _, err := repo.Save(ctx, "org_1", created); !errors.As(err, &ve) {
		t.Errorf("invalid Save: got %v, want *ValidationError", err)
	}
}

func TestLive_NextAfterCancel(t *testing.T) {
	ctx := context.Background()
	repo := newStudents(records.NewMemory(zap.NewNop()))
	live, err := repo.Watch(ctx, "org_1", nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if _, err := live.Next(ctx); err != nil {
		t.Fatalf("initial Next failed: %v", err)
	}

	live.Cancel()
	if _, err := live.Next(ctx); !errors.Is(err, records.ErrSubscriptionClosed) {
		t.Errorf("Next after cancel: got %v, want ErrSubscriptionClosed", err)
	}
}

func TestRepo_AddIgnoresSuppliedID(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	repo := newStudents(rs)

	victim, err := repo.Add(ctx, "org_2", models.Student{FirstName: "Cid"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	teacher := testutil.NewFixtures(t, rs).Insert(ctx, "users", records.Record{
		"organization_id": "org_1",
		"role":            "TEACHER",
		"first_name":      "Tom",
		"status":          "ACTIVE",
	})

	for _, id := range []string{victim.ID, teacher.ID()} {
		got, err := repo.Add(ctx, "org_1", models.Student{ID: id, FirstName: "Eve"})
		if err != nil {
			t.Fatalf("Add with id %s failed: %v", id, err)
		}
		if got.ID == id || got.ID == "" {
			t.Errorf("id: got %q, want a fresh id instead of %s", got.ID, id)
		}
	}

	kept, err := repo.GetByID(ctx, "org_2", victim.ID)
	if err != nil {
		t.Fatalf("GetByID victim failed: %v", err)
	}
	if kept.FirstName != "Cid" {
		t.Errorf("victim first_name: got %q, want Cid", kept.FirstName)
	}
	stored, err := rs.Get(ctx, "users", teacher.ID())
	if err != nil {
		t.Fatalf("Get teacher failed: %v", err)
	}
	if stored["role"] != "TEACHER" || stored["first_name"] != "Tom" {
		t.Errorf("teacher record changed: got %v", stored)
	}
}

func TestRepo_SaveForeignIDCreatesNewRecord(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	repo := newStudents(rs)

	victim, err := repo.Add(ctx, "org_2", models.Student{FirstName: "Cid"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	saved, err := repo.Save(ctx, "org_1", models.Student{ID: victim.ID, FirstName: "Eve"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == victim.ID {
		t.Errorf("id: got %s, want a fresh id", saved.ID)
	}
	if saved.OrganizationID != "org_1" {
		t.Errorf("organization_id: got %q, want org_1", saved.OrganizationID)
	}

	kept, err := repo.GetByID(ctx, "org_2", victim.ID)
	if err != nil {
		t.Fatalf("GetByID victim failed: %v", err)
	}
	if kept.FirstName != "Cid" {
		t.Errorf("victim first_name: got %q, want Cid", kept.FirstName)
	}
}

func TestRepo_UpdateValidatesBeforeWrite(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	repo := newStudents(rs)
	s, err := repo.Add(ctx, "org_1", models.Student{FirstName: "Ann"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var ve *scoped.ValidationError
	if _, err := repo.Update(ctx, s.ID, records.Record{"status": "BOGUS"}); !errors.As(err, &ve) {
		t.Errorf("Update bad status: got %v, want *ValidationError", err)
	}
	if _, err := repo.UpdateInOrg(ctx, "org_1", s.ID, records.Record{"first_name": ""}); !errors.As(err, &ve) {
		t.Errorf("UpdateInOrg blank name: got %v, want *ValidationError", err)
	}
	if _, err := repo.UpdateInOrg(ctx, "org_1", s.ID, records.Record{"created_at": "yesterday"}); !errors.As(err, &ve) {
		t.Errorf("UpdateInOrg created_at: got %v, want *ValidationError", err)
	}

	all, err := repo.GetAll(ctx, "org_1")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("records: got %d, want 1", len(all))
	}
	if all[0].Status != models.StudentActive || all[0].FirstName != "Ann" {
		t.Errorf("record: got %q %q, want Ann ACTIVE", all[0].FirstName, all[0].Status)
	}
}

func TestRepo_UpdateIgnoresOtherDiscriminator(t *testing.T) {
	ctx := context.Background()
	rs := records.NewMemory(zap.NewNop())
	teacher := testutil.NewFixtures(t, rs).Insert(ctx, "users", records.Record{
		"organization_id": "org_1",
		"role":            "TEACHER",
		"first_name":      "Tom",
		"status":          "ACTIVE",
	})

	if _, err := newStudents(rs).Update(ctx, teacher.ID(), records.Record{"first_name": "Eve"}); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("Update teacher via students: got %v, want ErrNotFound", err)
	}
	stored, err := rs.Get(ctx, "users", teacher.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored["first_name"] != "Tom" {
		t.Errorf("first_name: got %v, want Tom", stored["first_name"])
	}
}
