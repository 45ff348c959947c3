package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/eduflow/internal/app/system/indexes"
	"github.com/dalemusser/eduflow/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, collection string) map[string]bool {
	t.Helper()
	cur, err := db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", collection, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("Decode index failed: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_EveryCollectionLeadsWithOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	for _, coll := range indexes.Collections() {
		if coll == "organizations" {
			continue
		}
		names := indexNames(t, ctx, db, coll)
		if want := "idx_" + coll + "_org__id"; !names[want] {
			t.Errorf("%s: missing index %s (have %v)", coll, want, names)
		}
	}
}

func TestEnsureAll_SecondaryIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"organizations": {"idx_orgs_name__id"},
		"users":         {"idx_users_org_role_status", "idx_users_org_role_groups"},
		"groups":        {"idx_groups_org_faculty", "idx_groups_org_department"},
		"lessons":       {"idx_lessons_org_teacher", "idx_lessons_org_group"},
		"attendance":    {"idx_attendance_org_lesson", "idx_attendance_org_student"},
		"grades":        {"idx_grades_org_student", "idx_grades_org_group"},
		"announcements": {"idx_announcements_org_status"},
		"courses":       {"idx_courses_org_teachers", "idx_courses_org_groups"},
	}
	for coll, expected := range want {
		names := indexNames(t, ctx, db, coll)
		for _, name := range expected {
			if !names[name] {
				t.Errorf("%s: missing index %s", coll, name)
			}
		}
	}
}

func TestCollections(t *testing.T) {
	got := map[string]bool{}
	for _, c := range indexes.Collections() {
		got[c] = true
	}
	for _, c := range []string{"organizations", "users", "groups", "faculties", "departments",
		"lessons", "classrooms", "attendance", "grades", "announcements", "courses"} {
		if !got[c] {
			t.Errorf("Collections: missing %s", c)
		}
	}
}
