// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Every scoped collection is read through an organization_id equality filter,
// so each one leads its indexes with that field.
var scoped = map[string][]mongo.IndexModel{
	"users": {
		orgIndex("users"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_users_org_role_status"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "role", Value: 1}, {Key: "group_ids", Value: 1}},
			Options: options.Index().SetName("idx_users_org_role_groups"),
		},
	},
	"groups": {
		orgIndex("groups"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "faculty_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_org_faculty"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "department_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_org_department"),
		},
	},
	"faculties": {orgIndex("faculties")},
	"departments": {
		orgIndex("departments"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "faculty_id", Value: 1}},
			Options: options.Index().SetName("idx_departments_org_faculty"),
		},
	},
	"announcements": {
		orgIndex("announcements"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_announcements_org_status"),
		},
	},
	"lessons": {
		orgIndex("lessons"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "teacher_id", Value: 1}},
			Options: options.Index().SetName("idx_lessons_org_teacher"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_lessons_org_group"),
		},
	},
	"attendance": {
		orgIndex("attendance"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "lesson_id", Value: 1}},
			Options: options.Index().SetName("idx_attendance_org_lesson"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetName("idx_attendance_org_student"),
		},
	},
	"grades": {
		orgIndex("grades"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetName("idx_grades_org_student"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_grades_org_group"),
		},
	},
	"classrooms": {orgIndex("classrooms")},
	"courses": {
		orgIndex("courses"),
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "teacher_ids", Value: 1}},
			Options: options.Index().SetName("idx_courses_org_teachers"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "group_ids", Value: 1}},
			Options: options.Index().SetName("idx_courses_org_groups"),
		},
	},
}

func orgIndex(collection string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("idx_" + collection + "_org__id"),
	}
}

// Collections lists the collections EnsureAll manages, organizations included.
func Collections() []string {
	out := []string{"organizations"}
	for name := range scoped {
		out = append(out, name)
	}
	return out
}

/*
EnsureAll is called at startup. Each collection set is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	for name, models := range scoped {
		if err := ensureIndexSet(ctx, db.Collection(name), models); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_orgs_name__id"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                       */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// ensureIndexSet creates missing indexes, reuses matching ones and replaces
// an index whose keys match but whose name or uniqueness differ.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
		}

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index", fields...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed", append(fields, zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("index ensured", append(fields,
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
