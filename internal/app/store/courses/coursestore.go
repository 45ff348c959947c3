// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "courses"

type Store struct {
	*scoped.Repo[models.Course]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Course](rs, scoped.Config{
		Collection: Collection,
		Defaults:   records.Record{"status": models.UnitActive},
	}, logger)}
}

func (s *Store) InDepartment(ctx context.Context, orgID, departmentID string) ([]models.Course, error) {
	return s.Where(ctx, orgID, records.Filter{"department_id": departmentID})
}

// ForGroup lists the courses taught to groupID.
func (s *Store) ForGroup(ctx context.Context, orgID, groupID string) ([]models.Course, error) {
	return s.Where(ctx, orgID, records.Filter{"group_ids": groupID})
}

// ForTeacher lists the courses teacherID teaches.
func (s *Store) ForTeacher(ctx context.Context, orgID, teacherID string) ([]models.Course, error) {
	return s.Where(ctx, orgID, records.Filter{"teacher_ids": teacherID})
}

// WatchForTeacher is a live ForTeacher.
func (s *Store) WatchForTeacher(ctx context.Context, orgID, teacherID string) (*scoped.Live[models.Course], error) {
	return s.Watch(ctx, orgID, records.Filter{"teacher_ids": teacherID})
}
