// internal/app/store/grades/gradestore.go
package gradestore

import (
	"context"
	"time"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "grades"

type Store struct {
	*scoped.Repo[models.GradeRecord]
	now func() time.Time
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{
		Repo: scoped.New[models.GradeRecord](rs, scoped.Config{Collection: Collection}, logger),
		now:  time.Now,
	}
}

func (s *Store) ForStudent(ctx context.Context, orgID, studentID string) ([]models.GradeRecord, error) {
	return s.Where(ctx, orgID, records.Filter{"student_id": studentID})
}

func (s *Store) ForGroup(ctx context.Context, orgID, groupID string) ([]models.GradeRecord, error) {
	return s.Where(ctx, orgID, records.Filter{"group_id": groupID})
}

func (s *Store) ForCourse(ctx context.Context, orgID, courseID string) ([]models.GradeRecord, error) {
	return s.Where(ctx, orgID, records.Filter{"course_id": courseID})
}

// Save records a grade the way attendancestore.Save records a mark.
func (s *Store) Save(ctx context.Context, orgID string, g models.GradeRecord) (models.GradeRecord, error) {
	g.UpdatedAt = s.now().UTC()
	return s.Repo.Save(ctx, orgID, g)
}
