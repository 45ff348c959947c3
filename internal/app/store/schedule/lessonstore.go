// internal/app/store/schedule/lessonstore.go
package lessonstore

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "lessons"

type Store struct {
	*scoped.Repo[models.Lesson]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Lesson](rs, scoped.Config{
		Collection: Collection,
		Defaults:   records.Record{"status": models.LessonPlanned},
	}, logger)}
}

func (s *Store) ForTeacher(ctx context.Context, orgID, teacherID string) ([]models.Lesson, error) {
	return s.Where(ctx, orgID, records.Filter{"teacher_id": teacherID})
}

func (s *Store) ForGroup(ctx context.Context, orgID, groupID string) ([]models.Lesson, error) {
	return s.Where(ctx, orgID, records.Filter{"group_id": groupID})
}

// WatchTeacher is a live ForTeacher.
func (s *Store) WatchTeacher(ctx context.Context, orgID, teacherID string) (*scoped.Live[models.Lesson], error) {
	return s.Watch(ctx, orgID, records.Filter{"teacher_id": teacherID})
}
