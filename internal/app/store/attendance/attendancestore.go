// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"time"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "attendance"

type Store struct {
	*scoped.Repo[models.AttendanceRecord]
	now func() time.Time
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{
		Repo: scoped.New[models.AttendanceRecord](rs, scoped.Config{
			Collection: Collection,
			Defaults:   records.Record{"status": models.AttendanceUnknown},
		}, logger),
		now: time.Now,
	}
}

func (s *Store) ForStudent(ctx context.Context, orgID, studentID string) ([]models.AttendanceRecord, error) {
	return s.Where(ctx, orgID, records.Filter{"student_id": studentID})
}

func (s *Store) ForLesson(ctx context.Context, orgID, lessonID string) ([]models.AttendanceRecord, error) {
	return s.Where(ctx, orgID, records.Filter{"lesson_id": lessonID})
}

// Save records a mark, creating it when a carries no known id and merging
// into the existing mark otherwise. updated_at is always refreshed.
func (s *Store) Save(ctx context.Context, orgID string, a models.AttendanceRecord) (models.AttendanceRecord, error) {
	a.UpdatedAt = s.now().UTC()
	return s.Repo.Save(ctx, orgID, a)
}
