// internal/app/store/teachers/teacherstore.go
package teacherstore

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

// Collection is shared with students; role tells them apart.
const Collection = "users"

type Store struct {
	*scoped.Repo[models.Teacher]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Teacher](rs, scoped.Config{
		Collection: Collection,
		Match:      records.Filter{"role": models.RoleTeacher},
		Defaults: records.Record{
			"status":     models.TeacherActive,
			"staff_role": models.StaffTeacher,
		},
	}, logger)}
}

// InGroup lists teachers assigned to groupID.
func (s *Store) InGroup(ctx context.Context, orgID, groupID string) ([]models.Teacher, error) {
	return s.Where(ctx, orgID, records.Filter{"group_ids": groupID})
}

// WithPermission lists teachers holding one permission, named by its bson
// field (e.g. "can_mark_attendance").
func (s *Store) WithPermission(ctx context.Context, orgID, permission string) ([]models.Teacher, error) {
	return s.Where(ctx, orgID, records.Filter{"permissions." + permission: true})
}
