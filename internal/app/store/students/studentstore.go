// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

// Collection is shared with teachers; role tells them apart.
const Collection = "users"

type Store struct {
	*scoped.Repo[models.Student]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Student](rs, scoped.Config{
		Collection: Collection,
		Match:      records.Filter{"role": models.RoleStudent},
		Defaults:   records.Record{"status": models.StudentActive},
	}, logger)}
}

// InGroup lists the organization's students enrolled in groupID.
func (s *Store) InGroup(ctx context.Context, orgID, groupID string) ([]models.Student, error) {
	return s.Where(ctx, orgID, records.Filter{"group_ids": groupID})
}

// WithStatus lists the organization's students in the given status.
func (s *Store) WithStatus(ctx context.Context, orgID string, st models.StudentStatus) ([]models.Student, error) {
	return s.Where(ctx, orgID, records.Filter{"status": st})
}
