// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "groups"

type Store struct {
	*scoped.Repo[models.Group]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Group](rs, scoped.Config{
		Collection: Collection,
		Defaults:   records.Record{"status": models.UnitActive},
	}, logger)}
}

func (s *Store) InFaculty(ctx context.Context, orgID, facultyID string) ([]models.Group, error) {
	return s.Where(ctx, orgID, records.Filter{"faculty_id": facultyID})
}

func (s *Store) InDepartment(ctx context.Context, orgID, departmentID string) ([]models.Group, error) {
	return s.Where(ctx, orgID, records.Filter{"department_id": departmentID})
}
