// internal/app/store/departments/departmentstore.go
package departmentstore

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "departments"

type Store struct {
	*scoped.Repo[models.Department]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Department](rs, scoped.Config{
		Collection: Collection,
		Defaults:   records.Record{"status": models.UnitActive},
	}, logger)}
}

// InFaculty lists departments referencing facultyID.
func (s *Store) InFaculty(ctx context.Context, orgID, facultyID string) ([]models.Department, error) {
	return s.Where(ctx, orgID, records.Filter{"faculty_id": facultyID})
}
