// internal/app/store/faculties/facultystore.go
package facultystore

import (
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "faculties"

type Store struct {
	*scoped.Repo[models.Faculty]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Faculty](rs, scoped.Config{
		Collection: Collection,
		Defaults:   records.Record{"status": models.UnitActive},
	}, logger)}
}
