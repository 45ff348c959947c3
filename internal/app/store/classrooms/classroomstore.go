// internal/app/store/classrooms/classroomstore.go
package classroomstore

import (
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "classrooms"

type Store struct {
	*scoped.Repo[models.Classroom]
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{Repo: scoped.New[models.Classroom](rs, scoped.Config{
		Collection: Collection,
		Defaults: records.Record{
			"status": "ACTIVE",
			"type":   models.ClassroomRegular,
		},
	}, logger)}
}
