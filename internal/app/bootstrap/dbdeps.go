// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	orgstore "github.com/dalemusser/eduflow/internal/app/store/organizations"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// The Mongo and Redis clients are nil when their backend is not configured.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client

	Records records.Store
	Orgs    *orgstore.Store
	Modules *modules.Registry
}
