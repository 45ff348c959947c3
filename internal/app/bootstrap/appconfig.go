// internal/app/bootstrap/appconfig.go
package bootstrap

import "github.com/dalemusser/eduflow/internal/app/system/modules"

// Record store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Module cache kinds.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). Framework-level settings such as
// ports, TLS and log level live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string; change streams need a replica set
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	StoreBackend string // "mongo" or "memory"

	// Module configuration cache
	ModuleCache       string // "memory" or "redis"
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ModuleCacheKey    string // base key, e.g. eduflow-modules-config
	ModuleCachePerOrg bool   // append ":<orgID>" to the base key

	DashboardPath    string   // where 403 module responses point
	WSOriginPatterns []string // accepted WebSocket origins for live lists
}

// CacheKeyFor returns the module cache key for orgID.
func (c AppConfig) CacheKeyFor(orgID string) string {
	if !c.ModuleCachePerOrg {
		return c.ModuleCacheKey
	}
	return modules.CacheKey(c.ModuleCacheKey, orgID)
}
