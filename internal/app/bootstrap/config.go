// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for EduFlow.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, module_cache, etc.
//   - Environment variables: EDUFLOW_MONGO_URI, EDUFLOW_MODULE_CACHE, etc.
//   - Command-line flags: --mongo_uri, --module_cache, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017/?replicaSet=rs0", Desc: "MongoDB connection URI (a replica set is required for live queries)"},
	{Name: "mongo_database", Default: "eduflow", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Record store
	{Name: "store_backend", Default: "mongo", Desc: "Record store backend: 'mongo' or 'memory'"},

	// Module configuration cache
	{Name: "module_cache", Default: "memory", Desc: "Module cache: 'memory' or 'redis'"},
	{Name: "redis_addr", Default: "", Desc: "Redis address (host:port) when module_cache is 'redis'"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "module_cache_key", Default: modules.StorageKey, Desc: "Base cache key for module maps"},
	{Name: "module_cache_per_org", Default: true, Desc: "Namespace the module cache key by organization id"},

	// HTTP surface
	{Name: "dashboard_path", Default: "/dashboard", Desc: "Where denied module requests are pointed"},
	{Name: "ws_origin_patterns", Default: "", Desc: "Comma-separated WebSocket origin patterns for live lists"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, EDUFLOW_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EDUFLOW", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		StoreBackend: strings.ToLower(appValues.String("store_backend")),

		ModuleCache:       strings.ToLower(appValues.String("module_cache")),
		RedisAddr:         appValues.String("redis_addr"),
		RedisPassword:     appValues.String("redis_password"),
		RedisDB:           appValues.Int("redis_db"),
		ModuleCacheKey:    appValues.String("module_cache_key"),
		ModuleCachePerOrg: appValues.Bool("module_cache_per_org"),

		DashboardPath:    appValues.String("dashboard_path"),
		WSOriginPatterns: splitList(appValues.String("ws_origin_patterns")),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment",
			zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// EduFlow validates the MongoDB URI when Mongo backs the record store and
// requires a Redis address when Redis backs the module cache.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case BackendMemory:
		if coreCfg != nil && coreCfg.Env == "prod" {
			logger.Warn("memory record store in prod; data is lost on restart")
		}
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendMemory, appCfg.StoreBackend)
	}

	switch appCfg.ModuleCache {
	case CacheMemory:
	case CacheRedis:
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("module_cache %q requires redis_addr", CacheRedis)
		}
	default:
		return fmt.Errorf("module_cache must be %q or %q, got %q", CacheMemory, CacheRedis, appCfg.ModuleCache)
	}

	if !strings.HasPrefix(appCfg.DashboardPath, "/") {
		return fmt.Errorf("dashboard_path must be an absolute path, got %q", appCfg.DashboardPath)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
