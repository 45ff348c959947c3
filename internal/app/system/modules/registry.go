// internal/app/system/modules/registry.go
package modules

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry keeps one started Service per organization for a server that
// serves many tenants at once.
type Registry struct {
	cache  Cache
	remote Remote
	keyFor func(orgID string) string
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	services map[string]*Service
	closed   bool
}

// NewRegistry builds services sharing cache and remote. keyFor picks each
// organization's cache key; nil namespaces StorageKey by organization.
func NewRegistry(cache Cache, remote Remote, keyFor func(orgID string) string, logger *zap.Logger) *Registry {
	if keyFor == nil {
		keyFor = func(orgID string) string { return CacheKey(StorageKey, orgID) }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cache:    cache,
		remote:   remote,
		keyFor:   keyFor,
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
		services: make(map[string]*Service),
	}
}

// Get returns the organization's Service, starting it on first use.
func (r *Registry) Get(orgID string) (*Service, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if svc, ok := r.services[orgID]; ok {
		r.mu.Unlock()
		return svc, nil
	}
	svc := New(Config{
		OrgID:    orgID,
		CacheKey: r.keyFor(orgID),
		Cache:    r.cache,
		Remote:   r.remote,
	}, r.log)
	r.services[orgID] = svc
	r.mu.Unlock()

	if err := svc.Start(r.ctx); err != nil {
		r.log.Warn("serving cached module state", zap.String("org_id", orgID), zap.Error(err))
	}
	return svc, nil
}

// Len reports how many organizations have a Service.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.services)
}

// Close closes every Service in parallel.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	services := r.services
	r.services = make(map[string]*Service)
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		g.Go(func() error { return svc.Close(gctx) })
	}
	err := g.Wait()
	r.cancel()
	return err
}
