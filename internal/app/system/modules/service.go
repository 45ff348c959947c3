// internal/app/system/modules/service.go
package modules

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// modulesField is the organization document field holding the module map.
const modulesField = "modules"

var (
	ErrUnknownKey = errors.New("modules: unknown key")
	ErrClosed     = errors.New("modules: service closed")
)

// Phase is where a Service stands in resolving its state.
type Phase int

const (
	// Uninitialized: nothing has been read yet.
	Uninitialized Phase = iota
	// Cached: state came from the local cache.
	Cached
	// Defaulted: the cache was empty and defaults apply.
	Defaulted
	// Synced: at least one remote snapshot has been seen.
	Synced
)

func (p Phase) String() string {
	switch p {
	case Cached:
		return "cached"
	case Defaulted:
		return "defaulted"
	case Synced:
		return "synced"
	}
	return "uninitialized"
}

// Remote is the source of truth for module maps, normally the organization
// store.
type Remote interface {
	WatchOrganization(ctx context.Context, orgID string) (*records.Subscription, error)
	UpdateModules(ctx context.Context, orgID string, fields map[string]any) error
}

// Config configures one Service.
type Config struct {
	// OrgID is the organization whose modules are served. Empty means no
	// organization has been selected; the Service then never goes remote.
	OrgID string

	// CacheKey defaults to CacheKey(StorageKey, OrgID).
	CacheKey string

	Cache  Cache
	Remote Remote
}

// Service holds the module state of one organization.
//
// Reads never block on I/O. Mutations apply locally and to the cache at once
// and are then written to the remote in order by a single writer; a failed
// remote write is logged and the local state is kept until the next remote
// snapshot replaces it.
type Service struct {
	orgID    string
	cacheKey string
	cache    Cache
	remote   Remote
	log      *zap.Logger

	// cacheMu orders state changes with their cache writes.
	cacheMu sync.Mutex

	mu       sync.RWMutex
	state    State
	phase    Phase
	loaded   bool
	started  bool
	closed   bool
	sub      *records.Subscription
	watchers map[chan State]struct{}
	queue    []write

	wake       chan struct{}
	stop       chan struct{}
	writerDone chan struct{}
}

type write struct {
	fields  map[string]any
	flushed chan struct{}
}

// New builds a Service. Call Start to load it.
func New(cfg Config, logger *zap.Logger) *Service {
	if cfg.Cache == nil {
		cfg.Cache = NewMemoryCache()
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = CacheKey(StorageKey, cfg.OrgID)
	}
	s := &Service{
		orgID:      cfg.OrgID,
		cacheKey:   cfg.CacheKey,
		cache:      cfg.Cache,
		remote:     cfg.Remote,
		log:        logger.With(zap.String("org_id", cfg.OrgID)),
		state:      Defaults(),
		watchers:   make(map[chan State]struct{}),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	if s.remoteEnabled() {
		go s.writeLoop()
	} else {
		close(s.writerDone)
	}
	return s
}

// Start reads the local cache and, when an organization is set, subscribes to
// the organization document. ctx bounds the subscription. A failed
// subscription is returned; the Service stays usable on its local state.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.loadLocal(ctx)

	if !s.remoteEnabled() {
		s.log.Debug("no organization selected; module state stays local")
		return nil
	}
	sub, err := s.remote.WatchOrganization(ctx, s.orgID)
	if err != nil {
		s.log.Warn("module subscription failed", zap.Error(err))
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return ErrClosed
	}
	s.sub = sub
	s.mu.Unlock()

	go s.follow(sub)
	return nil
}

// OrgID returns the organization served.
func (s *Service) OrgID() string { return s.orgID }

// Modules returns a fully populated copy of the current state.
func (s *Service) Modules() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Enabled reports one key of the current state.
func (s *Service) Enabled(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Enabled(key)
}

// IsLoaded is false until the cache has been read or a remote snapshot seen.
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Service) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Toggle flips one key.
func (s *Service) Toggle(ctx context.Context, key Key) (State, error) {
	if _, ok := ParseKey(string(key)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.mutate(ctx, func(st State) map[string]any {
		st[key] = !st.Enabled(key)
		return map[string]any{modulesField + "." + string(key): st[key]}
	})
}

// SetAll replaces the whole map in one write. Keys missing from next are
// enabled.
func (s *Service) SetAll(ctx context.Context, next State) (State, error) {
	return s.mutate(ctx, func(st State) map[string]any {
		for _, k := range All {
			st[k] = next.Enabled(k)
		}
		return map[string]any{modulesField: st.Map()}
	})
}

// Reset restores the defaults.
func (s *Service) Reset(ctx context.Context) (State, error) {
	return s.SetAll(ctx, Defaults())
}

// Changes delivers the state after every change, coalescing when the reader
// falls behind. The current state is delivered first once loaded. The
// returned func unsubscribes; Close also ends every channel.
func (s *Service) Changes() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.watchers[ch] = struct{}{}
	if s.loaded {
		ch <- s.state.Clone()
	}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}
}

// Flush waits until every remote write queued so far has been attempted.
func (s *Service) Flush(ctx context.Context) error {
	if !s.remoteEnabled() {
		return nil
	}
	done := make(chan struct{})
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done = s.writerDone
	} else {
		s.enqueueLocked(write{flushed: done})
		s.mu.Unlock()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the subscription, ends Changes channels and waits for queued
// remote writes to be attempted.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	first := !s.closed
	var sub *records.Subscription
	if first {
		s.closed = true
		sub, s.sub = s.sub, nil
		for ch := range s.watchers {
			close(ch)
		}
		s.watchers = nil
	}
	s.mu.Unlock()

	if first {
		if sub != nil {
			sub.Cancel()
		}
		close(s.stop)
	}
	select {
	case <-s.writerDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) remoteEnabled() bool {
	return s.orgID != "" && s.remote != nil
}

func (s *Service) loadLocal(ctx context.Context) {
	if s.Phase() != Uninitialized {
		return
	}
	cached, ok, err := s.cache.Get(ctx, s.cacheKey)
	if err != nil {
		s.log.Warn("module cache read failed", zap.String("key", s.cacheKey), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Uninitialized {
		return
	}
	if ok {
		s.state = cached.Clone()
		s.phase = Cached
	} else {
		s.phase = Defaulted
	}
	s.loaded = true
	s.notifyLocked()
}

func (s *Service) mutate(ctx context.Context, change func(State) map[string]any) (State, error) {
	s.loadLocal(ctx)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	next := s.state.Clone()
	fields := change(next)
	s.state = next
	if s.remoteEnabled() {
		s.enqueueLocked(write{fields: fields})
	}
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.cache.Set(ctx, s.cacheKey, next); err != nil {
		s.log.Warn("module cache write failed", zap.String("key", s.cacheKey), zap.Error(err))
	}
	return next.Clone(), nil
}

func (s *Service) follow(sub *records.Subscription) {
	for snap := range sub.C() {
		s.apply(snap)
	}
	if err := sub.Err(); err != nil && !errors.Is(err, records.ErrSubscriptionClosed) {
		s.log.Warn("module subscription ended", zap.Error(err))
	}
}

// apply takes one remote snapshot. A missing document or one without a
// module map leaves the values as they are.
func (s *Service) apply(snap records.Snapshot) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var next State
	if len(snap.Records) > 0 {
		if st, ok := Normalize(snap.Records[0][modulesField]); ok {
			next = st
			s.state = st
		}
	}
	s.phase = Synced
	s.loaded = true
	s.notifyLocked()
	s.mu.Unlock()

	if next == nil {
		return
	}
	if err := s.cache.Set(context.Background(), s.cacheKey, next); err != nil {
		s.log.Warn("module cache write failed", zap.String("key", s.cacheKey), zap.Error(err))
	}
}

func (s *Service) notifyLocked() {
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s.state.Clone()
	}
}

func (s *Service) enqueueLocked(w write) {
	s.queue = append(s.queue, w)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Service) writeLoop() {
	defer close(s.writerDone)
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		closing := s.closed
		s.mu.Unlock()

		for _, w := range batch {
			s.send(w)
		}
		if len(batch) > 0 {
			continue
		}
		if closing {
			return
		}
		select {
		case <-s.wake:
		case <-s.stop:
		}
	}
}

func (s *Service) send(w write) {
	if w.fields != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
		err := s.remote.UpdateModules(ctx, s.orgID, w.fields)
		cancel()
		if err != nil {
			s.log.Warn("module remote write failed; keeping local state",
				zap.Any("fields", w.fields), zap.Error(err))
		}
	}
	if w.flushed != nil {
		close(w.flushed)
	}
}
