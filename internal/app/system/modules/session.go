// internal/app/system/modules/session.go
package modules

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Session holds the Service of the currently selected organization. Switching
// closes the previous Service before the next one starts, so no snapshot of
// the old organization can land after the switch.
type Session struct {
	build func(orgID string) Config
	log   *zap.Logger

	mu     sync.Mutex
	cur    *Service
	cancel context.CancelFunc
}

// NewSession uses build to configure the Service of each selected organization.
func NewSession(build func(orgID string) Config, logger *zap.Logger) *Session {
	return &Session{build: build, log: logger}
}

// Switch selects orgID. An empty orgID selects no organization.
func (s *Session) Switch(ctx context.Context, orgID string) (*Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked(ctx)

	cfg := s.build(orgID)
	cfg.OrgID = orgID
	svc := New(cfg, s.log)
	sctx, cancel := context.WithCancel(context.Background())
	s.cur, s.cancel = svc, cancel
	return svc, svc.Start(sctx)
}

// Current returns the active Service, or nil before the first Switch.
func (s *Session) Current() *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Close tears down the active Service.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked(ctx)
}

func (s *Session) teardownLocked(ctx context.Context) {
	if s.cur == nil {
		return
	}
	if err := s.cur.Close(ctx); err != nil {
		s.log.Warn("module service close", zap.String("org_id", s.cur.OrgID()), zap.Error(err))
	}
	s.cancel()
	s.cur, s.cancel = nil, nil
}
