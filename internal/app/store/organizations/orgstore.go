// internal/app/store/organizations/orgstore.go
package orgstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const Collection = "organizations"

// ModulesField holds the organization's module map.
const ModulesField = "modules"

// Store reads and writes organization documents. Organizations are the tenant
// roots and are addressed by id alone.
type Store struct {
	rs  records.Store
	log *zap.Logger
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{rs: rs, log: logger}
}

// Create validates and persists org. A blank ID is generated by the store; an
// ID that is already taken fails with a *records.ConflictError and leaves the
// existing organization as it was.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	if p := org.Problems(); len(p) > 0 {
		return models.Organization{}, &scoped.ValidationError{Field: strings.Join(p, ","), Reason: "missing or invalid"}
	}
	if org.Type == "" {
		org.Type = models.OrgTypeLanguageSchool
	}
	rec, err := toRecord(org)
	if err != nil {
		return models.Organization{}, err
	}
	stored, err := s.rs.Add(ctx, Collection, rec)
	if err != nil {
		return models.Organization{}, err
	}
	return fromRecord(stored)
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Organization, error) {
	rec, err := s.rs.Get(ctx, Collection, id)
	if err != nil {
		return models.Organization{}, err
	}
	return fromRecord(rec)
}

// Rename changes the display name.
func (s *Store) Rename(ctx context.Context, id, name string) (models.Organization, error) {
	if name == "" {
		return models.Organization{}, &scoped.ValidationError{Field: "name", Reason: "is required"}
	}
	rec, err := s.rs.Update(ctx, Collection, id, records.Record{"name": name})
	if err != nil {
		return models.Organization{}, err
	}
	return fromRecord(rec)
}

// WatchOrganization follows the organization document. Each snapshot holds
// the document, or nothing while it does not exist.
func (s *Store) WatchOrganization(ctx context.Context, orgID string) (*records.Subscription, error) {
	return s.rs.Watch(ctx, Collection, records.Filter{records.FieldID: orgID})
}

// UpdateModules merges fields into the organization document. Keys are either
// "modules" (the whole map) or dotted "modules.<key>" paths. When the document
// does not exist yet it is created holding just the module map.
func (s *Store) UpdateModules(ctx context.Context, orgID string, fields map[string]any) error {
	for k := range fields {
		if k != ModulesField && !strings.HasPrefix(k, ModulesField+".") {
			return &scoped.ValidationError{Field: k, Reason: "is not a module field"}
		}
	}
	_, err := s.rs.Update(ctx, Collection, orgID, records.Record(fields))
	if !errors.Is(err, records.ErrNotFound) {
		return err
	}

	mods := map[string]any{}
	for k, v := range fields {
		if k == ModulesField {
			if m, ok := v.(map[string]bool); ok {
				for mk, mv := range m {
					mods[mk] = mv
				}
			} else if m, ok := v.(map[string]any); ok {
				for mk, mv := range m {
					mods[mk] = mv
				}
			}
			continue
		}
		mods[strings.TrimPrefix(k, ModulesField+".")] = v
	}
	s.log.Info("creating organization document for module settings", zap.String("org_id", orgID))
	_, err = s.rs.Add(ctx, Collection, records.Record{
		records.FieldID: orgID,
		ModulesField:    mods,
	})
	if errors.Is(err, records.ErrConflict) {
		// Created concurrently; merge into it instead.
		_, err = s.rs.Update(ctx, Collection, orgID, records.Record(fields))
	}
	return err
}

func toRecord(org models.Organization) (records.Record, error) {
	raw, err := bson.Marshal(org)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return records.Record(m), nil
}

func fromRecord(rec records.Record) (models.Organization, error) {
	var org models.Organization
	raw, err := bson.Marshal(bson.M(rec))
	if err != nil {
		return org, err
	}
	if err := bson.Unmarshal(raw, &org); err != nil {
		return org, &scoped.DecodeError{Collection: Collection, ID: rec.ID(), Err: err}
	}
	return org, nil
}
