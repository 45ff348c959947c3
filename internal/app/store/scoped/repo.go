// Package scoped binds typed entities onto the record store. A Repo knows one
// collection and one entity shape; it is the only layer that turns untyped
// records into models and back.
//
// Reads are always organization-scoped through the store's equality filter.
// Writes require an organization id and stamp it onto the record. Update and
// Delete address records by id alone; UpdateInOrg and DeleteInOrg check
// ownership first for callers that want it.
package scoped

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Config describes one collection binding.
type Config struct {
	Collection string

	// Match is a fixed discriminator (e.g. role=STUDENT in the shared users
	// collection). It is stamped on every write and added to every query.
	Match records.Filter

	// Defaults fill fields that are blank on Add.
	Defaults records.Record
}

// Repo is a typed repository over one collection.
type Repo[T models.Entity] struct {
	rs  records.Store
	cfg Config
	log *zap.Logger
}

// New binds T to cfg.Collection on rs.
func New[T models.Entity](rs records.Store, cfg Config, logger *zap.Logger) *Repo[T] {
	return &Repo[T]{rs: rs, cfg: cfg, log: logger}
}

// Collection returns the bound collection name.
func (r *Repo[T]) Collection() string { return r.cfg.Collection }

// GetAll returns every record of the organization. An organization with no
// records yields an empty slice.
func (r *Repo[T]) GetAll(ctx context.Context, orgID string) ([]T, error) {
	return r.Where(ctx, orgID, nil)
}

// Where narrows GetAll with extra equality conditions.
func (r *Repo[T]) Where(ctx context.Context, orgID string, extra records.Filter) ([]T, error) {
	f, err := r.filter(orgID, extra)
	if err != nil {
		return nil, err
	}
	recs, err := r.rs.Find(ctx, r.cfg.Collection, f)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs), nil
}

// Watch opens a live, organization-scoped list. ctx bounds the lifetime of
// the subscription; callers must Cancel it on teardown.
func (r *Repo[T]) Watch(ctx context.Context, orgID string, extra records.Filter) (*Live[T], error) {
	f, err := r.filter(orgID, extra)
	if err != nil {
		return nil, err
	}
	sub, err := r.rs.Watch(ctx, r.cfg.Collection, f)
	if err != nil {
		return nil, err
	}
	return &Live[T]{sub: sub, repo: r}, nil
}

// GetByID returns the record only when it belongs to orgID. A record of
// another organization reads as not found.
func (r *Repo[T]) GetByID(ctx context.Context, orgID, id string) (T, error) {
	var zero T
	if orgID == "" {
		return zero, &ValidationError{Field: records.FieldOrganizationID, Reason: "is required"}
	}
	rec, err := r.rs.Get(ctx, r.cfg.Collection, id)
	if err != nil {
		return zero, err
	}
	if rec.OrganizationID() != orgID || !records.Matches(rec, r.cfg.Match) {
		return zero, &records.NotFoundError{Collection: r.cfg.Collection, ID: id}
	}
	return r.Decode(rec)
}

// Add stamps orgID, the discriminator and defaults onto v, checks it and
// persists it. Ids and created_at are always assigned by the store; any the
// caller supplies are dropped.
func (r *Repo[T]) Add(ctx context.Context, orgID string, v T) (T, error) {
	var zero T
	if orgID == "" {
		return zero, &ValidationError{Field: records.FieldOrganizationID, Reason: "is required"}
	}
	rec, err := encode(v)
	if err != nil {
		return zero, err
	}
	delete(rec, records.FieldID)
	delete(rec, records.FieldCreatedAt)
	rec[records.FieldOrganizationID] = orgID
	for k, val := range r.cfg.Match {
		rec[k] = val
	}
	for k, val := range r.cfg.Defaults {
		if blank(rec[k]) {
			rec[k] = val
		}
	}
	if err := r.check(rec); err != nil {
		return zero, err
	}

	stored, err := r.rs.Add(ctx, r.cfg.Collection, rec)
	if err != nil {
		return zero, err
	}
	return r.Decode(stored)
}

// Update merges fields into the record with the given id. The id, owning
// organization, creation time and discriminator cannot be changed this way.
// The merged result is checked before anything is written.
func (r *Repo[T]) Update(ctx context.Context, id string, fields records.Record) (T, error) {
	var zero T
	if err := r.guard(fields); err != nil {
		return zero, err
	}
	cur, err := r.current(ctx, "", id)
	if err != nil {
		return zero, err
	}
	return r.apply(ctx, cur, fields)
}

// Delete removes the record with the given id. Deleting an absent id succeeds.
func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	return r.rs.Delete(ctx, r.cfg.Collection, id)
}

// Save merges v into the existing record when orgID owns v's id. Otherwise,
// including when v names a record of another organization, v is added as a
// new record under a fresh id.
func (r *Repo[T]) Save(ctx context.Context, orgID string, v T) (T, error) {
	var zero T
	if orgID == "" {
		return zero, &ValidationError{Field: records.FieldOrganizationID, Reason: "is required"}
	}
	rec, err := encode(v)
	if err != nil {
		return zero, err
	}
	id, _ := rec[records.FieldID].(string)
	if id == "" {
		return r.Add(ctx, orgID, v)
	}

	cur, err := r.current(ctx, orgID, id)
	if errors.Is(err, records.ErrNotFound) {
		return r.Add(ctx, orgID, v)
	}
	if err != nil {
		return zero, err
	}
	fields := make(records.Record, len(rec))
	for k, val := range rec {
		if r.fixed(k) {
			continue
		}
		fields[k] = val
	}
	return r.apply(ctx, cur, fields)
}

// UpdateInOrg is Update restricted to records owned by orgID.
func (r *Repo[T]) UpdateInOrg(ctx context.Context, orgID, id string, fields records.Record) (T, error) {
	var zero T
	if orgID == "" {
		return zero, &ValidationError{Field: records.FieldOrganizationID, Reason: "is required"}
	}
	if err := r.guard(fields); err != nil {
		return zero, err
	}
	cur, err := r.current(ctx, orgID, id)
	if err != nil {
		return zero, err
	}
	return r.apply(ctx, cur, fields)
}

// DeleteInOrg is Delete restricted to records owned by orgID. A record that
// is absent or owned by another organization is left alone without error.
func (r *Repo[T]) DeleteInOrg(ctx context.Context, orgID, id string) error {
	if _, err := r.GetByID(ctx, orgID, id); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil
		}
		return err
	}
	return r.Delete(ctx, id)
}

// current fetches the raw record behind id. A record outside the
// discriminator, or outside orgID when orgID is set, reads as not found.
func (r *Repo[T]) current(ctx context.Context, orgID, id string) (records.Record, error) {
	rec, err := r.rs.Get(ctx, r.cfg.Collection, id)
	if err != nil {
		return nil, err
	}
	if (orgID != "" && rec.OrganizationID() != orgID) || !records.Matches(rec, r.cfg.Match) {
		return nil, &records.NotFoundError{Collection: r.cfg.Collection, ID: id}
	}
	return rec, nil
}

func (r *Repo[T]) apply(ctx context.Context, cur, fields records.Record) (T, error) {
	var zero T
	if err := r.check(records.Merge(cur, fields)); err != nil {
		return zero, err
	}
	rec, err := r.rs.Update(ctx, r.cfg.Collection, cur.ID(), fields)
	if err != nil {
		return zero, err
	}
	return r.Decode(rec)
}

// check reports whether rec would decode into a valid T.
func (r *Repo[T]) check(rec records.Record) error {
	v, err := decode[T](rec)
	if err != nil {
		return &ValidationError{Field: "record", Reason: err.Error()}
	}
	if p := v.Problems(); len(p) > 0 {
		return &ValidationError{Field: strings.Join(p, ","), Reason: "missing or invalid"}
	}
	return nil
}

// Decode turns a stored record into T, listing the offending fields when the
// record does not describe a valid T.
func (r *Repo[T]) Decode(rec records.Record) (T, error) {
	v, err := decode[T](rec)
	if err != nil {
		return v, &DecodeError{Collection: r.cfg.Collection, ID: rec.ID(), Err: err}
	}
	var fields []string
	if rec.ID() == "" {
		fields = append(fields, records.FieldID)
	}
	fields = append(fields, v.Problems()...)
	if len(fields) > 0 {
		return v, &DecodeError{Collection: r.cfg.Collection, ID: rec.ID(), Fields: fields}
	}
	return v, nil
}

// decodeAll decodes a snapshot, dropping and logging records that fail.
func (r *Repo[T]) decodeAll(recs []records.Record) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := r.Decode(rec)
		if err != nil {
			r.log.Warn("skipping undecodable record",
				zap.String("collection", r.cfg.Collection),
				zap.String("id", rec.ID()),
				zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r *Repo[T]) filter(orgID string, extra records.Filter) (records.Filter, error) {
	if orgID == "" {
		return nil, &ValidationError{Field: records.FieldOrganizationID, Reason: "is required"}
	}
	merged := make(records.Filter, len(extra)+len(r.cfg.Match))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range r.cfg.Match {
		merged[k] = v
	}
	return records.Scope(orgID, merged)
}

func (r *Repo[T]) guard(fields records.Record) error {
	for k := range fields {
		if k == "" || strings.HasPrefix(k, "$") {
			return &ValidationError{Field: k, Reason: "is not a field name"}
		}
		if r.fixed(k) {
			return &ValidationError{Field: k, Reason: "cannot be changed"}
		}
	}
	return nil
}

// fixed reports whether key addresses a field that only the repository
// writes, either directly or through a dotted path beneath it.
func (r *Repo[T]) fixed(key string) bool {
	under := func(field string) bool {
		return key == field || strings.HasPrefix(key, field+".")
	}
	if under(records.FieldID) || under(records.FieldOrganizationID) || under(records.FieldCreatedAt) {
		return true
	}
	for k := range r.cfg.Match {
		if under(k) {
			return true
		}
	}
	return false
}

func encode(v any) (records.Record, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return records.Record(m), nil
}

func decode[T any](rec records.Record) (T, error) {
	var v T
	raw, err := bson.Marshal(bson.M(rec))
	if err != nil {
		return v, err
	}
	err = bson.Unmarshal(raw, &v)
	return v, err
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
