// Package records is the organization-scoped record store that every entity
// repository sits on. A Store persists schemaless documents in named
// collections and serves live, cancellable subscriptions filtered by equality.
//
// Tenant isolation is enforced by the query itself: QueryAll always sends the
// organization id to the backend as an equality filter, so a subscription never
// sees another organization's records. Nothing here post-filters results.
//
// Field names follow the collection conventions used by the rest of the app:
// "_id" holds the record id, "organization_id" the owning organization and
// "created_at" the creation time.
package records

import (
	"context"
	"errors"
	"time"
)

// Well-known field names.
const (
	FieldID             = "_id"
	FieldOrganizationID = "organization_id"
	FieldCreatedAt      = "created_at"
)

// ErrMissingOrganization is returned by QueryAll when called without an
// organization id. An unscoped live query would read across tenants.
var ErrMissingOrganization = errors.New("records: organization id is required")

// Record is one untyped document.
type Record map[string]any

// ID returns the record id, or "" when unset.
func (r Record) ID() string {
	s, _ := r[FieldID].(string)
	return s
}

// OrganizationID returns the owning organization id, or "" when unset.
func (r Record) OrganizationID() string {
	s, _ := r[FieldOrganizationID].(string)
	return s
}

// Filter is a set of equality conditions. A record matches when every field
// equals the given value; for array fields, when the array contains it.
type Filter map[string]any

// Store is the backend contract. Implementations: Mongo (change streams) and
// Memory (tests, local development).
type Store interface {
	// Find returns the records of collection that match f, once.
	Find(ctx context.Context, collection string, f Filter) ([]Record, error)

	// Watch opens a live query. The first snapshot is the current matching set;
	// every later add, modification or removal of a matching record produces
	// exactly one further snapshot. The subscription ends when ctx is done,
	// when Cancel is called, or with a terminal *SubscriptionError.
	Watch(ctx context.Context, collection string, f Filter) (*Subscription, error)

	// Get returns one record by id, or a *NotFoundError.
	Get(ctx context.Context, collection, id string) (Record, error)

	// Add persists rec, assigning "_id" and stamping "created_at" when absent,
	// and returns the stored record. An id already present in the collection
	// fails with a *ConflictError and leaves the existing record untouched.
	Add(ctx context.Context, collection string, rec Record) (Record, error)

	// Update merges fields into an existing record and returns the result.
	// Keys may be dotted paths ("modules.chat") to merge into nested maps.
	Update(ctx context.Context, collection, id string, fields Record) (Record, error)

	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// QueryAll opens a live query over collection scoped to orgID. Extra
// conditions narrow the result further; they can never replace the
// organization condition.
func QueryAll(ctx context.Context, s Store, collection, orgID string, extra Filter) (*Subscription, error) {
	f, err := Scope(orgID, extra)
	if err != nil {
		return nil, err
	}
	return s.Watch(ctx, collection, f)
}

// Scope builds an organization-scoped filter from orgID and extra.
func Scope(orgID string, extra Filter) (Filter, error) {
	if orgID == "" {
		return nil, ErrMissingOrganization
	}
	f := make(Filter, len(extra)+1)
	for k, v := range extra {
		f[k] = v
	}
	f[FieldOrganizationID] = orgID
	return f, nil
}

// stamp fills the generated fields of a record about to be added.
func stamp(rec Record, newID func() string, now time.Time) Record {
	out := Clone(rec)
	if out.ID() == "" {
		out[FieldID] = newID()
	}
	if isBlank(out[FieldCreatedAt]) {
		out[FieldCreatedAt] = now
	}
	return out
}
