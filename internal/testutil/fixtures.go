// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"

	orgstore "github.com/dalemusser/eduflow/internal/app/store/organizations"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	studentstore "github.com/dalemusser/eduflow/internal/app/store/students"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	rs records.Store
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance over the given record store.
func NewFixtures(t *testing.T, rs records.Store) *Fixtures {
	t.Helper()
	return &Fixtures{rs: rs, t: t}
}

// CreateOrganization creates a language school with the given id and name.
// It has no module map stored.
func (f *Fixtures) CreateOrganization(ctx context.Context, id, name string) models.Organization {
	f.t.Helper()
	org, err := orgstore.New(f.rs, zap.NewNop()).Create(ctx, models.Organization{
		ID:   id,
		Name: name,
		Type: models.OrgTypeLanguageSchool,
	})
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateStudent adds an active student to orgID.
func (f *Fixtures) CreateStudent(ctx context.Context, orgID, firstName string, groupIDs ...string) models.Student {
	f.t.Helper()
	s, err := studentstore.New(f.rs, zap.NewNop()).Add(ctx, orgID, models.Student{
		FirstName: firstName,
		LastName:  "Test",
		GroupIDs:  groupIDs,
	})
	if err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return s
}

// Insert writes rec as is, bypassing repository validation. Use it for
// records of other organizations or deliberately malformed documents.
func (f *Fixtures) Insert(ctx context.Context, collection string, rec records.Record) records.Record {
	f.t.Helper()
	stored, err := f.rs.Add(ctx, collection, rec)
	if err != nil {
		f.t.Fatalf("failed to insert into %s: %v", collection, err)
	}
	return stored
}
