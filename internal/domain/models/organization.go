// internal/domain/models/organization.go
package models

import (
	"time"
)

// OrganizationType classifies a tenant.
type OrganizationType string

const (
	OrgTypeSchool         OrganizationType = "SCHOOL"
	OrgTypeUniversity     OrganizationType = "UNIVERSITY"
	OrgTypeLanguageSchool OrganizationType = "LANGUAGE_SCHOOL"
)

// OrganizationSettings holds tenant-level presentation settings.
type OrganizationSettings struct {
	Locale            string `bson:"locale,omitempty" json:"locale,omitempty"`
	Timezone          string `bson:"timezone,omitempty" json:"timezone,omitempty"`
	AcademicYearStart string `bson:"academic_year_start,omitempty" json:"academic_year_start,omitempty"`
}

// Organization is the tenant root. Every scoped entity points at one through
// organization_id. Modules holds the enabled feature areas; a missing key
// means the module is enabled.
type Organization struct {
	ID        string               `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Type      OrganizationType     `bson:"type" json:"type"`
	Settings  OrganizationSettings `bson:"settings" json:"settings"`
	Modules   map[string]bool      `bson:"modules,omitempty" json:"modules,omitempty"`
	CreatedAt time.Time            `bson:"created_at,omitempty" json:"created_at"`
}

func (o Organization) Problems() []string {
	var p []string
	if o.Name == "" {
		p = append(p, "name")
	}
	if !oneOf(o.Type, "", OrgTypeSchool, OrgTypeUniversity, OrgTypeLanguageSchool) {
		p = append(p, "type")
	}
	return p
}
