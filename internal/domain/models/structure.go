// internal/domain/models/structure.go
package models

import (
	"time"
)

// UnitStatus is shared by groups, faculties and departments.
type UnitStatus string

const (
	UnitActive   UnitStatus = "ACTIVE"
	UnitInactive UnitStatus = "INACTIVE"
	UnitArchived UnitStatus = "ARCHIVED"
)

// Faculty is the top level of the academic structure.
type Faculty struct {
	ID             string     `bson:"_id,omitempty" json:"id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	Name           string     `bson:"name" json:"name"`
	Code           string     `bson:"code" json:"code"`
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	Status         UnitStatus `bson:"status" json:"status"`
	HeadTeacherID  string     `bson:"head_teacher_id,omitempty" json:"head_teacher_id,omitempty"`
	CreatedAt      time.Time  `bson:"created_at,omitempty" json:"created_at"`
}

func (f Faculty) Problems() []string {
	var p []string
	p = require(p, "organization_id", f.OrganizationID)
	p = require(p, "name", f.Name)
	if !oneOf(f.Status, UnitActive, UnitInactive, UnitArchived) {
		p = append(p, "status")
	}
	return p
}

// Department belongs to a faculty by weak reference.
type Department struct {
	ID             string     `bson:"_id,omitempty" json:"id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	Name           string     `bson:"name" json:"name"`
	Code           string     `bson:"code" json:"code"`
	FacultyID      string     `bson:"faculty_id" json:"faculty_id"`
	Status         UnitStatus `bson:"status" json:"status"`
	HeadTeacherID  string     `bson:"head_teacher_id,omitempty" json:"head_teacher_id,omitempty"`
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt      time.Time  `bson:"created_at,omitempty" json:"created_at"`
}

func (d Department) Problems() []string {
	var p []string
	p = require(p, "organization_id", d.OrganizationID)
	p = require(p, "name", d.Name)
	if !oneOf(d.Status, UnitActive, UnitInactive, UnitArchived) {
		p = append(p, "status")
	}
	return p
}

// Group is a cohort (class). FacultyID and DepartmentID are weak references;
// deleting the faculty or department leaves the group untouched.
type Group struct {
	ID               string     `bson:"_id,omitempty" json:"id"`
	OrganizationID   string     `bson:"organization_id" json:"organization_id"`
	Name             string     `bson:"name" json:"name"`
	Code             string     `bson:"code" json:"code"`
	FacultyID        string     `bson:"faculty_id,omitempty" json:"faculty_id,omitempty"`
	DepartmentID     string     `bson:"department_id,omitempty" json:"department_id,omitempty"`
	Status           UnitStatus `bson:"status" json:"status"`
	Level            string     `bson:"level,omitempty" json:"level,omitempty"`
	PaymentType      string     `bson:"payment_type,omitempty" json:"payment_type,omitempty"` // FREE or PAID
	CuratorTeacherID string     `bson:"curator_teacher_id,omitempty" json:"curator_teacher_id,omitempty"`
	MaxStudents      int        `bson:"max_students" json:"max_students"`
	CreatedAt        time.Time  `bson:"created_at,omitempty" json:"created_at"`
}

func (g Group) Problems() []string {
	var p []string
	p = require(p, "organization_id", g.OrganizationID)
	p = require(p, "name", g.Name)
	if !oneOf(g.Status, UnitActive, UnitInactive, UnitArchived) {
		p = append(p, "status")
	}
	if !oneOf(g.PaymentType, "", "FREE", "PAID") {
		p = append(p, "payment_type")
	}
	if g.MaxStudents < 0 {
		p = append(p, "max_students")
	}
	return p
}
