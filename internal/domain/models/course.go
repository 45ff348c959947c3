// internal/domain/models/course.go
package models

import (
	"time"
)

// Course is a subject taught to groups, such as "English A1". FacultyID,
// DepartmentID, TeacherIDs and GroupIDs are weak references.
type Course struct {
	ID             string     `bson:"_id,omitempty" json:"id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	Name           string     `bson:"name" json:"name"`
	Code           string     `bson:"code" json:"code"`
	FacultyID      string     `bson:"faculty_id,omitempty" json:"faculty_id,omitempty"`
	DepartmentID   string     `bson:"department_id,omitempty" json:"department_id,omitempty"`
	Status         UnitStatus `bson:"status" json:"status"`
	Level          string     `bson:"level,omitempty" json:"level,omitempty"` // A1..C2 or a study year
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	TeacherIDs     []string   `bson:"teacher_ids" json:"teacher_ids"`
	GroupIDs       []string   `bson:"group_ids" json:"group_ids"`
	CreatedAt      time.Time  `bson:"created_at,omitempty" json:"created_at"`
}

func (c Course) Problems() []string {
	var p []string
	p = require(p, "organization_id", c.OrganizationID)
	p = require(p, "name", c.Name)
	p = require(p, "code", c.Code)
	if !oneOf(c.Status, UnitActive, UnitInactive, UnitArchived) {
		p = append(p, "status")
	}
	return p
}
