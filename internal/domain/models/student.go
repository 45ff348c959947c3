// internal/domain/models/student.go
package models

import (
	"time"
)

type StudentStatus string

const (
	StudentPending   StudentStatus = "PENDING"
	StudentActive    StudentStatus = "ACTIVE"
	StudentSuspended StudentStatus = "SUSPENDED"
	StudentArchived  StudentStatus = "ARCHIVED"
)

type AcademicStatus string

const (
	AcademicActive    AcademicStatus = "ACTIVE"
	AcademicPaused    AcademicStatus = "PAUSED"
	AcademicFrozen    AcademicStatus = "FROZEN"
	AcademicCompleted AcademicStatus = "COMPLETED"
	AcademicDropped   AcademicStatus = "DROPPED"
	AcademicGraduated AcademicStatus = "GRADUATED"
	AcademicExpelled  AcademicStatus = "EXPELLED"
)

type PaymentStatus string

const (
	PaymentOK      PaymentStatus = "OK"
	PaymentDue     PaymentStatus = "DUE"
	PaymentUnknown PaymentStatus = "UNKNOWN"
)

// Student is a learner enrolled in an organization. Stored in the users
// collection with role STUDENT.
type Student struct {
	ID             string         `bson:"_id,omitempty" json:"id"`
	OrganizationID string         `bson:"organization_id" json:"organization_id"`
	Role           Role           `bson:"role" json:"role"`
	FirstName      string         `bson:"first_name" json:"first_name"`
	LastName       string         `bson:"last_name" json:"last_name"`
	BirthDate      string         `bson:"birth_date,omitempty" json:"birth_date,omitempty"` // YYYY-MM-DD
	Gender         string         `bson:"gender,omitempty" json:"gender,omitempty"`
	Email          string         `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string         `bson:"phone,omitempty" json:"phone,omitempty"`
	Level          string         `bson:"level,omitempty" json:"level,omitempty"`
	Status         StudentStatus  `bson:"status" json:"status"`
	AcademicStatus AcademicStatus `bson:"academic_status,omitempty" json:"academic_status,omitempty"`
	GroupIDs       []string       `bson:"group_ids" json:"group_ids"`
	PaymentStatus  PaymentStatus  `bson:"payment_status,omitempty" json:"payment_status,omitempty"`
	PaidUntil      string         `bson:"paid_until,omitempty" json:"paid_until,omitempty"`
	Notes          string         `bson:"notes,omitempty" json:"notes,omitempty"`
	LastActivityAt *time.Time     `bson:"last_activity_at,omitempty" json:"last_activity_at,omitempty"`
	CreatedAt      time.Time      `bson:"created_at,omitempty" json:"created_at"`
}

func (s Student) Problems() []string {
	var p []string
	p = require(p, "organization_id", s.OrganizationID)
	p = require(p, "first_name", s.FirstName)
	if s.Role != RoleStudent {
		p = append(p, "role")
	}
	if !oneOf(s.Status, StudentPending, StudentActive, StudentSuspended, StudentArchived) {
		p = append(p, "status")
	}
	if !oneOf(s.AcademicStatus, "", AcademicActive, AcademicPaused, AcademicFrozen,
		AcademicCompleted, AcademicDropped, AcademicGraduated, AcademicExpelled) {
		p = append(p, "academic_status")
	}
	if !oneOf(s.PaymentStatus, "", PaymentOK, PaymentDue, PaymentUnknown) {
		p = append(p, "payment_status")
	}
	return p
}
