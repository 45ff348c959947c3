// internal/domain/models/teacher.go
package models

import (
	"time"
)

type TeacherStatus string

const (
	TeacherInvited   TeacherStatus = "INVITED"
	TeacherActive    TeacherStatus = "ACTIVE"
	TeacherSuspended TeacherStatus = "SUSPENDED"
	TeacherArchived  TeacherStatus = "ARCHIVED"
)

// StaffRole is the teacher's position inside the organization.
type StaffRole string

const (
	StaffTeacher StaffRole = "TEACHER"
	StaffCurator StaffRole = "CURATOR"
	StaffAdmin   StaffRole = "ADMIN"
)

// TeacherPermissions is a fixed set of capabilities granted per teacher.
type TeacherPermissions struct {
	CanCreateGroups      bool `bson:"can_create_groups" json:"can_create_groups"`
	CanManageStudents    bool `bson:"can_manage_students" json:"can_manage_students"`
	CanMarkAttendance    bool `bson:"can_mark_attendance" json:"can_mark_attendance"`
	CanGradeStudents     bool `bson:"can_grade_students" json:"can_grade_students"`
	CanSendAnnouncements bool `bson:"can_send_announcements" json:"can_send_announcements"`
	CanUseChat           bool `bson:"can_use_chat" json:"can_use_chat"`
	CanInviteStudents    bool `bson:"can_invite_students" json:"can_invite_students"`
}

// Teacher is a staff member. Stored in the users collection with role TEACHER.
type Teacher struct {
	ID             string             `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	Role           Role               `bson:"role" json:"role"`
	StaffRole      StaffRole          `bson:"staff_role,omitempty" json:"staff_role,omitempty"`
	FirstName      string             `bson:"first_name" json:"first_name"`
	LastName       string             `bson:"last_name" json:"last_name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialization string             `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Status         TeacherStatus      `bson:"status" json:"status"`
	Permissions    TeacherPermissions `bson:"permissions" json:"permissions"`
	GroupIDs       []string           `bson:"group_ids" json:"group_ids"`
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at"`
}

func (t Teacher) Problems() []string {
	var p []string
	p = require(p, "organization_id", t.OrganizationID)
	p = require(p, "first_name", t.FirstName)
	if t.Role != RoleTeacher {
		p = append(p, "role")
	}
	if !oneOf(t.Status, TeacherInvited, TeacherActive, TeacherSuspended, TeacherArchived) {
		p = append(p, "status")
	}
	if !oneOf(t.StaffRole, "", StaffTeacher, StaffCurator, StaffAdmin) {
		p = append(p, "staff_role")
	}
	return p
}
