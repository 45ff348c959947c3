// internal/domain/models/academics.go
package models

import (
	"time"
)

type LessonStatus string

const (
	LessonPlanned   LessonStatus = "PLANNED"
	LessonScheduled LessonStatus = "SCHEDULED"
	LessonCancelled LessonStatus = "CANCELLED"
)

var weekdays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// Lesson is one recurring slot of the weekly schedule.
type Lesson struct {
	ID             string       `bson:"_id,omitempty" json:"id"`
	OrganizationID string       `bson:"organization_id" json:"organization_id"`
	GroupID        string       `bson:"group_id" json:"group_id"`
	CourseID       string       `bson:"course_id,omitempty" json:"course_id,omitempty"`
	TeacherID      string       `bson:"teacher_id,omitempty" json:"teacher_id,omitempty"`
	ClassroomID    string       `bson:"classroom_id,omitempty" json:"classroom_id,omitempty"`
	DayOfWeek      string       `bson:"day_of_week" json:"day_of_week"`
	StartTime      string       `bson:"start_time" json:"start_time"` // "09:00"
	EndTime        string       `bson:"end_time" json:"end_time"`
	Status         LessonStatus `bson:"status" json:"status"`
	CreatedAt      time.Time    `bson:"created_at,omitempty" json:"created_at"`
}

func (l Lesson) Problems() []string {
	var p []string
	p = require(p, "organization_id", l.OrganizationID)
	p = require(p, "group_id", l.GroupID)
	if !oneOf(l.DayOfWeek, weekdays...) {
		p = append(p, "day_of_week")
	}
	if !validClock(l.StartTime) {
		p = append(p, "start_time")
	}
	if !validClock(l.EndTime) || (validClock(l.StartTime) && l.EndTime <= l.StartTime) {
		p = append(p, "end_time")
	}
	if !oneOf(l.Status, LessonPlanned, LessonScheduled, LessonCancelled) {
		p = append(p, "status")
	}
	return p
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	AttendanceUnknown AttendanceStatus = "UNKNOWN"
)

// AttendanceRecord marks one student for one lesson on one date.
type AttendanceRecord struct {
	ID             string           `bson:"_id,omitempty" json:"id"`
	OrganizationID string           `bson:"organization_id" json:"organization_id"`
	LessonID       string           `bson:"lesson_id" json:"lesson_id"`
	StudentID      string           `bson:"student_id" json:"student_id"`
	Date           string           `bson:"date,omitempty" json:"date,omitempty"` // YYYY-MM-DD
	Status         AttendanceStatus `bson:"status" json:"status"`
	Note           string           `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt      time.Time        `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt      time.Time        `bson:"updated_at,omitempty" json:"updated_at"`
}

func (a AttendanceRecord) Problems() []string {
	var p []string
	p = require(p, "organization_id", a.OrganizationID)
	p = require(p, "lesson_id", a.LessonID)
	p = require(p, "student_id", a.StudentID)
	if !oneOf(a.Status, AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused, AttendanceUnknown) {
		p = append(p, "status")
	}
	return p
}

type GradeType string

const (
	GradeHomework      GradeType = "HOMEWORK"
	GradeQuiz          GradeType = "QUIZ"
	GradeExam          GradeType = "EXAM"
	GradeProject       GradeType = "PROJECT"
	GradeParticipation GradeType = "PARTICIPATION"
)

// GradeRecord is one assessment result. Score is nil until graded.
type GradeRecord struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	GroupID        string    `bson:"group_id" json:"group_id"`
	CourseID       string    `bson:"course_id,omitempty" json:"course_id,omitempty"`
	StudentID      string    `bson:"student_id" json:"student_id"`
	Type           GradeType `bson:"type" json:"type"`
	Date           string    `bson:"date" json:"date"`
	Score          *float64  `bson:"score,omitempty" json:"score,omitempty"` // 0..100
	Comment        string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt      time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

func (g GradeRecord) Problems() []string {
	var p []string
	p = require(p, "organization_id", g.OrganizationID)
	p = require(p, "student_id", g.StudentID)
	if !oneOf(g.Type, GradeHomework, GradeQuiz, GradeExam, GradeProject, GradeParticipation) {
		p = append(p, "type")
	}
	if g.Score != nil && (*g.Score < 0 || *g.Score > 100) {
		p = append(p, "score")
	}
	return p
}

type ClassroomType string

const (
	ClassroomRegular ClassroomType = "CLASSROOM"
	ClassroomLab     ClassroomType = "LAB"
	ClassroomOnline  ClassroomType = "ONLINE"
	ClassroomOther   ClassroomType = "OTHER"
)

type Classroom struct {
	ID             string        `bson:"_id,omitempty" json:"id"`
	OrganizationID string        `bson:"organization_id" json:"organization_id"`
	Name           string        `bson:"name" json:"name"`
	Type           ClassroomType `bson:"type" json:"type"`
	Status         string        `bson:"status" json:"status"` // ACTIVE or DISABLED
	Capacity       int           `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Note           string        `bson:"note,omitempty" json:"note,omitempty"`
	Color          string        `bson:"color,omitempty" json:"color,omitempty"`
	CreatedAt      time.Time     `bson:"created_at,omitempty" json:"created_at"`
}

func (c Classroom) Problems() []string {
	var p []string
	p = require(p, "organization_id", c.OrganizationID)
	p = require(p, "name", c.Name)
	if !oneOf(c.Type, ClassroomRegular, ClassroomLab, ClassroomOnline, ClassroomOther) {
		p = append(p, "type")
	}
	if !oneOf(c.Status, "ACTIVE", "DISABLED") {
		p = append(p, "status")
	}
	return p
}
