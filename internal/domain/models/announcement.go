// internal/domain/models/announcement.go
package models

import (
	"time"
)

type AnnouncementStatus string

const (
	AnnouncementDraft     AnnouncementStatus = "DRAFT"
	AnnouncementPublished AnnouncementStatus = "PUBLISHED"
	AnnouncementArchived  AnnouncementStatus = "ARCHIVED"
)

// AnnouncementTarget selects who sees an announcement. TargetID names the
// faculty, department or group for the narrower targets.
type AnnouncementTarget string

const (
	TargetAll        AnnouncementTarget = "ALL"
	TargetFaculty    AnnouncementTarget = "FACULTY"
	TargetDepartment AnnouncementTarget = "DEPARTMENT"
	TargetGroup      AnnouncementTarget = "GROUP"
)

type Announcement struct {
	ID             string             `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organization_id" json:"organization_id"`
	Title          string             `bson:"title" json:"title"`
	Content        string             `bson:"content" json:"content"`
	Status         AnnouncementStatus `bson:"status" json:"status"`
	AuthorID       string             `bson:"author_id,omitempty" json:"author_id,omitempty"`
	AuthorName     string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	TargetType     AnnouncementTarget `bson:"target_type" json:"target_type"`
	TargetID       string             `bson:"target_id,omitempty" json:"target_id,omitempty"`
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at"`
	PublishedAt    *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
}

func (a Announcement) Problems() []string {
	var p []string
	p = require(p, "organization_id", a.OrganizationID)
	p = require(p, "title", a.Title)
	if !oneOf(a.Status, AnnouncementDraft, AnnouncementPublished, AnnouncementArchived) {
		p = append(p, "status")
	}
	if !oneOf(a.TargetType, TargetAll, TargetFaculty, TargetDepartment, TargetGroup) {
		p = append(p, "target_type")
	}
	if a.TargetType != TargetAll && a.TargetType != "" && a.TargetID == "" {
		p = append(p, "target_id")
	}
	return p
}
