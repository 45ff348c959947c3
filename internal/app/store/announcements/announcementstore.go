// internal/app/store/announcements/announcementstore.go
package announcementstore

import (
	"context"
	"time"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

const Collection = "announcements"

type Store struct {
	*scoped.Repo[models.Announcement]
	now func() time.Time
}

func New(rs records.Store, logger *zap.Logger) *Store {
	return &Store{
		Repo: scoped.New[models.Announcement](rs, scoped.Config{
			Collection: Collection,
			Defaults: records.Record{
				"status":      models.AnnouncementDraft,
				"target_type": models.TargetAll,
			},
		}, logger),
		now: time.Now,
	}
}

// Add sanitizes the content and stores a new announcement.
func (s *Store) Add(ctx context.Context, orgID string, a models.Announcement) (models.Announcement, error) {
	a.Content = htmlsanitize.Content(a.Content)
	return s.Repo.Add(ctx, orgID, a)
}

func (s *Store) Save(ctx context.Context, orgID string, a models.Announcement) (models.Announcement, error) {
	a.Content = htmlsanitize.Content(a.Content)
	return s.Repo.Save(ctx, orgID, a)
}

func (s *Store) Update(ctx context.Context, id string, fields records.Record) (models.Announcement, error) {
	return s.Repo.Update(ctx, id, cleanFields(fields))
}

func (s *Store) UpdateInOrg(ctx context.Context, orgID, id string, fields records.Record) (models.Announcement, error) {
	return s.Repo.UpdateInOrg(ctx, orgID, id, cleanFields(fields))
}

// cleanFields returns fields with a string content value sanitized.
func cleanFields(fields records.Record) records.Record {
	content, ok := fields["content"].(string)
	if !ok {
		return fields
	}
	out := make(records.Record, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	out["content"] = htmlsanitize.Content(content)
	return out
}

// Published lists the organization's published announcements.
func (s *Store) Published(ctx context.Context, orgID string) ([]models.Announcement, error) {
	return s.Where(ctx, orgID, records.Filter{"status": models.AnnouncementPublished})
}

// WatchPublished is a live Published.
func (s *Store) WatchPublished(ctx context.Context, orgID string) (*scoped.Live[models.Announcement], error) {
	return s.Watch(ctx, orgID, records.Filter{"status": models.AnnouncementPublished})
}

// Publish marks an announcement of orgID as published now.
func (s *Store) Publish(ctx context.Context, orgID, id string) (models.Announcement, error) {
	return s.UpdateInOrg(ctx, orgID, id, records.Record{
		"status":       models.AnnouncementPublished,
		"published_at": s.now().UTC(),
	})
}

// Archive takes an announcement of orgID out of circulation.
func (s *Store) Archive(ctx context.Context, orgID, id string) (models.Announcement, error) {
	return s.UpdateInOrg(ctx, orgID, id, records.Record{"status": models.AnnouncementArchived})
}
