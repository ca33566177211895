package elastic

import (
	"context"
	"encoding/json"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/hackpoint/server/internal/domain/announcements"
)

var _ announcements.Store = (*AnnouncementStore)(nil)

type AnnouncementStore struct {
	client *es.Client
}

func NewAnnouncementStore(client *es.Client) *AnnouncementStore {
	return &AnnouncementStore{client: client}
}

type announcementDoc struct {
	EventID   int64     `json:"event_id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Important bool      `json:"important"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func buildAnnouncementDoc(ann announcements.Announcement) announcementDoc {
	return announcementDoc{
		EventID:   ann.EventID,
		AuthorID:  ann.AuthorID,
		Title:     ann.Title,
		Body:      ann.Body,
		Important: ann.Important,
		CreatedAt: ann.CreatedAt,
		UpdatedAt: ann.UpdatedAt,
	}
}

func (doc announcementDoc) toDomain(id string) announcements.Announcement {
	return announcements.Announcement{
		ID:        id,
		EventID:   doc.EventID,
		AuthorID:  doc.AuthorID,
		Title:     doc.Title,
		Body:      doc.Body,
		Important: doc.Important,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (s *AnnouncementStore) Index(ctx context.Context, ann announcements.Announcement) (string, error) {
	return indexDoc(ctx, s.client, IdxAnnouncements, "", buildAnnouncementDoc(ann))
}

func (s *AnnouncementStore) Get(ctx context.Context, id string) (announcements.Announcement, error) {
	var doc announcementDoc
	found, err := getDoc(ctx, s.client, IdxAnnouncements, id, &doc)
	if err != nil {
		return announcements.Announcement{}, err
	}
	if !found {
		return announcements.Announcement{}, announcements.ErrNotFound
	}
	return doc.toDomain(id), nil
}

// ListByEvent orders important announcements ahead of the rest, newest
// first within each tier.
func (s *AnnouncementStore) ListByEvent(ctx context.Context, eventID int64) ([]announcements.Announcement, error) {
	sort := []map[string]any{
		{"important": map[string]any{"order": "desc"}},
		{"created_at": map[string]any{"order": "desc"}},
	}
	out := []announcements.Announcement{}
	err := searchDocs(ctx, s.client, IdxAnnouncements, filterQuery(500, sort, term("event_id", eventID)),
		func(id string, source json.RawMessage) error {
			var doc announcementDoc
			if err := json.Unmarshal(source, &doc); err != nil {
				return err
			}
			out = append(out, doc.toDomain(id))
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AnnouncementStore) Update(ctx context.Context, ann announcements.Announcement) error {
	_, err := indexDoc(ctx, s.client, IdxAnnouncements, ann.ID, buildAnnouncementDoc(ann))
	return err
}

func (s *AnnouncementStore) Delete(ctx context.Context, id string) error {
	found, err := deleteDoc(ctx, s.client, IdxAnnouncements, id)
	if err != nil {
		return err
	}
	if !found {
		return announcements.ErrNotFound
	}
	return nil
}
