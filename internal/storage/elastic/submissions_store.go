package elastic

import (
	"context"
	"encoding/json"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/hackpoint/server/internal/domain/submissions"
)

var _ submissions.Store = (*SubmissionStore)(nil)

type SubmissionStore struct {
	client *es.Client
}

func NewSubmissionStore(client *es.Client) *SubmissionStore {
	return &SubmissionStore{client: client}
}

type submissionDoc struct {
	EventID     int64     `json:"event_id"`
	TeamID      int64     `json:"team_id"`
	Round       int       `json:"round"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Track       string    `json:"track,omitempty"`
	Links       []string  `json:"links,omitempty"`
	Docs        []string  `json:"docs,omitempty"`
	SubmittedBy int64     `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func buildSubmissionDoc(sub submissions.Submission) submissionDoc {
	return submissionDoc{
		EventID:     sub.EventID,
		TeamID:      sub.TeamID,
		Round:       sub.Round,
		Title:       sub.Title,
		Description: sub.Description,
		Track:       sub.Track,
		Links:       sub.Links,
		Docs:        sub.Docs,
		SubmittedBy: sub.SubmittedBy,
		SubmittedAt: sub.SubmittedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}

func (doc submissionDoc) toDomain(id string) submissions.Submission {
	return submissions.Submission{
		ID:          id,
		EventID:     doc.EventID,
		TeamID:      doc.TeamID,
		Round:       doc.Round,
		Title:       doc.Title,
		Description: doc.Description,
		Track:       doc.Track,
		Links:       doc.Links,
		Docs:        doc.Docs,
		SubmittedBy: doc.SubmittedBy,
		SubmittedAt: doc.SubmittedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (s *SubmissionStore) Index(ctx context.Context, sub submissions.Submission) (string, error) {
	return indexDoc(ctx, s.client, IdxSubmissions, "", buildSubmissionDoc(sub))
}

func (s *SubmissionStore) Get(ctx context.Context, id string) (submissions.Submission, error) {
	var doc submissionDoc
	found, err := getDoc(ctx, s.client, IdxSubmissions, id, &doc)
	if err != nil {
		return submissions.Submission{}, err
	}
	if !found {
		return submissions.Submission{}, submissions.ErrNotFound
	}
	return doc.toDomain(id), nil
}

func (s *SubmissionStore) FindByRound(ctx context.Context, eventID, teamID int64, round int) (*submissions.Submission, error) {
	var match *submissions.Submission
	err := searchDocs(ctx, s.client, IdxSubmissions,
		filterQuery(1, nil, term("event_id", eventID), term("team_id", teamID), term("round", round)),
		func(id string, source json.RawMessage) error {
			var doc submissionDoc
			if err := json.Unmarshal(source, &doc); err != nil {
				return err
			}
			sub := doc.toDomain(id)
			match = &sub
			return nil
		})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *SubmissionStore) Search(ctx context.Context, filters submissions.Filters) ([]submissions.Submission, error) {
	var terms []map[string]any
	if filters.EventID != 0 {
		terms = append(terms, term("event_id", filters.EventID))
	}
	if filters.TeamID != 0 {
		terms = append(terms, term("team_id", filters.TeamID))
	}

	sort := []map[string]any{{"submitted_at": map[string]any{"order": "desc"}}}
	out := []submissions.Submission{}
	err := searchDocs(ctx, s.client, IdxSubmissions, filterQuery(500, sort, terms...),
		func(id string, source json.RawMessage) error {
			var doc submissionDoc
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

func (s *SubmissionStore) Update(ctx context.Context, sub submissions.Submission) error {
	_, err := indexDoc(ctx, s.client, IdxSubmissions, sub.ID, buildSubmissionDoc(sub))
	return err
}

func (s *SubmissionStore) Delete(ctx context.Context, id string) error {
	found, err := deleteDoc(ctx, s.client, IdxSubmissions, id)
	if err != nil {
		return err
	}
	if !found {
		return submissions.ErrNotFound
	}
	return nil
}
