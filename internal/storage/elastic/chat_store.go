package elastic

import (
	"context"
	"encoding/json"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/hackpoint/server/internal/domain/chat"
)

var _ chat.Store = (*ChatStore)(nil)

type ChatStore struct {
	client *es.Client
}

func NewChatStore(client *es.Client) *ChatStore {
	return &ChatStore{client: client}
}

type questionDoc struct {
	EventID   int64      `json:"event_id"`
	AuthorID  int64      `json:"author_id"`
	Message   string     `json:"message"`
	Replies   []replyDoc `json:"replies"`
	CreatedAt time.Time  `json:"created_at"`
}

type replyDoc struct {
	AuthorID  int64     `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func buildQuestionDoc(q chat.Question) questionDoc {
	replies := make([]replyDoc, 0, len(q.Replies))
	for _, r := range q.Replies {
		replies = append(replies, replyDoc(r))
	}
	return questionDoc{
		EventID:   q.EventID,
		AuthorID:  q.AuthorID,
		Message:   q.Message,
		Replies:   replies,
		CreatedAt: q.CreatedAt,
	}
}

func (doc questionDoc) toDomain(id string) chat.Question {
	replies := make([]chat.Reply, 0, len(doc.Replies))
	for _, r := range doc.Replies {
		replies = append(replies, chat.Reply(r))
	}
	return chat.Question{
		ID:        id,
		EventID:   doc.EventID,
		AuthorID:  doc.AuthorID,
		Message:   doc.Message,
		Replies:   replies,
		CreatedAt: doc.CreatedAt,
	}
}

func (s *ChatStore) Index(ctx context.Context, q chat.Question) (string, error) {
	return indexDoc(ctx, s.client, IdxQuestions, "", buildQuestionDoc(q))
}

func (s *ChatStore) Get(ctx context.Context, id string) (chat.Question, error) {
	var doc questionDoc
	found, err := getDoc(ctx, s.client, IdxQuestions, id, &doc)
	if err != nil {
		return chat.Question{}, err
	}
	if !found {
		return chat.Question{}, chat.ErrNotFound
	}
	return doc.toDomain(id), nil
}

func (s *ChatStore) ListByEvent(ctx context.Context, eventID int64) ([]chat.Question, error) {
	sort := []map[string]any{{"created_at": map[string]any{"order": "desc"}}}
	out := []chat.Question{}
	err := searchDocs(ctx, s.client, IdxQuestions, filterQuery(500, sort, term("event_id", eventID)),
		func(id string, source json.RawMessage) error {
			var doc questionDoc
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

// AppendReply rewrites the whole document with the reply attached. The
// board is low-traffic; last-writer-wins on concurrent replies is
// accepted.
func (s *ChatStore) AppendReply(ctx context.Context, id string, reply chat.Reply) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	q.Replies = append(q.Replies, reply)
	_, err = indexDoc(ctx, s.client, IdxQuestions, id, buildQuestionDoc(q))
	return err
}
