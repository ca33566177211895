package elastic

import (
	"context"
	"encoding/json"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/hackpoint/server/internal/domain/certificates"
)

var _ certificates.Store = (*CertificateStore)(nil)

type CertificateStore struct {
	client *es.Client
}

func NewCertificateStore(client *es.Client) *CertificateStore {
	return &CertificateStore{client: client}
}

type certificateDoc struct {
	EventID        int64     `json:"event_id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	CertificateURL string    `json:"certificate_url"`
	IssuedBy       int64     `json:"issued_by"`
	IssuedAt       time.Time `json:"issued_at"`
}

func (doc certificateDoc) toDomain(id string) certificates.Certificate {
	return certificates.Certificate{
		ID:             id,
		EventID:        doc.EventID,
		UserID:         doc.UserID,
		Title:          doc.Title,
		CertificateURL: doc.CertificateURL,
		IssuedBy:       doc.IssuedBy,
		IssuedAt:       doc.IssuedAt,
	}
}

func (s *CertificateStore) Index(ctx context.Context, cert certificates.Certificate) (string, error) {
	return indexDoc(ctx, s.client, IdxCertificates, "", certificateDoc{
		EventID:        cert.EventID,
		UserID:         cert.UserID,
		Title:          cert.Title,
		CertificateURL: cert.CertificateURL,
		IssuedBy:       cert.IssuedBy,
		IssuedAt:       cert.IssuedAt,
	})
}

func (s *CertificateStore) Find(ctx context.Context, eventID, userID int64) (*certificates.Certificate, error) {
	var match *certificates.Certificate
	err := searchDocs(ctx, s.client, IdxCertificates,
		filterQuery(1, nil, term("event_id", eventID), term("user_id", userID)),
		func(id string, source json.RawMessage) error {
			var doc certificateDoc
			if err := json.Unmarshal(source, &doc); err != nil {
				return err
			}
			cert := doc.toDomain(id)
			match = &cert
			return nil
		})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *CertificateStore) list(ctx context.Context, filter map[string]any) ([]certificates.Certificate, error) {
	sort := []map[string]any{{"issued_at": map[string]any{"order": "desc"}}}
	out := []certificates.Certificate{}
	err := searchDocs(ctx, s.client, IdxCertificates, filterQuery(1000, sort, filter),
		func(id string, source json.RawMessage) error {
			var doc certificateDoc
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

func (s *CertificateStore) ListByEvent(ctx context.Context, eventID int64) ([]certificates.Certificate, error) {
	return s.list(ctx, term("event_id", eventID))
}

func (s *CertificateStore) ListByUser(ctx context.Context, userID int64) ([]certificates.Certificate, error) {
	return s.list(ctx, term("user_id", userID))
}
