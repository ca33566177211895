package elastic

import (
	"bytes"
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

const (
	IdxSubmissions   = "submissions_v1"
	IdxAnnouncements = "announcements_v1"
	IdxCertificates  = "certificates_v1"
	IdxQuestions     = "questions_v1"
)

// EnsureIndexes creates every index with a strict mapping so that a typo
// in a document field fails loudly instead of landing as a dynamic field.
func EnsureIndexes(ctx context.Context, c *es.Client) error {
	mapping := `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"event_id":{"type":"long"},"team_id":{"type":"long"},"round":{"type":"integer"},
		"title":{"type":"text"},"description":{"type":"text"},"track":{"type":"keyword"},
		"links":{"type":"keyword"},"docs":{"type":"keyword"},
		"submitted_by":{"type":"long"},"submitted_at":{"type":"date"},"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxSubmissions, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"event_id":{"type":"long"},"author_id":{"type":"long"},
		"title":{"type":"text"},"body":{"type":"text"},"important":{"type":"boolean"},
		"created_at":{"type":"date"},"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxAnnouncements, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"event_id":{"type":"long"},"user_id":{"type":"long"},
		"title":{"type":"text"},"certificate_url":{"type":"keyword"},
		"issued_by":{"type":"long"},"issued_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxCertificates, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"event_id":{"type":"long"},"author_id":{"type":"long"},"message":{"type":"text"},
		"created_at":{"type":"date"},
		"replies":{"type":"object","properties":{
			"author_id":{"type":"long"},"message":{"type":"text"},"created_at":{"type":"date"}
		}}
	}}}`
	return ensure(ctx, c, IdxQuestions, mapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := c.Indices.Create(index,
		c.Indices.Create.WithBody(bytes.NewBufferString(body)),
		c.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}
	return nil
}
