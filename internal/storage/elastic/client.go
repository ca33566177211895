// Package elastic is the document-store layer. It holds the volatile
// collections: submissions, announcements, certificates and the Q&A
// board. Relational IDs are embedded as plain integers; existence is
// checked upstream because the store enforces no referential integrity.
package elastic

import (
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/hackpoint/server/internal/config"
)

func Connect(cfg config.ElasticConfig) (*es.Client, error) {
	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping: %s", res.String())
	}
	return client, nil
}
