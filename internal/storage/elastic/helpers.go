package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/hackpoint/server/internal/metrics"
)

// Writes refresh synchronously so a create is visible to the list that
// follows it in the same request flow.
const refreshPolicy = "true"

type indexResponse struct {
	ID string `json:"_id"`
}

type getResponse struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// indexDoc stores a document and returns the store-generated ID. When
// docID is non-empty the document is written in place.
func indexDoc(ctx context.Context, c *es.Client, index, docID string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	res, err := c.Index(index,
		bytes.NewReader(body),
		c.Index.WithContext(ctx),
		c.Index.WithDocumentID(docID),
		c.Index.WithRefresh(refreshPolicy),
	)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("index %s: %s", index, res.String())
	}

	var out indexResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}

	metrics.DocumentsIndexed.WithLabelValues(index).Inc()
	return out.ID, nil
}

// getDoc loads a document source by ID. found=false means absent.
func getDoc(ctx context.Context, c *es.Client, index, id string, out any) (bool, error) {
	res, err := c.Get(index, id, c.Get.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("get %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("get %s/%s: %s", index, id, res.String())
	}

	var wrapper getResponse
	if err := json.NewDecoder(res.Body).Decode(&wrapper); err != nil {
		return false, fmt.Errorf("decode get response: %w", err)
	}
	if !wrapper.Found {
		return false, nil
	}
	if err := json.Unmarshal(wrapper.Source, out); err != nil {
		return false, fmt.Errorf("unmarshal document: %w", err)
	}
	return true, nil
}

// searchDocs runs a query and hands each hit (ID plus source) to collect.
func searchDocs(ctx context.Context, c *es.Client, index string, query map[string]any, collect func(id string, source json.RawMessage) error) error {
	body, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(index),
		c.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search %s: %s", index, res.String())
	}

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	for _, hit := range out.Hits.Hits {
		if err := collect(hit.ID, hit.Source); err != nil {
			return err
		}
	}
	return nil
}

func deleteDoc(ctx context.Context, c *es.Client, index, id string) (bool, error) {
	res, err := c.Delete(index, id,
		c.Delete.WithContext(ctx),
		c.Delete.WithRefresh(refreshPolicy),
	)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("delete %s/%s: %s", index, id, res.String())
	}
	return true, nil
}

// filterQuery is the common bool-filter shape for exact-match lookups.
func filterQuery(size int, sort []map[string]any, terms ...map[string]any) map[string]any {
	query := map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{"filter": terms},
		},
	}
	if len(sort) > 0 {
		query["sort"] = sort
	}
	return query
}

func term(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}
