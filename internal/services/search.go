package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
)

const productIndex = "products"

// SearchIndex indexe le catalogue dans Elasticsearch.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client) *SearchIndex {
	return &SearchIndex{client: client, index: productIndex}
}

type searchDocument struct {
	ID           string            `json:"id"`
	Slug         string            `json:"slug"`
	Names        map[string]string `json:"names"`
	Descriptions map[string]string `json:"descriptions"`
	Tags         []string          `json:"tags"`
	IsActive     bool              `json:"is_active"`
}

func documentFor(p models.Product) searchDocument {
	return searchDocument{
		ID:           p.ID.String(),
		Slug:         p.Slug,
		Names:        p.Names,
		Descriptions: p.Descriptions,
		Tags:         p.Tags,
		IsActive:     p.IsActive,
	}
}

// buildSearchQuery cherche dans toutes les langues, le nom pèse plus que la description.
func buildSearchQuery(q string, size int) map[string]interface{} {
	return map[string]interface{}{
		"size":    size,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     q,
						"fields":    []string{"names.*^3", "descriptions.*", "tags^2", "slug"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_active": true},
				},
			},
		},
	}
}

func (s *SearchIndex) IndexProduct(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(documentFor(p))
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index elastic: %s", res.String())
	}
	logger.L().Debugf("✅ Produit indexé : %s", p.ID)
	return nil
}

func (s *SearchIndex) DeleteProduct(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: s.index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("delete elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete elastic: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				ID string `json:"id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search retourne les identifiants des produits trouvés, par pertinence.
func (s *SearchIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(q, size)); err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{Index: []string{s.index}, Body: &buf}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("recherche elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("recherche elastic: %s", res.String())
	}
	return decodeSearchIDs(res.Body)
}

func decodeSearchIDs(body io.Reader) ([]string, error) {
	var r searchResponse
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage réponse elastic: %w", err)
	}
	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source.ID != "" {
			ids = append(ids, hit.Source.ID)
		}
	}
	return ids, nil
}
