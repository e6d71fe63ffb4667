package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"crew-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultPoolSize = 500

// SearchPool reads the candidate pool from a crew members index. Members with the job's skills
// rank first, but nobody active is filtered out for lacking them.
type SearchPool struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewSearchPool(client *elasticsearch.Client, index string, size int) *SearchPool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &SearchPool{client: client, index: index, size: size}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.CrewCandidate `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *SearchPool) buildQuery(job *models.Job) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"active": true}},
		},
	}
	if job != nil && len(job.Requirements.RequiredSkills) > 0 {
		boolQuery["should"] = []interface{}{
			map[string]interface{}{"terms": map[string]interface{}{"skills": job.Requirements.RequiredSkills}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"id": "asc"},
		},
	}
}

func (s *SearchPool) GetCandidatePool(ctx context.Context, job *models.Job) ([]models.CrewCandidate, error) {
	body, err := json.Marshal(s.buildQuery(job))
	if err != nil {
		return nil, fmt.Errorf("encode pool query: %w", err)
	}

	size := s.size
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	pool := make([]models.CrewCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		pool = append(pool, hit.Source)
	}
	return pool, nil
}
