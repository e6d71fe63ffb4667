package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"crew-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	status int
	body   string
	seen   *http.Request
	query  map[string]interface{}
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.seen = req
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(raw, &f.query)
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: f.status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
	}, nil
}

func newSearchPool(t *testing.T, transport *fakeTransport) *SearchPool {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return NewSearchPool(client, "crew_members", 0)
}

func TestSearchPool_GetCandidatePool(t *testing.T) {
	transport := &fakeTransport{status: http.StatusOK, body: `{
	  "hits": {"hits": [
	    {"_source": {"id": "c-1", "name": "Ana", "skills": ["carpentry"], "performanceRating": 4.0,
	                 "homeLocation": {"latitude": 40.7, "longitude": -74.0}}},
	    {"_source": {"id": "c-2", "name": "Ben", "skills": []}}
	  ]}
	}`}
	pool := newSearchPool(t, transport)

	job := &models.Job{ID: "job-1", Requirements: models.JobRequirements{RequiredSkills: []string{"carpentry"}}}
	got, err := pool.GetCandidatePool(context.Background(), job)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "c-1", got[0].ID)
	assert.True(t, got[0].HomeLocation.HasCoordinates())
	assert.Nil(t, got[1].PerformanceRating)

	assert.Equal(t, "/crew_members/_search", transport.seen.URL.Path)
	assert.Equal(t, "500", transport.seen.URL.Query().Get("size"))
	boolQuery := transport.query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, boolQuery, "filter")
	assert.Contains(t, boolQuery, "should")
}

func TestSearchPool_NoSkillsOmitsBoost(t *testing.T) {
	transport := &fakeTransport{status: http.StatusOK, body: `{"hits":{"hits":[]}}`}

	got, err := newSearchPool(t, transport).GetCandidatePool(context.Background(), &models.Job{ID: "job-1"})
	require.NoError(t, err)
	assert.Empty(t, got)

	boolQuery := transport.query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.NotContains(t, boolQuery, "should")
}

func TestSearchPool_ErrorStatus(t *testing.T) {
	transport := &fakeTransport{status: http.StatusInternalServerError, body: `{"error":"unavailable"}`}

	_, err := newSearchPool(t, transport).GetCandidatePool(context.Background(), &models.Job{ID: "job-1"})
	assert.ErrorContains(t, err, "500")
}
