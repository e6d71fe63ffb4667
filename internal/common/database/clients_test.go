package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"crew-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type esTransport struct {
	status int
	calls  int
}

func (e *esTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	e.calls++
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: e.status,
		Status:     http.StatusText(e.status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
		Request:    req,
	}, nil
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedis(context.Background(), config.RedisConfig{Address: mr.Addr(), PoolSize: 4, Timeout: 500})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, 4, c.Client.Options().PoolSize)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Address: addr})
	assert.ErrorContains(t, err, "redis ping failed")
}

func TestNewElasticsearch(t *testing.T) {
	transport := &esTransport{status: http.StatusOK}

	c, err := NewElasticsearch(context.Background(), config.ElasticsearchConfig{URL: "http://es:9200"}, transport)
	require.NoError(t, err)
	assert.NotNil(t, c.Client)
	assert.Equal(t, 1, transport.calls)
}

func TestNewElasticsearch_PingError(t *testing.T) {
	transport := &esTransport{status: http.StatusUnauthorized}

	_, err := NewElasticsearch(context.Background(), config.ElasticsearchConfig{Addresses: []string{"http://es:9200"}}, transport)
	assert.ErrorContains(t, err, "elasticsearch ping error")
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckAll(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectPing().WillReturnError(errors.New("connection reset"))

	failed := CheckAll(context.Background(), map[string]Pinger{
		"postgres": &PostgresClient{DB: db},
		"zeebe":    pingFunc(func(context.Context) error { return nil }),
	})

	require.Len(t, failed, 1)
	assert.Contains(t, failed["postgres"], "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAll_AllHealthy(t *testing.T) {
	failed := CheckAll(context.Background(), map[string]Pinger{
		"zeebe": pingFunc(func(context.Context) error { return nil }),
	})
	assert.Empty(t, failed)
}
