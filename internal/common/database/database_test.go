package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numshop/internal/common/config"
)

func TestNewRedis_PingAndClose(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	assert.NoError(t, client.Ping(context.Background()))
	assert.NotNil(t, client.GetClient())
	assert.NoError(t, client.Close())
}

func TestNewPostgres_OpensLazily(t *testing.T) {
	// sql.Open validates the DSN without dialing, so construction succeeds
	// even with no server; only Ping touches the network.
	client, err := NewPostgres(config.PostgresConfig{
		Host:           "localhost",
		Port:           5432,
		Database:       "numshop",
		User:           "numshop",
		SSLMode:        "disable",
		MaxConnections: 4,
		MaxIdle:        2,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.GetDB())
	assert.NoError(t, client.Close())
}

func TestNewElasticsearch_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	assert.NoError(t, client.Ping())
	assert.NotNil(t, client.GetClient())
}
