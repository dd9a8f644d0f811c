package ecogaz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecogw/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gas_day desc", r.URL.Query().Get("order_by"))
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	src := NewSource(srv.URL+"/exports/json?order_by=gas_day%20desc", nil)
	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, samplePayload, string(body))
	assert.Equal(t, "ecogaz", src.Name())
}

func TestSourceFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewSource(srv.URL, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrTransport)

	srv.Close()
	_, err = NewSource(srv.URL, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrTransport)
}
