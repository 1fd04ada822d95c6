package bcb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/indicators/internal/upstream"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestLatest(t *testing.T) {
	var gotPath, gotFormat string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("formato")
		_, _ = w.Write([]byte(`[{"data":"30/04/2024","valor":"10,65"}]`))
	})

	obs, err := c.Latest(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, obs.Value)
	assert.InDelta(t, 10.65, *obs.Value, 1e-9)
	assert.Equal(t, "30/04/2024", obs.Date)
	assert.Equal(t, fixedNow, obs.AsOf)
	assert.Equal(t, "/bcdata.sgs.11/dados/ultimos/1", gotPath)
	assert.Equal(t, "json", gotFormat)
}

func TestLatestUnparseableValue(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"data":"30/04/2024","valor":"n/d"}]`))
	})

	obs, err := c.Latest(context.Background(), 433)
	require.NoError(t, err)
	assert.Nil(t, obs.Value)
	assert.Equal(t, "30/04/2024", obs.Date)
}

func TestLatestEmptySeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	obs, err := c.Latest(context.Background(), 1)
	assert.Nil(t, obs)
	assert.True(t, errors.Is(err, upstream.ErrNoData))
}

func TestLatestUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Requisição inválida", http.StatusNotFound)
	})

	_, err := c.Latest(context.Background(), 999999)
	var se *upstream.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"10,65", ptr(10.65)},
		{"0,38", ptr(0.38)},
		{"5.1234", ptr(5.1234)},
		{" 7 ", ptr(7)},
		{"", nil},
		{"abc", nil},
		{"1,2,3", nil},
		{"NaN", nil},
		{"inf", nil},
	}

	for _, tt := range tests {
		got := ParseDecimal(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "ParseDecimal(%q)", tt.in)
			continue
		}
		require.NotNil(t, got, "ParseDecimal(%q)", tt.in)
		assert.InDelta(t, *tt.want, *got, 1e-9, "ParseDecimal(%q)", tt.in)
	}
}

func ptr(f float64) *float64 { return &f }
