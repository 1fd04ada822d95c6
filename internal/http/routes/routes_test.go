package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/indicators/internal/bcb"
	"github.com/briangreenhill/indicators/internal/cache"
	"github.com/briangreenhill/indicators/internal/catalog"
	"github.com/briangreenhill/indicators/internal/indicator"
	"github.com/briangreenhill/indicators/internal/upstream"
	"github.com/briangreenhill/indicators/internal/worldbank"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeWorldBank struct{ err error }

func (f fakeWorldBank) Latest(ctx context.Context, countryCode, indicatorCode string) (*worldbank.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &worldbank.Observation{Value: 216422446, Year: "2023", AsOf: now}, nil
}

type fakeBCB struct{ err error }

func (f fakeBCB) Latest(ctx context.Context, seriesID int) (*bcb.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := 10.4
	return &bcb.Observation{Value: &v, Date: "30/04/2024", AsOf: now}, nil
}

func newTestServer(t *testing.T, wb indicator.WorldBankFetcher, sgs indicator.BCBFetcher, notFound int) (*Server, *catalog.Registry) {
	t.Helper()
	reg, err := catalog.Default()
	require.NoError(t, err)

	clock := func() time.Time { return now }
	res := indicator.NewResolver(cache.NewMemory(cache.WithClock(clock)), wb, sgs, indicator.WithClock(clock))
	return New(ServerOptions{
		Catalog:        reg,
		Resolver:       res,
		Logger:         zerolog.Nop(),
		NotFoundStatus: notFound,
		Now:            clock,
	}), reg
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHome(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	rec := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"status":"API funcionando"}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListIndicators(t *testing.T) {
	s, reg := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	rec := get(t, s, "/indicators")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc indicator.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, reg.Len(), doc.Count)
	require.Len(t, doc.Items, reg.Len())
	for i, d := range reg.List() {
		assert.Equal(t, d.ID, doc.Items[i].ID, "item %d out of catalog order", i)
		assert.NotEqual(t, "does-not-exist", doc.Items[i].ID)
	}
	assert.Contains(t, rec.Body.String(), `"as_of":"2024-05-01T12:00:00+00:00"`)
	assert.Contains(t, rec.Body.String(), `"source":"World Bank (2023)"`)
	assert.Contains(t, rec.Body.String(), `"value":10.4`)
}

func TestListIndicatorsWithFailingUpstreams(t *testing.T) {
	s, reg := newTestServer(t,
		fakeWorldBank{err: &upstream.StatusError{URL: "wb", StatusCode: 500}},
		fakeBCB{err: errors.New("connection refused")},
		0,
	)

	rec := get(t, s, "/indicators")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc indicator.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, reg.Len(), doc.Count)
	for i, d := range reg.List() {
		item := doc.Items[i]
		if d.Strategy() == catalog.StrategyModel {
			assert.True(t, item.Available(), d.ID)
			continue
		}
		assert.False(t, item.Available(), d.ID)
		assert.Equal(t, indicator.NoteUnavailable, item.Note, d.ID)
	}
}

func TestGetIndicator(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	rec := get(t, s, "/indicators/population_brazil_worldbank")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"id":"population_brazil_worldbank","title":"População do Brasil (World Bank)","category":"Demografia","unit":"pessoas","value":216422446,"source":"World Bank (2023)","as_of":"2024-05-01T12:00:00+00:00"}`,
		rec.Body.String())
}

func TestGetModelIndicator(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	rec := get(t, s, "/indicators/population_world")
	require.Equal(t, http.StatusOK, rec.Code)

	var pl indicator.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pl))
	assert.Equal(t, "Modelo (inicial)", pl.Source)
	assert.Equal(t, "8090123221", pl.Value.String())
}

func TestGetUnknownIndicator(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	rec := get(t, s, "/indicators/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, `{"error":"Indicador não encontrado"}`, rec.Body.String())
}

func TestGetUnknownIndicatorCompatStatus(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, http.StatusOK)

	rec := get(t, s, "/indicators/does-not-exist")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"error":"Indicador não encontrado"}`, rec.Body.String())
}

func TestCORSHeaders(t *testing.T) {
	s, _ := newTestServer(t, fakeWorldBank{}, fakeBCB{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/indicators/selic_bcb_daily", nil)
	req.Header.Set("Origin", "https://painel.example")
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEncodeJSON(t *testing.T) {
	b, err := EncodeJSON(map[string]string{"unit": "R$/US$ <x> & y"})
	require.NoError(t, err)
	assert.Equal(t, `{"unit":"R$/US$ <x> & y"}`, string(b))
}
