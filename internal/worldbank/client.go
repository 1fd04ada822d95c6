// Package worldbank fetches the latest value of a World Bank indicator.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/briangreenhill/indicators/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.worldbank.org/v2"
	DefaultPerPage = 60
)

// Observation is the most recent non-null data point of a series.
type Observation struct {
	Value int64
	Year  string
	AsOf  time.Time // when it was fetched
}

// row is one element of the second array in a World Bank response.
type row struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type Client struct {
	http    *http.Client
	baseURL string
	perPage int
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}
func WithBaseURL(raw string) Option {
	return func(c *Client) { c.baseURL = raw }
}
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:    upstream.NewHTTPClient(upstream.DefaultTimeout),
		baseURL: DefaultBaseURL,
		perPage: DefaultPerPage,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Latest returns the newest non-null value for an indicator in a country.
// Rows come newest first, so the first non-null one wins. The value is
// truncated to an integer. upstream.ErrNoData is returned when no row has a
// value or the response carries only metadata.
func (c *Client) Latest(ctx context.Context, countryCode, indicatorCode string) (*Observation, error) {
	u := fmt.Sprintf("%s/country/%s/indicator/%s?format=json&per_page=%s",
		c.baseURL,
		url.PathEscape(countryCode),
		url.PathEscape(indicatorCode),
		strconv.Itoa(c.perPage),
	)

	// format: [metadata, [rows...]]
	var doc []json.RawMessage
	if err := upstream.GetJSON(ctx, c.http, u, &doc); err != nil {
		return nil, err
	}
	if len(doc) < 2 {
		return nil, upstream.ErrNoData
	}

	var rows []row
	if err := json.Unmarshal(doc[1], &rows); err != nil {
		return nil, fmt.Errorf("decode world bank rows: %w", err)
	}

	for _, r := range rows {
		if r.Value == nil {
			continue
		}
		return &Observation{
			Value: int64(math.Trunc(*r.Value)),
			Year:  r.Date,
			AsOf:  c.now().UTC(),
		}, nil
	}
	return nil, upstream.ErrNoData
}
