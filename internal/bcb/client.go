// Package bcb fetches the latest observation of a Banco Central do Brasil
// SGS time series.
package bcb

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/briangreenhill/indicators/internal/upstream"
)

const DefaultBaseURL = "https://api.bcb.gov.br/dados/serie"

// Observation is the last published point of a series. Value is nil when the
// upstream value could not be parsed as a number.
type Observation struct {
	Value *float64
	Date  string // dd/mm/yyyy, as published
	AsOf  time.Time
}

type point struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

type Client struct {
	http    *http.Client
	baseURL string
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}
func WithBaseURL(raw string) Option {
	return func(c *Client) { c.baseURL = raw }
}
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:    upstream.NewHTTPClient(upstream.DefaultTimeout),
		baseURL: DefaultBaseURL,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Latest returns the last observation of an SGS series. An empty series is
// upstream.ErrNoData; an unparseable value is not an error.
func (c *Client) Latest(ctx context.Context, seriesID int) (*Observation, error) {
	u := fmt.Sprintf("%s/bcdata.sgs.%d/dados/ultimos/1?formato=json", c.baseURL, seriesID)

	var points []point
	if err := upstream.GetJSON(ctx, c.http, u, &points); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, upstream.ErrNoData
	}

	last := points[0] // ultimos/1 returns only the latest point
	return &Observation{
		Value: ParseDecimal(last.Valor),
		Date:  last.Data,
		AsOf:  c.now().UTC(),
	}, nil
}

// ParseDecimal parses a number that uses a comma as decimal separator,
// returning nil if s is not numeric.
func ParseDecimal(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
