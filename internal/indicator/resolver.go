// Package indicator resolves catalog definitions into client-facing payloads,
// choosing per indicator between the growth model and the upstream sources
// and memoizing upstream results with source-specific TTLs.
package indicator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/briangreenhill/indicators/internal/bcb"
	"github.com/briangreenhill/indicators/internal/cache"
	"github.com/briangreenhill/indicators/internal/catalog"
	"github.com/briangreenhill/indicators/internal/upstream"
	"github.com/briangreenhill/indicators/internal/worldbank"
)

// Cache lifetimes per source and outcome. Failures are kept briefly so a
// failing upstream is retried soon without being hit on every request.
const (
	WorldBankTTL            = 6 * time.Hour
	WorldBankUnavailableTTL = 30 * time.Minute
	BCBTTL                  = 30 * time.Minute
	BCBUnavailableTTL       = 10 * time.Minute
)

const (
	SourceWorldBank = "World Bank"
	SourceBCB       = "Banco Central (SGS)"
)

// resolveAllLimit caps concurrent resolutions in ResolveAll.
const resolveAllLimit = 4

// WorldBankFetcher returns the latest value of a World Bank series.
type WorldBankFetcher interface {
	Latest(ctx context.Context, countryCode, indicatorCode string) (*worldbank.Observation, error)
}

// BCBFetcher returns the latest observation of an SGS series.
type BCBFetcher interface {
	Latest(ctx context.Context, seriesID int) (*bcb.Observation, error)
}

type Resolver struct {
	cache   cache.Store
	wb      WorldBankFetcher
	sgs     BCBFetcher
	log     zerolog.Logger
	now     func() time.Time
	started time.Time
	timeout time.Duration
	group   *singleflight.Group // nil unless coalescing is enabled
}

type Option func(*Resolver)

// WithClock replaces time.Now. The start time is taken from the clock
// unless WithStartTime is also given.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithStartTime sets the instant the growth model counts from.
func WithStartTime(t time.Time) Option {
	return func(r *Resolver) { r.started = t }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithFetchTimeout bounds every upstream call.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithCoalescing makes concurrent misses on the same cache key share a single
// upstream call. Without it each miss fetches and the last write wins.
func WithCoalescing() Option {
	return func(r *Resolver) { r.group = &singleflight.Group{} }
}

func NewResolver(store cache.Store, wb WorldBankFetcher, sgs BCBFetcher, opts ...Option) *Resolver {
	r := &Resolver{
		cache:   store,
		wb:      wb,
		sgs:     sgs,
		log:     zerolog.Nop(),
		now:     time.Now,
		timeout: upstream.DefaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	if r.started.IsZero() {
		r.started = r.now()
	}
	return r
}

// Resolve produces the payload for one definition. It never fails: upstream
// problems yield a payload with a nil value and a note.
func (r *Resolver) Resolve(ctx context.Context, def catalog.Definition) Payload {
	switch p := def.Params.(type) {
	case catalog.ModelParams:
		return r.resolveModel(def, p)
	case catalog.WorldBankParams:
		return r.resolveWorldBank(ctx, def, p)
	case catalog.BCBParams:
		return r.resolveBCB(ctx, def, p)
	default:
		r.log.Error().Str("indicator", def.ID).Msgf("no resolver for strategy %T", p)
		return unavailable(def, def.Source, r.now())
	}
}

// ResolveAll resolves defs concurrently and returns payloads in the same order.
func (r *Resolver) ResolveAll(ctx context.Context, defs []catalog.Definition) []Payload {
	out := make([]Payload, len(defs))
	var g errgroup.Group
	g.SetLimit(resolveAllLimit)
	for i, d := range defs {
		g.Go(func() error {
			out[i] = r.Resolve(ctx, d)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ModelValue is base + elapsed*growth, truncated toward zero.
func ModelValue(p catalog.ModelParams, elapsed time.Duration) int64 {
	return int64(math.Trunc(p.BaseValue + elapsed.Seconds()*p.GrowthPerSecond))
}

func (r *Resolver) resolveModel(def catalog.Definition, p catalog.ModelParams) Payload {
	now := r.now()
	pl := header(def)
	pl.Value = IntValue(ModelValue(p, now.Sub(r.started)))
	pl.Source = def.Source
	pl.AsOf = Timestamp(now.UTC())
	return pl
}

func (r *Resolver) resolveWorldBank(ctx context.Context, def catalog.Definition, p catalog.WorldBankParams) Payload {
	key := cache.Key("wb", p.CountryCode, p.IndicatorCode)
	return r.cached(ctx, def, key, func(ctx context.Context) (Payload, time.Duration) {
		obs, err := r.wb.Latest(ctx, p.CountryCode, p.IndicatorCode)
		if err != nil {
			r.logFetchError(def, key, err)
			return unavailable(def, SourceWorldBank, r.now()), WorldBankUnavailableTTL
		}
		pl := header(def)
		pl.Value = IntValue(obs.Value)
		pl.Source = fmt.Sprintf("%s (%s)", SourceWorldBank, obs.Year)
		pl.AsOf = Timestamp(obs.AsOf)
		return pl, WorldBankTTL
	})
}

func (r *Resolver) resolveBCB(ctx context.Context, def catalog.Definition, p catalog.BCBParams) Payload {
	key := cache.Key("bcb", strconv.Itoa(p.SeriesID))
	return r.cached(ctx, def, key, func(ctx context.Context) (Payload, time.Duration) {
		obs, err := r.sgs.Latest(ctx, p.SeriesID)
		if err != nil {
			r.logFetchError(def, key, err)
			return unavailable(def, SourceBCB, r.now()), BCBUnavailableTTL
		}
		if obs.Value == nil {
			r.log.Warn().Str("indicator", def.ID).Str("key", key).Str("date", obs.Date).Msg("upstream value is not numeric")
			return unavailable(def, SourceBCB, r.now()), BCBUnavailableTTL
		}
		pl := header(def)
		pl.Value = FloatValue(*obs.Value)
		pl.Source = fmt.Sprintf("%s (%s)", SourceBCB, obs.Date)
		pl.AsOf = Timestamp(obs.AsOf)
		return pl, BCBTTL
	})
}

type fetchFunc func(ctx context.Context) (Payload, time.Duration)

// cached serves key from the store or runs fetch and stores its result.
// Indicators sharing an upstream series share the entry, so the identity
// fields are always taken from def.
func (r *Resolver) cached(ctx context.Context, def catalog.Definition, key string, fetch fetchFunc) Payload {
	if v, ok := r.cache.Get(key); ok {
		if pl, ok := v.(Payload); ok {
			return withHeader(pl, def)
		}
	}

	load := func() Payload {
		// a client disconnect must not turn into a cached failure
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		pl, ttl := fetch(fctx)
		r.cache.Set(key, pl, ttl)
		r.log.Debug().Str("indicator", def.ID).Str("key", key).Dur("ttl", ttl).Bool("available", pl.Available()).Msg("cache miss, stored")
		return pl
	}

	if r.group == nil {
		return withHeader(load(), def)
	}
	v, _, _ := r.group.Do(key, func() (any, error) {
		return load(), nil
	})
	return withHeader(v.(Payload), def)
}

func (r *Resolver) logFetchError(def catalog.Definition, key string, err error) {
	r.log.Warn().Err(err).Str("indicator", def.ID).Str("key", key).Msg("upstream fetch failed")
}

func header(def catalog.Definition) Payload {
	return Payload{
		ID:       def.ID,
		Title:    def.Title,
		Category: def.Category,
		Unit:     def.Unit,
	}
}

func withHeader(pl Payload, def catalog.Definition) Payload {
	pl.ID = def.ID
	pl.Title = def.Title
	pl.Category = def.Category
	pl.Unit = def.Unit
	return pl
}

func unavailable(def catalog.Definition, source string, now time.Time) Payload {
	pl := header(def)
	pl.Source = source
	pl.AsOf = Timestamp(now.UTC())
	pl.Note = NoteUnavailable
	return pl
}
