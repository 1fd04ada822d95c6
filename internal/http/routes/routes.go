package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/indicators/internal/catalog"
	appmw "github.com/briangreenhill/indicators/internal/http/middleware"
	"github.com/briangreenhill/indicators/internal/indicator"
)

// Catalog looks up indicator definitions.
type Catalog interface {
	Get(id string) (catalog.Definition, bool)
	List() []catalog.Definition
}

// Resolver turns definitions into payloads.
type Resolver interface {
	Resolve(ctx context.Context, def catalog.Definition) indicator.Payload
	ResolveAll(ctx context.Context, defs []catalog.Definition) []indicator.Payload
}

type Server struct {
	Router         *chi.Mux
	Catalog        Catalog
	Resolver       Resolver
	NotFoundStatus int
	Now            func() time.Time
}

type ServerOptions struct {
	Catalog        Catalog
	Resolver       Resolver
	Logger         zerolog.Logger
	NotFoundStatus int              // defaults to 404
	Now            func() time.Time // defaults to time.Now
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.Logging(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS())

	s := &Server{
		Router:         r,
		Catalog:        opts.Catalog,
		Resolver:       opts.Resolver,
		NotFoundStatus: opts.NotFoundStatus,
		Now:            opts.Now,
	}
	if s.NotFoundStatus == 0 {
		s.NotFoundStatus = http.StatusNotFound
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Get("/", s.handleHome)
	r.Get("/indicators", s.handleList)
	r.Get("/indicators/{indicatorID}", s.handleGet)

	return s
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "API funcionando"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items := s.Resolver.ResolveAll(r.Context(), s.Catalog.List())
	s.writeJSON(w, r, http.StatusOK, indicator.NewList(s.Now(), items))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "indicatorID")
	def, ok := s.Catalog.Get(id)
	if !ok {
		hlog.FromRequest(r).Debug().Str("indicator", id).Msg("unknown indicator")
		s.writeJSON(w, r, s.NotFoundStatus, indicator.ErrorBody{Error: indicator.MessageNotFound})
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.Resolver.Resolve(r.Context(), def))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := EncodeJSON(v)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write response")
	}
}

// EncodeJSON renders v as compact JSON without HTML escaping or a trailing
// newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
