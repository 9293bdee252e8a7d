// Package server - админка черновиков: JSON API, HTML страницы, healthz и метрики.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type DraftStore interface {
	Drafts(ctx context.Context, limit uint64) ([]model.Draft, error)
	DraftByID(ctx context.Context, id int64) (model.Draft, error)
	Update(ctx context.Context, id int64, upd model.DraftUpdate) (model.Draft, error)
	Approve(ctx context.Context, id int64) (model.Draft, error)
}

// Pinger - проверка живости базы. *sqlx.DB ему удовлетворяет.
type Pinger interface {
	PingContext(ctx context.Context) error
}

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	drafts   DraftStore
	db       Pinger
	pages    *template.Template
	registry *prometheus.Registry
	metrics  *metrics
}

func New(drafts DraftStore, db Pinger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		drafts:   drafts,
		db:       db,
		pages:    template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")),
		registry: registry,
		metrics:  newMetrics(registry),
	}
}

// Routes собирает роутер со всеми мидлварами
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Порядок важен: recover самый внешний, request id до логирования
	r.Use(recoverer, requestID, logging, s.metrics.instrument)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/drafts", http.StatusFound)
	})
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/admin/drafts", func(r chi.Router) {
		r.HandleFunc("/", methods(map[string]http.HandlerFunc{
			http.MethodGet: s.listDrafts,
		}))
		r.HandleFunc("/{id}", methods(map[string]http.HandlerFunc{
			http.MethodGet:  s.getDraft,
			http.MethodPost: s.updateDraft,
		}))
		r.HandleFunc("/{id}/approve", methods(map[string]http.HandlerFunc{
			http.MethodPost: s.approveDraft,
		}))
	})

	r.Route("/ui/drafts", func(r chi.Router) {
		r.HandleFunc("/", methods(map[string]http.HandlerFunc{
			http.MethodGet: s.uiList,
		}))
		r.HandleFunc("/{id}", methods(map[string]http.HandlerFunc{
			http.MethodGet:  s.uiDetail,
			http.MethodPost: s.uiSave,
		}))
		r.HandleFunc("/{id}/approve", methods(map[string]http.HandlerFunc{
			http.MethodPost: s.uiApprove,
		}))
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		logInternal(r, "health check", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
