// Package web assembles the HTTP server that renders the entity pages
// and routes form submissions to the entity services.
package web

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskdeck/taskdeck/internal/client"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/meta"
	"github.com/taskdeck/taskdeck/internal/view"
)

// Server holds the wiring shared by all page handlers.
type Server struct {
	cfg      config.Config
	metas    *meta.Registry
	services *client.Registry
	flash    *Flash
	hub      *LiveHub
	nav      []navLink
}

// New wires registries, the flash notifier, and the invalidation hub.
func New(cfg config.Config, metas *meta.Registry) *Server {
	s := &Server{
		cfg:   cfg,
		metas: metas,
		flash: &Flash{},
		hub:   NewLiveHub(),
	}
	s.services = client.NewRegistry(metas, client.Options{
		BaseURL:      cfg.APIBaseURL,
		Notifier:     s.flash,
		CacheSize:    cfg.CacheSize,
		OnInvalidate: s.hub.Broadcast,
	})
	s.nav = append(s.nav, navLink{Label: "Todo", HRef: "/todo"})
	for _, k := range metas.Keys() {
		em := metas.Entity(k)
		s.nav = append(s.nav, navLink{Label: em.Plural, HRef: em.IndexPagePrefix})
	}
	return s
}

// Services exposes the client registry, mainly for tests.
func (s *Server) Services() *client.Registry { return s.services }

// viewContext builds the render context page handlers hand to views.
func (s *Server) viewContext() view.Context {
	return view.NewContext(s.services)
}

// Handler builds the router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/live", s.hub.ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/todo", http.StatusSeeOther)
	})
	r.Get("/todo", s.todoPage)
	r.Post("/todo/{id}/toggle", s.todoToggle)

	for _, k := range s.metas.Keys() {
		key := k
		em := s.metas.Entity(k)
		r.Route(em.IndexPagePrefix, func(r chi.Router) {
			r.Get("/", s.listPage(key))
			r.Get("/pick", s.pickPage(key))
			r.Get("/new", s.createPage(key))
			r.Post("/new", s.createSubmit(key))
			r.Get("/{id}", s.detailPage(key))
			r.Get("/{id}/edit", s.editPage(key))
			r.Post("/{id}/edit", s.editSubmit(key))
			r.Get("/{id}/delete", s.deleteConfirmPage(key))
			r.Post("/{id}/delete", s.deleteSubmit(key))
		})
	}
	return r
}

// Run starts the server and shuts it down when ctx is canceled.
func Run(ctx context.Context, cfg config.Config, metas *meta.Registry) error {
	s := New(cfg, metas)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()
	log.Printf("starting server on %s (api at %s)", cfg.ListenAddr, cfg.APIBaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
