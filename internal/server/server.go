package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"briefcast/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	store  store.Store
	feeds  []string
	logger *zap.Logger
	router *mux.Router
	server *http.Server
}

func NewServer(st store.Store, feeds []string, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		feeds:  feeds,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Static Files (CSS)
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// App Routes
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/run", s.handleRun).Methods("POST")
	s.router.HandleFunc("/item/{id}", s.handleItem).Methods("GET")
	s.router.HandleFunc("/digest/{feed}/{date}", s.handleDigest).Methods("GET")
}

// Start launches the HTTP server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Dashboard listening", zap.String("addr", port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context(), 50)
	if err != nil {
		s.logger.Error("Failed to list items", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	digests, err := s.store.ListDigests(r.Context(), 5)
	if err != nil {
		s.logger.Error("Failed to list digests", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	tmpl, err := template.ParseFiles("templates/layout.html", "templates/index.html")
	if err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":   "Brief Dashboard",
		"Items":   items,
		"Digests": digests,
		"Feeds":   s.feeds,
		"Flash":   getFlash(w, r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Render error", zap.Error(err))
	}
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	item, err := s.store.GetItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.logger.Error("Failed to load item", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	tmpl, err := template.ParseFiles("templates/layout.html", "templates/item.html")
	if err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title": item.Title,
		"Item":  item,
		// Note: archived content passed through readability already
		"Content":     template.HTML(item.Content),
		"ExtractedAt": item.ExtractedAt.Format("02 Jan 2006, 15:04 MST"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Render error", zap.Error(err))
	}
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	digest, err := s.store.GetDigest(r.Context(), vars["feed"], vars["date"])
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.logger.Error("Failed to load digest", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	tmpl, err := template.ParseFiles("templates/layout.html", "templates/digest.html")
	if err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":  "Digest " + digest.Date,
		"Digest": digest,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Render error", zap.Error(err))
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	feed := r.FormValue("feed")
	if feed == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.store.EnqueueFeed(r.Context(), feed); err != nil {
		s.logger.Error("Failed to enqueue harvest", zap.Error(err))
		http.Error(w, "Failed to enqueue", http.StatusInternalServerError)
		return
	}

	setFlash(w, r, "Harvest queued for "+feed)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
