package server

import (
	"net/http"

	"github.com/ternarybob/folio/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Data sources
	mux.HandleFunc("/api/sources", s.handleSourcesRoute) // GET (list), POST (create)
	mux.HandleFunc("/api/sources/", s.handleSourceRoutes)

	// API routes - Templates
	mux.HandleFunc("/api/templates", s.handleTemplatesRoute) // GET (list), POST (create)
	mux.HandleFunc("/api/templates/", s.handleTemplateRoutes)

	// API routes - Rendered documents
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.ListHandler)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes)

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/status", s.app.SchedulerHandler.StatusHandler)
	mux.HandleFunc("/api/scheduler/trigger-refresh", s.app.SchedulerHandler.TriggerRefreshHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleSourcesRoute routes the sources collection endpoint by method
func (s *Server) handleSourcesRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":  s.app.SourceHandler.ListHandler,
		"POST": s.app.SourceHandler.CreateHandler,
	})
}

// handleSourceRoutes routes /api/sources/{id} and its subpaths
func (s *Server) handleSourceRoutes(w http.ResponseWriter, r *http.Request) {
	id, rest := handlers.PathID(r.URL.Path, "/api/sources/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch rest {
	case "":
		RouteByMethod(w, r, MethodRouter{
			"GET":    func(w http.ResponseWriter, r *http.Request) { s.app.SourceHandler.GetHandler(w, r, id) },
			"PUT":    func(w http.ResponseWriter, r *http.Request) { s.app.SourceHandler.UpdateHandler(w, r, id) },
			"DELETE": func(w http.ResponseWriter, r *http.Request) { s.app.SourceHandler.DeleteHandler(w, r, id) },
		})
	case "datapoints":
		s.app.SourceHandler.DataPointsHandler(w, r, id)
	case "refresh":
		s.app.SourceHandler.RefreshHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleTemplatesRoute routes the templates collection endpoint by method
func (s *Server) handleTemplatesRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":  s.app.TemplateHandler.ListHandler,
		"POST": s.app.TemplateHandler.CreateHandler,
	})
}

// handleTemplateRoutes routes /api/templates/{id} and its subpaths
func (s *Server) handleTemplateRoutes(w http.ResponseWriter, r *http.Request) {
	id, rest := handlers.PathID(r.URL.Path, "/api/templates/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch rest {
	case "":
		RouteByMethod(w, r, MethodRouter{
			"GET":    func(w http.ResponseWriter, r *http.Request) { s.app.TemplateHandler.GetHandler(w, r, id) },
			"PUT":    func(w http.ResponseWriter, r *http.Request) { s.app.TemplateHandler.UpdateHandler(w, r, id) },
			"DELETE": func(w http.ResponseWriter, r *http.Request) { s.app.TemplateHandler.DeleteHandler(w, r, id) },
		})
	case "tokens":
		s.app.TemplateHandler.TokensHandler(w, r, id)
	case "generate":
		s.app.TemplateHandler.GenerateHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleDocumentRoutes routes /api/documents/{id} and its subpaths
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	id, rest := handlers.PathID(r.URL.Path, "/api/documents/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch rest {
	case "":
		RouteByMethod(w, r, MethodRouter{
			"GET":    func(w http.ResponseWriter, r *http.Request) { s.app.DocumentHandler.GetHandler(w, r, id) },
			"DELETE": func(w http.ResponseWriter, r *http.Request) { s.app.DocumentHandler.DeleteHandler(w, r, id) },
		})
	case "download":
		s.app.DocumentHandler.DownloadHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
