// Package ui serves the local web interface: upload spreadsheets, confirm
// per-column types, watch progress, preview, and download the consolidated
// SQLite database.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sheetpress/adapters/sqlite"
	"sheetpress/internal/cleaner"
	"sheetpress/internal/consolidate"
	"sheetpress/internal/session"
)

//go:embed templates/*
var embeddedFiles embed.FS

// Config holds UI application configuration
type Config struct {
	Port        string
	ZeroAsBlank bool
}

// App represents the UI application
type App struct {
	router       *chi.Mux
	templates    *template.Template
	sessions     *session.Store
	consolidator *consolidate.Consolidator
	writer       *sqlite.Writer
	config       Config
}

// NewApp creates a new UI application
func NewApp(config Config) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:       chi.NewRouter(),
		templates:    templates,
		sessions:     session.NewStore(),
		consolidator: consolidate.New(cleaner.Options{ZeroAsBlank: config.ZeroAsBlank}),
		writer:       sqlite.NewWriter(),
		config:       config,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/upload", a.handleUpload)
	a.router.Get("/types", a.handleTypesForm)
	a.router.Post("/process", a.handleProcess)
	a.router.Get("/progress", a.handleProgressPage)
	a.router.Get("/api/progress", a.handleProgressJSON)
	a.router.Get("/preview", a.handlePreview)
	a.router.Get("/download", a.handleDownload)
}

// Start runs the HTTP server on the configured port
func (a *App) Start() error {
	addr := ":" + a.config.Port
	return http.ListenAndServe(addr, a.router)
}
