package webserver

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nutriva/nutriva/internal/application/auth"
	"github.com/nutriva/nutriva/internal/application/guard"
	appprefs "github.com/nutriva/nutriva/internal/application/preferences"
	"github.com/nutriva/nutriva/internal/domain/preferences"
	"github.com/nutriva/nutriva/internal/infrastructure/config"
	apperrors "github.com/nutriva/nutriva/pkg/errors"
	"github.com/nutriva/nutriva/pkg/healthcheck"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

type contextKey string

const sessionKey contextKey = "session"

// pagePaths maps guard pages to their routes.
var pagePaths = map[guard.Page]string{
	guard.PageLogin:       "/login",
	guard.PagePreferences: "/preferences",
	guard.PageMain:        "/",
}

// WebServer represents the web frontend HTTP server
type WebServer struct {
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
	router       *chi.Mux
	templates    *template.Template
	apiClient    *APIClient
	sessionStore *SessionStore
	authService  *auth.Service
	prefsService *appprefs.Service
	accessGuard  *guard.Service
	healthCheck  *healthcheck.HealthCheck
}

// NewWebServer creates a new web frontend server instance
func NewWebServer(
	cfg *config.Config,
	log *zap.Logger,
	apiClient *APIClient,
	sessionStore *SessionStore,
	authService *auth.Service,
	prefsService *appprefs.Service,
	accessGuard *guard.Service,
	healthCheck *healthcheck.HealthCheck,
) (*WebServer, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	server := &WebServer{
		config:       cfg,
		logger:       log.Named("webserver"),
		templates:    templates,
		apiClient:    apiClient,
		sessionStore: sessionStore,
		authService:  authService,
		prefsService: prefsService,
		accessGuard:  accessGuard,
		healthCheck:  healthCheck,
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

func (s *WebServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.loadSession)

	r.Method(http.MethodGet, "/health", s.healthCheck.Handler())

	// Pages, each behind the access guard for its own identity
	r.Group(func(r chi.Router) {
		r.Use(s.guardPage(guard.PageMain))
		r.Get("/", s.handleMainPage)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.guardPage(guard.PageLogin))
		r.Get("/login", s.handleLoginPage)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.guardPage(guard.PagePreferences))
		r.Get("/preferences", s.handlePreferencesPage)
	})

	// Form flows
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/preferences", s.handleSavePreferences)
	r.Get("/preferences/edit", s.handleEditPreferences)
	r.Post("/logout", s.handleLogout)

	// JSON endpoints used by the search page
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/recipes/search", s.handleSearchRecipes)
		r.Get("/api/recipes/{id}", s.handleRecipeDetails)
		r.Post("/api/ai/suggestions", s.handleAISuggestions)
		r.Get("/api/nutrition/ingredient/{name}", s.handleIngredientNutrition)
		r.Get("/api/nutrition/details/{fdcId}", s.handleNutritionDetails)
		r.Post("/api/nutrition/compare", s.handleCompareNutrition)
	})

	return r
}

// Start begins serving requests.
func (s *WebServer) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web server")
	return s.server.Shutdown(ctx)
}

// loadSession attaches the request's session, creating one when none
// exists yet, and binds it to the response cookie.
func (s *WebServer) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionStore.Get(r)
		if err != nil {
			session = s.sessionStore.New()
		}
		s.sessionStore.Save(w, session)

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *WebServer) session(r *http.Request) *Session {
	session, _ := r.Context().Value(sessionKey).(*Session)
	return session
}

// guardPage applies the access guard before rendering a page and issues
// the redirect it asks for.
func (s *WebServer) guardPage(page guard.Page) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := s.session(r)

			decision := s.accessGuard.Check(r.Context(), guard.Session{
				UserEmail:          session.UserEmail,
				EditingPreferences: session.EditingPreferences(),
			}, page)

			if decision.Redirect {
				http.Redirect(w, r, pagePaths[decision.Target], http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects JSON requests without a logged-in session.
func (s *WebServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.session(r).Authenticated() {
			s.writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Page handlers

type pageData struct {
	UserName     string
	UserEmail    string
	Message      string
	MessageType  string
	Diets        []preferences.Diet
	Intolerances []string
	Selected     *preferences.Preferences
}

func (s *WebServer) handleMainPage(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	s.render(w, "index.html", pageData{
		UserName:  session.UserName,
		UserEmail: session.UserEmail,
	})
}

func (s *WebServer) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	// An already logged-in visitor skips the form and lands where their
	// preference state points.
	if session.Authenticated() {
		record, err := s.prefsService.Get(r.Context(), session.UserEmail)
		if err == nil {
			if record.Complete() {
				http.Redirect(w, r, pagePaths[guard.PageMain], http.StatusSeeOther)
			} else {
				http.Redirect(w, r, pagePaths[guard.PagePreferences], http.StatusSeeOther)
			}
			return
		}
		s.logger.Error("Session check failed", zap.Error(err))
	}

	s.render(w, "login.html", pageData{})
}

func (s *WebServer) handlePreferencesPage(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	data := pageData{
		UserName:     session.UserName,
		UserEmail:    session.UserEmail,
		Diets:        preferences.Diets(),
		Intolerances: preferences.Intolerances(),
	}

	// Pre-fill from a prior record, partial ones included.
	record, err := s.prefsService.Get(r.Context(), session.UserEmail)
	if err != nil {
		s.logger.Error("Failed to load preferences for form", zap.Error(err))
	} else {
		data.Selected = record
	}

	s.render(w, "preferences.html", data)
}

// Form handlers

func (s *WebServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	result, err := s.authService.Login(r.Context(), session, auth.LoginCommand{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		s.renderLoginError(w, err)
		return
	}

	if result.NeedsPreferences {
		http.Redirect(w, r, pagePaths[guard.PagePreferences], http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, pagePaths[guard.PageMain], http.StatusSeeOther)
}

func (s *WebServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	_, err := s.authService.Register(r.Context(), session, auth.RegisterCommand{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	})
	if err != nil {
		s.renderLoginError(w, err)
		return
	}

	// A fresh account always fills in preferences first.
	http.Redirect(w, r, pagePaths[guard.PagePreferences], http.StatusSeeOther)
}

func (s *WebServer) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	if !session.Authenticated() {
		http.Redirect(w, r, pagePaths[guard.PageLogin], http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderPreferencesError(w, r, preferences.ErrDietRequired)
		return
	}

	diet := preferences.Diet(r.FormValue("diet"))
	intolerances := r.Form["intolerances"]

	_, err := s.prefsService.Save(r.Context(), session, session.UserEmail, diet, intolerances)
	if err != nil {
		s.renderPreferencesError(w, r, err)
		return
	}

	http.Redirect(w, r, pagePaths[guard.PageMain], http.StatusSeeOther)
}

// handleEditPreferences sets the override that lets a user with complete
// preferences open the form again.
func (s *WebServer) handleEditPreferences(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	if !session.Authenticated() {
		http.Redirect(w, r, pagePaths[guard.PageLogin], http.StatusSeeOther)
		return
	}

	session.MarkEditingPreferences()
	http.Redirect(w, r, pagePaths[guard.PagePreferences], http.StatusSeeOther)
}

func (s *WebServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	s.authService.Logout(session)
	s.sessionStore.Delete(session.ID)

	http.Redirect(w, r, pagePaths[guard.PageLogin], http.StatusSeeOther)
}

// JSON handlers proxying the backend recipe API

func (s *WebServer) handleSearchRecipes(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Fill in the stored dietary preferences when the page didn't.
	if req.Diet == "" || len(req.Intolerances) == 0 {
		record, err := s.prefsService.Get(r.Context(), session.UserEmail)
		if err == nil && record != nil {
			if req.Diet == "" {
				req.Diet = string(record.Diet())
			}
			if len(req.Intolerances) == 0 {
				req.Intolerances = record.Intolerances()
			}
		}
	}

	resp, err := s.apiClient.SearchRecipes(r.Context(), req)
	if err != nil {
		s.writeAPIFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *WebServer) handleRecipeDetails(w http.ResponseWriter, r *http.Request) {
	recipeID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	resp, err := s.apiClient.GetRecipeDetails(r.Context(), recipeID)
	if err != nil {
		s.writeAPIFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *WebServer) handleAISuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.apiClient.GetAISuggestions(r.Context(), req)
	if err != nil {
		s.writeAPIFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *WebServer) handleIngredientNutrition(w http.ResponseWriter, r *http.Request) {
	resp, err := s.apiClient.GetIngredientNutrition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeAPIFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *WebServer) handleNutritionDetails(w http.ResponseWriter, r *http.Request) {
	fdcID, err := strconv.Atoi(chi.URLParam(r, "fdcId"))
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid food id")
		return
	}

	resp, err := s.apiClient.GetNutritionDetails(r.Context(), fdcID)
	if err != nil {
		s.writeAPIFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *WebServer) handleCompareNutrition(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.apiClient.CompareNutrition(r.Context(), req.Ingredients)
	if err != nil {
		s.writeAPIFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// Rendering helpers

func (s *WebServer) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Template rendering failed",
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *WebServer) renderLoginError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	s.logFlowError("auth", err, appErr)

	w.WriteHeader(appErr.StatusCode())
	s.render(w, "login.html", pageData{
		Message:     appErr.Message,
		MessageType: "error",
	})
}

func (s *WebServer) renderPreferencesError(w http.ResponseWriter, r *http.Request, err error) {
	session := s.session(r)
	appErr := toAppError(err)
	s.logFlowError("preferences", err, appErr)

	w.WriteHeader(appErr.StatusCode())
	s.render(w, "preferences.html", pageData{
		UserName:     session.UserName,
		UserEmail:    session.UserEmail,
		Diets:        preferences.Diets(),
		Intolerances: preferences.Intolerances(),
		Message:      appErr.Message,
		MessageType:  "error",
	})
}

func (s *WebServer) logFlowError(flow string, cause error, appErr *apperrors.AppError) {
	if appErr.StatusCode() >= 500 {
		s.logger.Error("Flow failed", zap.String("flow", flow), zap.Error(cause))
	} else {
		s.logger.Info("Flow rejected",
			zap.String("flow", flow),
			zap.String("code", string(appErr.Code)),
		)
	}
}

func (s *WebServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *WebServer) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func (s *WebServer) writeAPIFailure(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	s.logFlowError("api", err, appErr)
	s.writeJSONError(w, appErr.StatusCode(), appErr.Message)
}
