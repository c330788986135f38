package www

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"eaisdo/engine"
	"eaisdo/log"
	"eaisdo/session"
)

type Handlers struct {
	engine   *engine.Engine
	tmpl     map[string]*template.Template
	activity *activityLog
}

// NewRouter builds the console routes. The returned func detaches the
// handlers from the engine's event bus.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	h := &Handlers{
		engine:   eng,
		tmpl:     parseTemplates(),
		activity: newActivityLog(50),
	}
	subID := h.activity.subscribe(eng.Events)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(h.withSession)

	// Public
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/api/session", h.apiSession)
	r.Get("/api/health", h.apiHealth)

	// Guarded pages
	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Get("/", h.handleHome)
		r.Get("/nodes", h.handleNodes)
		r.Get("/nodes/new", h.handleNodeNew)
		r.Post("/nodes/create", h.handleNodeCreate)
		r.Get("/nodes/export", h.handleNodesExport)
		r.Get("/nodes/{id}/edit", h.handleNodeEdit)
		r.Post("/nodes/update", h.handleNodeUpdate)
		r.Get("/nodes/{id}/delete", h.handleNodeDeleteConfirm)
		r.Post("/nodes/delete", h.handleNodeDelete)
		r.Get("/schema", h.handleSchema)
		r.Get("/diagnostics", h.handleDiagnostics)
	})

	// Guarded API
	r.Group(func(r chi.Router) {
		r.Use(h.requireSessionAPI)
		r.Get("/api/nodes", h.apiListNodes)
	})

	stop := func() {
		eng.Events.Unsubscribe(subID)
	}
	return r, stop
}

// withSession attaches a session for the request and starts resolving it.
func (h *Handlers) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := h.engine.NewSession(w, r)
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

// waitReady blocks until the session has resolved or the configured wait
// elapses. It returns the state observed at that point.
func (h *Handlers) waitReady(r *http.Request) session.State {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return session.State{}
	}
	wait := h.engine.SessionWait()
	if wait <= 0 {
		wait = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()
	select {
	case <-sess.Ready():
	case <-ctx.Done():
	}
	return sess.Status()
}

func (h *Handlers) isAuthenticated(r *http.Request) bool {
	return h.waitReady(r).Authenticated
}

// requireSession renders the spinner while the session resolves and the
// login form in place of the page when it is not authenticated.
func (h *Handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch session.Guard(h.waitReady(r)) {
		case session.ViewSpinner:
			w.Header().Set("Retry-After", "1")
			h.render(w, r, "spinner.html", map[string]any{
				"Page":          "spinner",
				"Authenticated": false,
			})
		case session.ViewLogin:
			h.render(w, r, "login.html", map[string]any{
				"Page":          "login",
				"Next":          r.URL.RequestURI(),
				"Authenticated": false,
			})
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (h *Handlers) requireSessionAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch session.Guard(h.waitReady(r)) {
		case session.ViewSpinner:
			w.Header().Set("Retry-After", "1")
			h.jsonError(w, "session loading", http.StatusServiceUnavailable)
		case session.ViewLogin:
			h.jsonError(w, "unauthorized", http.StatusUnauthorized)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// actor is the name recorded against changes. The console has one operator.
func (h *Handlers) actor() string {
	return h.engine.AppConfig().Auth.Username
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("www: request")
	})
}
