package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

const (
	sessionUserKey = "user_id"
	sessionCartKey = "cart_session"
)

// Sessions wraps the cookie session store. The session carries the
// signed-in user id and, for anonymous visitors, a generated cart
// session id.
type Sessions struct {
	store *sessions.CookieStore
	name  string
}

func NewSessions(cfg *config.SessionConfig) *Sessions {
	cookieStore := sessions.NewCookieStore(cfg.Key)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	}

	return &Sessions{store: cookieStore, name: cfg.CookieName}
}

func (s *Sessions) currentUserID(r *http.Request) (int64, bool) {
	session, _ := s.store.Get(r, s.name)
	id, ok := session.Values[sessionUserKey].(int64)
	return id, ok
}

func (s *Sessions) setUser(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := s.store.Get(r, s.name)
	session.Values[sessionUserKey] = userID
	return session.Save(r, w)
}

func (s *Sessions) clear(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, s.name)
	session.Options.MaxAge = -1
	session.Save(r, w)
}

// cartOwner resolves who owns the cart for this request: the signed-in
// user, or an anonymous session id minted on first use.
func (s *Sessions) cartOwner(w http.ResponseWriter, r *http.Request) (store.CartOwner, error) {
	if userID, ok := s.currentUserID(r); ok {
		return store.CartOwner{UserID: &userID}, nil
	}

	session, _ := s.store.Get(r, s.name)
	sessionID, ok := session.Values[sessionCartKey].(string)
	if !ok || sessionID == "" {
		sessionID = uuid.NewString()
		session.Values[sessionCartKey] = sessionID
		if err := session.Save(r, w); err != nil {
			return store.CartOwner{}, err
		}
	}

	return store.CartOwner{SessionID: &sessionID}, nil
}

// Auth is the single authorization gate. Every protected route derives
// identity from the session, loads the user record and, for admin routes,
// checks the role, instead of each handler repeating the check.
type Auth struct {
	DB       *sql.DB
	Sessions *Sessions
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

// RequireUser rejects requests without a signed-in session (401).
func (a *Auth) RequireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.Sessions.currentUserID(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := store.GetUser(r.Context(), a.DB, userID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next(w, r, user)
	}
}

// RequireAdmin additionally rejects non-admin roles (403).
func (a *Auth) RequireAdmin(next authedHandler) http.HandlerFunc {
	return a.RequireUser(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if user.Role != models.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r, user)
	})
}

// LoggingMiddleware logs method, path, status and duration per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
			"ip", r.RemoteAddr,
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
