package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"notebin/internal/app"
	"notebin/internal/util"
	"notebin/pkg/auth"
	"notebin/pkg/domain"
	"notebin/pkg/store"
)

const tokenCookieName = "token"

// RateLimiter gates a request key to a quota.
type RateLimiter interface {
	Allow(key string) bool
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	LoginLimiter   RateLimiter
	AnonLimiter    RateLimiter
	TrustedProxies *util.TrustedProxies
	CORSOrigins    []string
	Production     bool
}

// Server exposes the HTTP API.
type Server struct {
	app          *app.App
	loginLimiter RateLimiter
	anonLimiter  RateLimiter
	trusted      *util.TrustedProxies
	corsOrigins  []string
	production   bool
	mux          *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:          cfg.App,
		loginLimiter: cfg.LoginLimiter,
		anonLimiter:  cfg.AnonLimiter,
		trusted:      cfg.TrustedProxies,
		corsOrigins:  cfg.CORSOrigins,
		production:   cfg.Production,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped in the shared middleware.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithSecurityHeaders(util.WithCORS(s.corsOrigins, util.WithRequestLog("notebin", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/auth/register", s.handleRegister)
	s.mux.HandleFunc("/auth/login", s.handleLogin)
	s.mux.Handle("/auth/logout", s.authenticated(s.handleLogout))
	s.mux.Handle("/auth/me", s.authenticated(s.handleMe))
	s.mux.Handle("/user/avatar", s.authenticated(s.handleAvatar))
	s.mux.Handle("/user/delete", s.authenticated(s.handleDeleteAccount))

	// files
	s.mux.Handle("/files", s.authenticated(s.handleFiles))
	s.mux.Handle("/files/", s.authenticated(s.handleFileByID))

	// public sharing
	s.mux.HandleFunc("/anonymous/files", s.handleAnonymousUpload)
	s.mux.HandleFunc("/shared/", s.handleSharedByCode)
	s.mux.HandleFunc("/slug/", s.handleSharedBySlug)
	s.mux.HandleFunc("/shared-folder/", s.handleSharedFolderFile)

	// admin
	s.mux.Handle("/admin/users", s.adminOnly(s.handleAdminUsers))
	s.mux.Handle("/admin/users/", s.adminOnly(s.handleAdminUserByID))
	s.mux.Handle("/admin/files/", s.adminOnly(s.handleAdminFileByID))

	// payments
	s.mux.Handle("/payments/verify", s.authenticated(s.handlePaymentVerify))
	s.mux.Handle("/payments/history", s.authenticated(s.handlePaymentHistory))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers

type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authorize(r)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		next(w, r, user)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
		if user.Role != domain.RoleAdmin {
			audit(r, "admin access denied", "userId", user.ID)
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, user)
	})
}

// authorize resolves the principal once per request. The cheap structural
// check rejects garbage tokens before any signature work. A verified token
// whose user is gone comes back as ErrNotFound rather than ErrInvalidToken.
func (s *Server) authorize(r *http.Request) (domain.User, error) {
	token, ok := requestToken(r)
	if !ok {
		return domain.User{}, app.ErrInvalidToken
	}
	if !store.TokenWellFormed(token) {
		audit(r, "malformed token")
		return domain.User{}, app.ErrInvalidToken
	}
	return s.app.UserFromToken(token)
}

// requestToken prefers the session cookie and falls back to a bearer header.
func requestToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(tokenCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.app.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clientIP(r *http.Request) string {
	return util.ClientIP(r, s.trusted)
}

// writeAppError maps application sentinels onto the HTTP taxonomy. Unknown
// errors become an opaque 500 and are logged with the request id.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrUserBlocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, app.ErrMissingFields),
		errors.Is(err, app.ErrEmailAlreadyExists),
		errors.Is(err, app.ErrUsernameAlreadyExists),
		errors.Is(err, app.ErrInvalidPlan),
		errors.Is(err, app.ErrInvalidSignature),
		errors.Is(err, app.ErrSlugTaken),
		errors.Is(err, app.ErrNameAndContentRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err, "path", r.URL.Path, "requestId", util.RequestIDFromRequest(r))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func audit(r *http.Request, event string, args ...any) {
	args = append(args, "path", r.URL.Path, "requestId", util.RequestIDFromRequest(r))
	slog.Warn(event, args...)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "too many requests")
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
