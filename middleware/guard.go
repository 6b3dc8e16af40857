// Package middleware adapts the engine to net/http for hosts that want
// cookie handling done for them. It holds no state of its own; every
// decision is delegated to the engine.
package middleware

import (
	"context"
	"net/http"
	"time"

	cask "github.com/caskauth/cask"
)

// DefaultCookieName is used when Options.Cookie.Name is empty.
const DefaultCookieName = "cask_session"

// CookieConfig shapes the session cookie the helpers write.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c CookieConfig) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// Options configures [RequireRole].
type Options struct {
	// LoginURL is the uniform redirect target for every guard failure.
	// Defaults to "/login".
	LoginURL string

	// RedirectStatus defaults to [http.StatusFound].
	RedirectStatus int

	Cookie CookieConfig
}

func (o Options) loginURL() string {
	if o.LoginURL == "" {
		return "/login"
	}
	return o.LoginURL
}

func (o Options) redirectStatus() int {
	if o.RedirectStatus == 0 {
		return http.StatusFound
	}
	return o.RedirectStatus
}

type authResultContextKey struct{}

// AuthResultFromContext returns the principal the guard attached after a
// successful check.
func AuthResultFromContext(ctx context.Context) (*cask.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*cask.AuthResult)
	return res, ok
}

// RequireRole guards a handler behind a session cookie and a role
// threshold. Every failure (missing cookie, bad token, expired session,
// insufficient level) answers with the same redirect to the login URL, so
// the response does not reveal which check failed.
func RequireRole(engine *cask.Engine, requiredRole string, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				redirectToLogin(w, r, opts)
				return
			}

			cookie, err := r.Cookie(opts.Cookie.name())
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r, opts)
				return
			}

			res, err := engine.Require(r.Context(), cookie.Value, requiredRole)
			if err != nil {
				redirectToLogin(w, r, opts)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, opts Options) {
	http.Redirect(w, r, opts.loginURL(), opts.redirectStatus())
}

// SetSessionCookie writes the session cookie for a fresh login, carrying
// the expiry the engine stamped on the session.
func SetSessionCookie(w http.ResponseWriter, result *cask.LoginResult, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name(),
		Value:    result.Token,
		Path:     cfg.path(),
		Domain:   cfg.Domain,
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// ClearSessionCookie drops the session cookie after logout.
func ClearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name(),
		Value:    "",
		Path:     cfg.path(),
		Domain:   cfg.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}
