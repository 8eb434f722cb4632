package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/core"
	"github.com/edvin/swiftwheelz/internal/model"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "swiftwheelz_session"

type contextKey string

const identityKey contextKey = "identity"

// Sessions reads and writes the session cookie.
type Sessions struct {
	auth   *core.AuthService
	secure bool
}

func NewSessions(auth *core.AuthService, secure bool) *Sessions {
	return &Sessions{auth: auth, secure: secure}
}

// Load decodes the session cookie into the request context. An invalid or
// expired cookie is cleared and the request continues anonymously.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := s.auth.ParseSession(c.Value)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("dropping invalid session cookie")
			s.End(w)
			next.ServeHTTP(w, r)
			return
		}

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("identity", string(id.Kind)+":"+strconv.Itoa(id.ID))
		})
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Start issues a session for id and sets the cookie.
func (s *Sessions) Start(w http.ResponseWriter, id model.Identity) error {
	token, err := s.auth.IssueSession(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End clears the session cookie.
func (s *Sessions) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, &id)
}

// GetIdentity returns the signed-in identity, or nil for anonymous requests.
func GetIdentity(ctx context.Context) *model.Identity {
	id, _ := ctx.Value(identityKey).(*model.Identity)
	return id
}

// ErrorPage renders an HTML error page.
type ErrorPage interface {
	Error(w http.ResponseWriter, r *http.Request, status int, message string)
}

// RequireCustomer redirects anonymous visitors and employees to the customer
// sign-in page, remembering where they were going.
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetIdentity(r.Context()).IsCustomer() {
			http.Redirect(w, r, "/sign-in?next="+url.QueryEscape(returnPath(r)), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EmployeeLookup reads an employee record from the rental backend.
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, number int) (*model.Employee, error)
}

// RequireAdmin sends visitors without an employee session to the admin
// sign-in page and answers 403 to employees who are not administrators.
// The role is read from the backend on every request; the session only
// names the employee. A deleted or demoted employee loses the session.
func (s *Sessions) RequireAdmin(employees EmployeeLookup, pages ErrorPage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if id == nil || id.Kind != model.KindEmployee {
				http.Redirect(w, r, adminSignIn(r), http.StatusSeeOther)
				return
			}

			current, err := employees.GetEmployee(r.Context(), id.ID)
			switch {
			case errors.Is(err, backend.ErrNotFound):
				s.End(w)
				http.Redirect(w, r, adminSignIn(r), http.StatusSeeOther)
				return
			case err != nil:
				zerolog.Ctx(r.Context()).Error().Err(err).Int("employee", id.ID).Msg("load employee for admin check")
				pages.Error(w, r, http.StatusBadGateway, "We could not reach the rental service. Please try again shortly.")
				return
			case current.Role != model.RoleAdmin:
				s.End(w)
				pages.Error(w, r, http.StatusForbidden, "The admin dashboard is only available to administrators.")
				return
			}

			fresh := model.EmployeeIdentity(*current)
			fresh.ID = id.ID
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), fresh)))
		})
	}
}

func adminSignIn(r *http.Request) string {
	return "/admin-portal/sign-in?next=" + url.QueryEscape(returnPath(r))
}

// returnPath is where to go after signing in. Form posts fall back to the
// referring page's path since the post itself cannot be replayed.
func returnPath(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL.RequestURI()
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && ref.Host == r.Host {
		return ref.RequestURI()
	}
	return "/"
}
