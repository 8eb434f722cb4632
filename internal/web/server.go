// Package web assembles the HTTP server of the SwiftWheelz front end.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/config"
	"github.com/edvin/swiftwheelz/internal/content"
	"github.com/edvin/swiftwheelz/internal/core"
	"github.com/edvin/swiftwheelz/internal/images"
	"github.com/edvin/swiftwheelz/internal/web/handler"
	mw "github.com/edvin/swiftwheelz/internal/web/middleware"
	"github.com/edvin/swiftwheelz/internal/web/render"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the server routes to. DB is optional.
type Deps struct {
	Backend  *backend.Client
	Auth     *core.AuthService
	Quotes   *core.QuoteCalculator
	Payments core.PaymentCache
	Images   *images.Store
	Site     *content.Site
	DB       Pinger
}

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	cfg      *config.Config
	deps     Deps
	renderer *render.Renderer
	sessions *mw.Sessions
}

func NewServer(logger zerolog.Logger, cfg *config.Config, deps Deps) (*Server, error) {
	renderer, err := render.New(deps.Site, deps.Auth, cfg.CookieSecure)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		cfg:      cfg,
		deps:     deps,
		renderer: renderer,
		sessions: mw.NewSessions(deps.Auth, cfg.CookieSecure),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(s.sessions.Load)
}

func (s *Server) setupRoutes() {
	// Served on the metrics listener instead when one is configured.
	if s.cfg.MetricsListenAddr == "" {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Handle("/static/*", http.StripPrefix("/static", render.Static()))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderer.Error(w, r, http.StatusNotFound, "Page not found.")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderer.Error(w, r, http.StatusMethodNotAllowed, "This page does not accept that request.")
	})

	client := s.deps.Backend

	public := handler.NewPublic(client, s.deps.Images, s.renderer)
	s.router.Get("/", public.Home)
	s.router.Get("/home", public.Home)
	s.router.Get("/about-us", public.About)
	s.router.Get("/branches", public.Branches)
	s.router.Get("/contact-us", public.ContactForm)
	s.router.Post("/contact-us", public.ContactSubmit)

	auth := handler.NewAuth(s.deps.Auth, client, s.sessions, s.renderer)
	s.router.Get("/sign-in", auth.SignInForm)
	s.router.Post("/sign-in", auth.SignIn)
	s.router.Get("/sign-up", auth.SignUpForm)
	s.router.Post("/sign-up", auth.SignUp)
	s.router.Post("/sign-out", auth.SignOut)
	s.router.Get("/admin-portal/sign-in", auth.AdminSignInForm)
	s.router.Post("/admin-portal/sign-in", auth.AdminSignIn)

	quote := handler.NewQuote(client, s.deps.Auth, s.deps.Quotes, s.deps.Payments, s.renderer)
	s.router.Get("/get-quote/{truckId}", quote.QuoteForm)
	s.router.Post("/get-quote/{truckId}", quote.Calculate)

	// Customer session required
	s.router.Group(func(r chi.Router) {
		r.Use(mw.RequireCustomer)

		r.Get("/confirm-details", quote.ConfirmDetails)
		r.Post("/confirm-details", quote.Confirm)
		r.Get("/payment", quote.Payment)
		r.Post("/payment", quote.Pay)

		customer := handler.NewCustomer(client, s.deps.Payments, s.sessions, s.renderer)
		r.Get("/customer/profile", customer.Profile)
		r.Post("/customer/delete", customer.Delete)
		r.Post("/customer/finalize-payment", customer.FinalizePayment)
		r.Get("/customer/pending-payments", customer.PendingPayments)
		r.Get("/customer/rentals", customer.Rentals)
		r.Get("/customer/customer/rentals", customer.Rentals)
		r.Get("/customer/rentals/{rentID}/receipt", customer.Receipt)
		r.Get("/update-customer/{customerID}", customer.EditForm)
		r.Post("/update-customer/{customerID}", customer.Update)
	})

	// Admin dashboard
	s.router.Get("/admin-portal", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin-portal/dashboard", http.StatusSeeOther)
	})
	s.router.Route("/admin-portal/dashboard", func(r chi.Router) {
		r.Use(s.sessions.RequireAdmin(s.deps.Backend, s.renderer))

		admin := handler.NewAdmin(client, s.deps.Images, s.renderer)
		r.Get("/", admin.Index)

		r.Get("/trucks", admin.Trucks)
		r.Post("/trucks", admin.CreateTruck)
		r.Get("/trucks/{id}/edit", admin.EditTruck)
		r.Post("/trucks/{id}", admin.UpdateTruck)
		r.Post("/trucks/{id}/delete", admin.DeleteTruck)

		r.Get("/truck-types", admin.TruckTypes)
		r.Post("/truck-types", admin.CreateTruckType)
		r.Get("/truck-types/{id}/edit", admin.EditTruckType)
		r.Post("/truck-types/{id}", admin.UpdateTruckType)
		r.Post("/truck-types/{id}/delete", admin.DeleteTruckType)

		r.Get("/branchez", admin.Branches)
		r.Post("/branchez", admin.CreateBranch)
		r.Get("/branchez/{id}/edit", admin.EditBranch)
		r.Post("/branchez/{id}", admin.UpdateBranch)
		r.Post("/branchez/{id}/delete", admin.DeleteBranch)

		r.Get("/employees", admin.Employees)
		r.Post("/employees", admin.CreateEmployee)
		r.Get("/employees/{id}/edit", admin.EditEmployee)
		r.Post("/employees/{id}", admin.UpdateEmployee)
		r.Post("/employees/{id}/delete", admin.DeleteEmployee)

		r.Get("/insurances", admin.Insurances)
		r.Post("/insurances", admin.CreateInsurance)
		r.Get("/insurances/{id}/edit", admin.EditInsurance)
		r.Post("/insurances/{id}", admin.UpdateInsurance)
		r.Post("/insurances/{id}/delete", admin.DeleteInsurance)

		r.Get("/images", admin.Images)
		r.Post("/images", admin.UploadImage)
		r.Post("/images/delete", admin.DeleteImage)

		r.Get("/manage-contact-us", admin.ContactMessages)
		r.Post("/manage-contact-us/{id}/delete", admin.DeleteContactMessage)

		r.Get("/rented-trucks", admin.Rentals)
		r.Post("/rented-trucks/{id}/mark-paid", admin.MarkRentalPaid)
		r.Post("/rented-trucks/{id}/delete", admin.DeleteRental)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.deps.Backend.Ping(ctx); err != nil {
		checks["backend"] = err.Error()
		healthy = false
	} else {
		checks["backend"] = "ok"
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(ctx); err != nil {
			checks["db"] = err.Error()
			healthy = false
		} else {
			checks["db"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
