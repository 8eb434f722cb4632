package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/core"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/middleware"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

const (
	customerHome = "/customer/profile"
	adminHome    = "/admin-portal/dashboard/trucks"
)

// Auth handles customer and employee sign-in, sign-up and sign-out.
type Auth struct {
	auth     *core.AuthService
	client   *backend.Client
	sessions *middleware.Sessions
	renderer *render.Renderer
}

func NewAuth(auth *core.AuthService, client *backend.Client, sessions *middleware.Sessions, renderer *render.Renderer) *Auth {
	return &Auth{auth: auth, client: client, sessions: sessions, renderer: renderer}
}

var signInFields = []fieldSpec{
	{name: "email", label: "Email", typ: "email", required: true},
	{name: "password", label: "Password", typ: "password", required: true},
}

// SignInData backs the customer and admin sign-in pages.
type SignInData struct {
	Form render.FormView
}

func (h *Auth) signInPage(w http.ResponseWriter, r *http.Request, status int, page, action string, f *request.Form, formErr string) {
	title := "Sign in"
	if page == "admin_sign_in" {
		title = "Staff sign-in"
	}
	h.renderer.Page(w, r, status, page, title, SignInData{Form: render.FormView{
		Action: action,
		Submit: "Sign in",
		Fields: buildFields(f, signInFields),
		Hidden: map[string]string{"next": f.String("next")},
		Error:  formErr,
	}})
}

func nextForm(r *http.Request) *request.Form {
	f := request.NewForm(nil)
	if next := r.URL.Query().Get("next"); next != "" {
		f.Values.Set("next", next)
	}
	return f
}

func (h *Auth) SignInForm(w http.ResponseWriter, r *http.Request) {
	f := nextForm(r)
	if identityOf(r).IsCustomer() {
		seeOther(w, r, request.SafeNext(f.String("next"), customerHome))
		return
	}
	h.signInPage(w, r, http.StatusOK, "sign_in", "/sign-in", f, "")
}

func (h *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	id, err := h.auth.SignInCustomer(r.Context(), f.String("email"), f.Raw("password"))
	if err != nil {
		status, msg := signInFailure(r, err)
		h.signInPage(w, r, status, "sign_in", "/sign-in", f, msg)
		return
	}
	if !h.startSession(w, r, id) {
		return
	}

	h.renderer.Flash(w, render.FlashSuccess, "Welcome back, "+id.Name+".")
	seeOther(w, r, request.SafeNext(f.String("next"), customerHome))
}

func signInFailure(r *http.Request, err error) (int, string) {
	if errors.Is(err, core.ErrInvalidCredentials) {
		return http.StatusUnauthorized, "Invalid email or password."
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign in")
	return http.StatusBadGateway, "Sign-in is unavailable right now. Please try again later."
}

func (h *Auth) startSession(w http.ResponseWriter, r *http.Request, id model.Identity) bool {
	if err := h.sessions.Start(w, id); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("start session")
		h.renderer.Error(w, r, http.StatusInternalServerError, "Your session could not be started.")
		return false
	}
	return true
}

type signUpForm struct {
	FirstName       string `form:"firstName" validate:"required,max=60"`
	LastName        string `form:"lastName" validate:"required,max=60"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
	License         string `form:"license" validate:"required,max=30"`
	CellNo          string `form:"cellNo" validate:"required,max=20"`
}

var signUpFields = []fieldSpec{
	{name: "firstName", label: "First name", typ: "text", required: true},
	{name: "lastName", label: "Last name", typ: "text", required: true},
	{name: "email", label: "Email", typ: "email", required: true},
	{name: "password", label: "Password", typ: "password", required: true, help: "At least 6 characters."},
	{name: "confirmPassword", label: "Confirm password", typ: "password", required: true},
	{name: "license", label: "Driver's licence number", typ: "text", required: true},
	{name: "cellNo", label: "Cell number", typ: "tel", required: true},
}

type SignUpData struct {
	Form render.FormView
}

func (h *Auth) signUpPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	h.renderer.Page(w, r, status, "sign_up", "Sign up", SignUpData{Form: render.FormView{
		Action: "/sign-up",
		Submit: "Create account",
		Fields: buildFields(f, signUpFields),
		Hidden: map[string]string{"next": f.String("next")},
		Error:  formErr,
	}})
}

func (h *Auth) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.signUpPage(w, r, http.StatusOK, nextForm(r), "")
}

// SignUp creates the customer in the backend and signs them in.
func (h *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	in := signUpForm{
		FirstName:       f.String("firstName"),
		LastName:        f.String("lastName"),
		Email:           f.String("email"),
		Password:        f.Raw("password"),
		ConfirmPassword: f.Raw("confirmPassword"),
		License:         f.String("license"),
		CellNo:          f.String("cellNo"),
	}
	if !f.Validate(in) {
		h.signUpPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}

	created, err := h.client.CreateCustomer(r.Context(), model.Customer{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		License:   in.License,
		CellNo:    in.CellNo,
	})
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrConflict):
			f.AddError("email", "An account with this email already exists.")
			h.signUpPage(w, r, http.StatusConflict, f, "")
		case errors.Is(err, backend.ErrRejected):
			h.signUpPage(w, r, http.StatusUnprocessableEntity, f, "Your details were rejected. Please check them and try again.")
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("create customer")
			h.signUpPage(w, r, http.StatusBadGateway, f, "Sign-up is unavailable right now. Please try again later.")
		}
		return
	}

	id := model.CustomerIdentity(*created)
	if created.CustomerID == 0 {
		// Some backend versions answer without the new ID.
		id, err = h.auth.SignInCustomer(r.Context(), in.Email, in.Password)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign in after sign-up")
			h.renderer.Flash(w, render.FlashSuccess, "Your account was created. Please sign in.")
			seeOther(w, r, "/sign-in")
			return
		}
	}
	if !h.startSession(w, r, id) {
		return
	}

	h.renderer.Flash(w, render.FlashSuccess, "Welcome to SwiftWheelz, "+created.FirstName+"!")
	seeOther(w, r, request.SafeNext(f.String("next"), customerHome))
}

func (h *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w)
	h.renderer.Flash(w, render.FlashSuccess, "You have been signed out.")
	seeOther(w, r, "/")
}

func (h *Auth) AdminSignInForm(w http.ResponseWriter, r *http.Request) {
	f := nextForm(r)
	if identityOf(r).IsAdmin() {
		seeOther(w, r, request.SafeNext(f.String("next"), adminHome))
		return
	}
	h.signInPage(w, r, http.StatusOK, "admin_sign_in", "/admin-portal/sign-in", f, "")
}

// AdminSignIn signs an employee in. Only administrators get a session.
func (h *Auth) AdminSignIn(w http.ResponseWriter, r *http.Request) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	id, err := h.auth.SignInEmployee(r.Context(), f.String("email"), f.Raw("password"))
	if err != nil {
		status, msg := signInFailure(r, err)
		h.signInPage(w, r, status, "admin_sign_in", "/admin-portal/sign-in", f, msg)
		return
	}
	if !id.IsAdmin() {
		h.signInPage(w, r, http.StatusForbidden, "admin_sign_in", "/admin-portal/sign-in", f,
			"Only administrators can access the dashboard.")
		return
	}
	if !h.startSession(w, r, id) {
		return
	}

	h.renderer.Flash(w, render.FlashSuccess, "Signed in as "+id.Name+".")
	seeOther(w, r, request.SafeNext(f.String("next"), adminHome))
}
