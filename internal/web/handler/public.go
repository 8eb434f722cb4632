package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/images"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

// Public serves the pages anyone can see.
type Public struct {
	client   *backend.Client
	images   *images.Store
	renderer *render.Renderer
}

func NewPublic(client *backend.Client, imgs *images.Store, renderer *render.Renderer) *Public {
	return &Public{client: client, images: imgs, renderer: renderer}
}

// TruckCard is an available truck with its photos.
type TruckCard struct {
	Truck  model.Truck
	Images []images.Image
}

type HomeData struct {
	Trucks    []TruckCard
	LoadError string
}

// Home lists the trucks available for rent. Trucks and images are fetched
// concurrently; missing images never block the page.
func (h *Public) Home(w http.ResponseWriter, r *http.Request) {
	var (
		trucks   []model.Truck
		byVIN    map[string][]images.Image
		trucksOK = true
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		trucks, err = h.client.ListTrucks(ctx)
		return err
	})
	if h.images.Enabled() {
		g.Go(func() error {
			var err error
			byVIN, err = h.images.ListAll(ctx)
			if err != nil && !errors.Is(err, ctx.Err()) {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("list truck images")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list trucks")
		trucksOK = false
	}

	data := HomeData{}
	if !trucksOK {
		data.LoadError = "Unable to load trucks right now. Please try again later."
	}
	for _, t := range trucks {
		if t.Availability {
			data.Trucks = append(data.Trucks, TruckCard{Truck: t, Images: byVIN[t.VIN]})
		}
	}
	h.renderer.Page(w, r, http.StatusOK, "home", "Home", data)
}

func (h *Public) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "about", "About us", nil)
}

type BranchesData struct {
	Branches  []model.Branch
	LoadError string
}

func (h *Public) Branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.client.ListBranches(r.Context())
	data := BranchesData{Branches: branches}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list branches")
		data.LoadError = "Unable to load branches right now. Please try again later."
	}
	h.renderer.Page(w, r, http.StatusOK, "branches", "Our branches", data)
}

type contactForm struct {
	FirstName string `form:"firstName" validate:"required,max=60"`
	LastName  string `form:"lastName" validate:"required,max=60"`
	Email     string `form:"email" validate:"required,email"`
	Subject   string `form:"subject" validate:"required,max=120"`
	Message   string `form:"message" validate:"required,max=2000"`
}

var contactFields = []fieldSpec{
	{name: "firstName", label: "First name", typ: "text", required: true},
	{name: "lastName", label: "Last name", typ: "text", required: true},
	{name: "email", label: "Email", typ: "email", required: true},
	{name: "subject", label: "Subject", typ: "text", required: true},
	{name: "message", label: "Message", typ: "textarea", required: true},
}

type ContactData struct {
	Form render.FormView
}

func (h *Public) contactPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	h.renderer.Page(w, r, status, "contact", "Contact us", ContactData{Form: render.FormView{
		Action: "/contact-us",
		Submit: "Send message",
		Fields: buildFields(f, contactFields),
		Error:  formErr,
	}})
}

func (h *Public) ContactForm(w http.ResponseWriter, r *http.Request) {
	f := request.NewForm(nil)
	if id := identityOf(r); id != nil && id.IsCustomer() {
		f.Values.Set("email", id.Email)
	}
	h.contactPage(w, r, http.StatusOK, f, "")
}

func (h *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	in := contactForm{
		FirstName: f.String("firstName"),
		LastName:  f.String("lastName"),
		Email:     f.String("email"),
		Subject:   f.String("subject"),
		Message:   f.String("message"),
	}
	if !f.Validate(in) {
		h.contactPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}

	_, err = h.client.SubmitContactMessage(r.Context(), model.ContactMessage{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Subject:     in.Subject,
		Message:     in.Message,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("submit contact message")
		h.contactPage(w, r, http.StatusBadGateway, f, "Your message could not be sent. Please try again later.")
		return
	}

	h.renderer.Flash(w, render.FlashSuccess, "Thank you, your message has been sent.")
	seeOther(w, r, "/contact-us")
}
