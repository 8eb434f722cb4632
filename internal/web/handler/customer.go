package handler

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/core"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/receipt"
	"github.com/edvin/swiftwheelz/internal/web/middleware"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

// Customer serves the signed-in customer's own pages. Every route runs behind
// RequireCustomer, so the identity is always a customer.
type Customer struct {
	client   *backend.Client
	payments core.PaymentCache
	sessions *middleware.Sessions
	renderer *render.Renderer
}

func NewCustomer(client *backend.Client, payments core.PaymentCache, sessions *middleware.Sessions, renderer *render.Renderer) *Customer {
	return &Customer{client: client, payments: payments, sessions: sessions, renderer: renderer}
}

// pendingFor returns the cached pending payment of customerID, or nil. Cache
// failures are logged and treated as no pending payment.
func pendingFor(r *http.Request, payments core.PaymentCache, customerID int) *model.PendingPayment {
	p, err := payments.Get(r.Context(), customerID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load pending payment")
		return nil
	}
	if !p.BelongsTo(customerID) {
		return nil
	}
	return p
}

type ProfileData struct {
	// Customer is nil when the backend has no record for the session.
	Customer *model.Customer
	Pending  *model.PendingPayment
}

// Profile fetches the customer on every request and shows the pending
// payment only when it was made for this customer.
func (h *Customer) Profile(w http.ResponseWriter, r *http.Request) {
	id := identityOf(r)

	c, err := h.client.GetCustomer(r.Context(), id.ID)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		backendFailure(w, r, h.renderer, err, "")
		return
	}

	h.renderer.Page(w, r, http.StatusOK, "profile", "My profile", ProfileData{
		Customer: c,
		Pending:  pendingFor(r, h.payments, id.ID),
	})
}

type customerForm struct {
	FirstName string `form:"firstName" validate:"required,max=60"`
	LastName  string `form:"lastName" validate:"required,max=60"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"omitempty,min=6"`
	License   string `form:"license" validate:"required,max=30"`
	CellNo    string `form:"cellNo" validate:"required,max=20"`
}

var customerFields = []fieldSpec{
	{name: "firstName", label: "First name", typ: "text", required: true},
	{name: "lastName", label: "Last name", typ: "text", required: true},
	{name: "email", label: "Email", typ: "email", required: true},
	{name: "password", label: "New password", typ: "password", help: "Leave blank to keep your current password."},
	{name: "license", label: "Driver's licence number", typ: "text", required: true},
	{name: "cellNo", label: "Cell number", typ: "tel", required: true},
}

type CustomerFormData struct {
	Form render.FormView
}

func (h *Customer) editPage(w http.ResponseWriter, r *http.Request, status, customerID int, f *request.Form, formErr string) {
	h.renderer.Page(w, r, status, "customer_edit", "Update my details", CustomerFormData{Form: render.FormView{
		Action: "/update-customer/" + strconv.Itoa(customerID),
		Submit: "Save changes",
		Fields: buildFields(f, customerFields),
		Error:  formErr,
	}})
}

// ownCustomerID reads {customerID} and checks it is the signed-in customer.
func (h *Customer) ownCustomerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	customerID, err := request.RequireIntID(chi.URLParam(r, "customerID"))
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "Invalid customer ID.")
		return 0, false
	}
	if customerID != identityOf(r).ID {
		h.renderer.Error(w, r, http.StatusForbidden, "You can only update your own details.")
		return 0, false
	}
	return customerID, true
}

func (h *Customer) EditForm(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.ownCustomerID(w, r)
	if !ok {
		return
	}

	c, err := h.client.GetCustomer(r.Context(), customerID)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "No customer data available.")
		return
	}

	h.editPage(w, r, http.StatusOK, customerID, request.NewForm(url.Values{
		"firstName": {c.FirstName},
		"lastName":  {c.LastName},
		"email":     {c.Email},
		"license":   {c.License},
		"cellNo":    {c.CellNo},
	}), "")
}

// Update saves the customer's details. An empty password keeps the current one.
func (h *Customer) Update(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.ownCustomerID(w, r)
	if !ok {
		return
	}
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	in := customerForm{
		FirstName: f.String("firstName"),
		LastName:  f.String("lastName"),
		Email:     f.String("email"),
		Password:  f.Raw("password"),
		License:   f.String("license"),
		CellNo:    f.String("cellNo"),
	}
	if !f.Validate(in) {
		h.editPage(w, r, http.StatusUnprocessableEntity, customerID, f, "")
		return
	}

	// The backend rejects updates without a password, so carry the stored one.
	if in.Password == "" {
		current, err := h.client.GetCustomer(r.Context(), customerID)
		if err != nil {
			if !errors.Is(err, backend.ErrNotFound) {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("load customer for update")
			}
			h.editPage(w, r, http.StatusBadGateway, customerID, f, "Your details could not be saved. Please try again later.")
			return
		}
		if current.Password == "" {
			f.AddError("password", "Enter your password to save your changes.")
			h.editPage(w, r, http.StatusUnprocessableEntity, customerID, f, "")
			return
		}
		in.Password = current.Password
	}

	updated, err := h.client.UpdateCustomer(r.Context(), model.Customer{
		CustomerID: customerID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Password:   in.Password,
		License:    in.License,
		CellNo:     in.CellNo,
	})
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrConflict):
			f.AddError("email", "Another account already uses this email.")
			h.editPage(w, r, http.StatusConflict, customerID, f, "")
		case errors.Is(err, backend.ErrRejected):
			h.editPage(w, r, http.StatusUnprocessableEntity, customerID, f, "Your details were rejected. Please check them and try again.")
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("update customer")
			h.editPage(w, r, http.StatusBadGateway, customerID, f, "Your details could not be saved. Please try again later.")
		}
		return
	}

	// Keep the name in the header in step with the new details.
	if updated.CustomerID == 0 {
		updated.CustomerID = customerID
	}
	if err := h.sessions.Start(w, model.CustomerIdentity(*updated)); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("refresh session after update")
	}

	h.renderer.Flash(w, render.FlashSuccess, "Your details have been updated.")
	seeOther(w, r, customerHome)
}

// Delete removes the customer's account, drops their pending payment and
// signs them out.
func (h *Customer) Delete(w http.ResponseWriter, r *http.Request) {
	id := identityOf(r)

	if err := h.client.DeleteCustomer(r.Context(), id.ID); err != nil && !errors.Is(err, backend.ErrNotFound) {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("delete customer")
		h.renderer.Flash(w, render.FlashError, "Your account could not be deleted. Please try again later.")
		seeOther(w, r, customerHome)
		return
	}
	if err := h.payments.Delete(r.Context(), id.ID); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("drop pending payment of deleted customer")
	}

	h.sessions.End(w)
	h.renderer.Flash(w, render.FlashSuccess, "Your account has been deleted.")
	seeOther(w, r, "/")
}

// FinalizePayment submits the cached pending payment to the backend.
func (h *Customer) FinalizePayment(w http.ResponseWriter, r *http.Request) {
	ok := finalizePending(w, r, h.client, h.payments, h.renderer)
	if ok {
		seeOther(w, r, "/customer/rentals")
		return
	}
	seeOther(w, r, customerHome)
}

// finalizePending finalizes the signed-in customer's pending payment and sets
// the outcome flash. It reports whether a rental was created.
func finalizePending(w http.ResponseWriter, r *http.Request, client *backend.Client, payments core.PaymentCache, rd *render.Renderer) bool {
	id := identityOf(r)
	p := pendingFor(r, payments, id.ID)
	if p == nil {
		rd.Flash(w, render.FlashError, "There is no pending payment to finalize.")
		return false
	}

	rental, err := client.FinalizePayment(r.Context(), *p)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("finalize payment")
		rd.Flash(w, render.FlashError, "Failed to finalize payment.")
		return false
	}
	if err := payments.ConsumeQuote(r.Context(), p.QuoteID); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("mark quote consumed")
	}
	if err := payments.Delete(r.Context(), id.ID); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("clear finalized pending payment")
	}

	zerolog.Ctx(r.Context()).Info().Int("rent_id", rental.RentID).Msg("payment finalized")
	rd.Flash(w, render.FlashSuccess, "Payment successfully finalized.")
	return true
}

type PendingData struct {
	Pending *model.PendingPayment
}

func (h *Customer) PendingPayments(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "pending_payment", "Pending payments", PendingData{
		Pending: pendingFor(r, h.payments, identityOf(r).ID),
	})
}

type RentalsData struct {
	Rentals   []model.Rental
	LoadError string
}

// Rentals lists the customer's rentals, most recent first.
func (h *Customer) Rentals(w http.ResponseWriter, r *http.Request) {
	id := identityOf(r)
	rentals, err := h.client.ListRentalsByCustomer(r.Context(), id.ID)

	data := RentalsData{}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list customer rentals")
		data.LoadError = msgLoadFailed
	}
	for _, rental := range rentals {
		if rental.OwnedBy(id.ID) {
			data.Rentals = append(data.Rentals, rental)
		}
	}
	sort.SliceStable(data.Rentals, func(i, j int) bool {
		return data.Rentals[i].RentDate > data.Rentals[j].RentDate
	})

	h.renderer.Page(w, r, http.StatusOK, "rentals", "My rentals", data)
}

// Receipt downloads a PDF receipt for one of the customer's rentals. Rentals
// of other customers are reported as not found.
func (h *Customer) Receipt(w http.ResponseWriter, r *http.Request) {
	rentID, err := request.RequireIntID(chi.URLParam(r, "rentID"))
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "Invalid rental number.")
		return
	}

	rental, err := h.client.GetRental(r.Context(), rentID)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Rental not found.")
		return
	}
	if !rental.OwnedBy(identityOf(r).ID) {
		h.renderer.Error(w, r, http.StatusNotFound, "Rental not found.")
		return
	}

	pdf, err := receipt.Render(*rental, time.Now())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render receipt")
		h.renderer.Error(w, r, http.StatusInternalServerError, "The receipt could not be generated.")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(*rental)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
