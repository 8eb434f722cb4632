package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/core"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

// Quote runs the get-quote, confirm-details and payment flow.
type Quote struct {
	client   *backend.Client
	auth     *core.AuthService
	calc     *core.QuoteCalculator
	payments core.PaymentCache
	renderer *render.Renderer
	now      func() time.Time
}

func NewQuote(client *backend.Client, auth *core.AuthService, calc *core.QuoteCalculator, payments core.PaymentCache, renderer *render.Renderer) *Quote {
	return &Quote{client: client, auth: auth, calc: calc, payments: payments, renderer: renderer, now: time.Now}
}

type quoteOptions struct {
	truck      *model.Truck
	branches   []model.Branch
	insurances []model.Insurance
}

// loadOptions fetches the truck, branches and insurance options concurrently.
func (h *Quote) loadOptions(r *http.Request, vin string) (*quoteOptions, error) {
	var opts quoteOptions
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		opts.truck, err = h.client.GetTruck(ctx, vin)
		return err
	})
	g.Go(func() error {
		var err error
		opts.branches, err = h.client.ListBranches(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.insurances, err = h.client.ListInsurances(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (o *quoteOptions) branch(id int) *model.Branch {
	for i := range o.branches {
		if o.branches[i].BranchID == id {
			return &o.branches[i]
		}
	}
	return nil
}

func (o *quoteOptions) insurance(id int) *model.Insurance {
	for i := range o.insurances {
		if o.insurances[i].InsuranceID == id {
			return &o.insurances[i]
		}
	}
	return nil
}

type QuoteFormData struct {
	Truck     model.Truck
	Available bool
	Form      render.FormView
}

func (h *Quote) formPage(w http.ResponseWriter, r *http.Request, status int, opts *quoteOptions, f *request.Form, formErr string) {
	branches := make([]render.Option, len(opts.branches))
	for i, b := range opts.branches {
		branches[i] = render.Option{Value: strconv.Itoa(b.BranchID), Label: b.BranchName}
	}
	insurances := make([]render.Option, len(opts.insurances))
	for i, ins := range opts.insurances {
		insurances[i] = render.Option{Value: strconv.Itoa(ins.InsuranceID), Label: ins.InsuranceType + " (" + ins.Provider + ")"}
	}
	today := h.now().Format(model.DateLayout)

	h.renderer.Page(w, r, status, "quote_form", "Get a quote", QuoteFormData{
		Truck:     *opts.truck,
		Available: opts.truck.Availability && opts.truck.RatePerDay() > 0,
		Form: render.FormView{
			Action: "/get-quote/" + opts.truck.VIN,
			Submit: "Calculate quote",
			Fields: buildFields(f, []fieldSpec{
				{name: "pickUp", label: "Pick-up branch", typ: "select", required: true, options: branches},
				{name: "dropOff", label: "Drop-off branch", typ: "select", required: true, options: branches},
				{name: "rentDate", label: "Rent date", typ: "date", required: true, help: "From " + today + "."},
				{name: "returnDate", label: "Return date", typ: "date", required: true},
				{name: "insurance", label: "Insurance", typ: "select", options: insurances, help: "Optional. The premium is charged per day."},
			}),
			Error: formErr,
		},
	})
}

func (h *Quote) QuoteForm(w http.ResponseWriter, r *http.Request) {
	opts, err := h.loadOptions(r, chi.URLParam(r, "truckId"))
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Truck not found.")
		return
	}
	h.formPage(w, r, http.StatusOK, opts, request.NewForm(nil), "")
}

type quoteForm struct {
	PickUp     int    `form:"pickUp" validate:"required"`
	DropOff    int    `form:"dropOff" validate:"required"`
	RentDate   string `form:"rentDate" validate:"required,datetime=2006-01-02"`
	ReturnDate string `form:"returnDate" validate:"required,datetime=2006-01-02"`
}

type QuoteResultData struct {
	Quote model.PendingPayment
	Token string
}

// Calculate prices the requested rental and shows the quote with a signed
// token that carries it to the confirm-details page.
func (h *Quote) Calculate(w http.ResponseWriter, r *http.Request) {
	opts, err := h.loadOptions(r, chi.URLParam(r, "truckId"))
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Truck not found.")
		return
	}
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	in := quoteForm{
		PickUp:     f.Int("pickUp"),
		DropOff:    f.Int("dropOff"),
		RentDate:   f.String("rentDate"),
		ReturnDate: f.String("returnDate"),
	}
	if !f.Validate(in) {
		h.formPage(w, r, http.StatusUnprocessableEntity, opts, f, "")
		return
	}

	req := core.QuoteRequest{
		Truck:      *opts.truck,
		PickUp:     opts.branch(in.PickUp),
		DropOff:    opts.branch(in.DropOff),
		RentDate:   in.RentDate,
		ReturnDate: in.ReturnDate,
	}
	if insID := f.Int("insurance"); insID != 0 {
		req.Insurance = opts.insurance(insID)
		if req.Insurance == nil {
			f.AddError("insurance", "Choose one of the listed options.")
			h.formPage(w, r, http.StatusUnprocessableEntity, opts, f, "")
			return
		}
	}

	quote, err := h.calc.Calculate(req, h.now())
	if err != nil {
		h.formPage(w, r, http.StatusUnprocessableEntity, opts, f, quoteErrorMessage(err))
		return
	}

	token, err := h.auth.IssueQuote(quote)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("issue quote token")
		h.renderer.Error(w, r, http.StatusInternalServerError, "The quote could not be prepared.")
		return
	}

	h.renderer.Page(w, r, http.StatusOK, "quote_result", "Your quote", QuoteResultData{Quote: quote, Token: token})
}

// quoteErrorMessage turns a calculator error into a sentence for the form.
func quoteErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDates), errors.Is(err, core.ErrRentalTooLong),
		errors.Is(err, core.ErrTruckUnavailable), errors.Is(err, core.ErrMissingBranch):
		runes := []rune(err.Error())
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes) + "."
	default:
		return "The quote could not be calculated."
	}
}

type ConfirmData struct {
	Quote    model.PendingPayment
	Token    string
	Customer *model.Customer
}

func (h *Quote) expiredQuote(w http.ResponseWriter, r *http.Request) {
	h.renderer.Error(w, r, http.StatusBadRequest, "This quote has expired or is invalid. Please request a new quote.")
}

// parseQuote verifies a quote token and refuses quotes that were already
// paid for.
func (h *Quote) parseQuote(w http.ResponseWriter, r *http.Request, token string) (model.PendingPayment, bool) {
	quote, err := h.auth.ParseQuote(token)
	if err != nil {
		h.expiredQuote(w, r)
		return model.PendingPayment{}, false
	}
	used, err := h.payments.QuoteConsumed(r.Context(), quote.QuoteID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("check quote")
		h.renderer.Error(w, r, http.StatusInternalServerError, "Your booking could not be checked. Please try again.")
		return model.PendingPayment{}, false
	}
	if used {
		h.renderer.Error(w, r, http.StatusConflict, "This quote has already been paid. Please request a new quote.")
		return model.PendingPayment{}, false
	}
	return quote, true
}

// ConfirmDetails shows the quote next to the signed-in customer's details.
func (h *Quote) ConfirmDetails(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("quote")
	quote, ok := h.parseQuote(w, r, token)
	if !ok {
		return
	}

	c, err := h.client.GetCustomer(r.Context(), identityOf(r).ID)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		backendFailure(w, r, h.renderer, err, "")
		return
	}

	h.renderer.Page(w, r, http.StatusOK, "confirm_details", "Confirm details", ConfirmData{
		Quote:    quote,
		Token:    token,
		Customer: c,
	})
}

// Confirm binds the quote to the signed-in customer and caches it as their
// pending payment. A newer confirmation replaces an older one.
func (h *Quote) Confirm(w http.ResponseWriter, r *http.Request) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	quote, ok := h.parseQuote(w, r, f.String("quote"))
	if !ok {
		return
	}

	quote.CustomerID = identityOf(r).ID
	quote.CreatedAt = h.now().UTC()
	if err := h.payments.Put(r.Context(), quote); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("cache pending payment")
		h.renderer.Error(w, r, http.StatusInternalServerError, "Your booking could not be saved. Please try again.")
		return
	}

	seeOther(w, r, "/payment")
}

type PaymentData struct {
	Pending *model.PendingPayment
}

func (h *Quote) Payment(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "payment", "Payment", PaymentData{
		Pending: pendingFor(r, h.payments, identityOf(r).ID),
	})
}

// Pay finalizes the pending payment now (action=pay) or leaves it for later
// (action=later).
func (h *Quote) Pay(w http.ResponseWriter, r *http.Request) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	switch f.String("action") {
	case "pay":
		if finalizePending(w, r, h.client, h.payments, h.renderer) {
			seeOther(w, r, "/customer/rentals")
			return
		}
		seeOther(w, r, "/payment")
	case "later":
		h.renderer.Flash(w, render.FlashSuccess, "Your booking is saved. You can finalize the payment from your profile.")
		seeOther(w, r, customerHome)
	default:
		h.renderer.Error(w, r, http.StatusBadRequest, "Unknown payment action.")
	}
}
