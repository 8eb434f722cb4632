package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/money"
	"github.com/edvin/swiftwheelz/internal/web/render"
)

const rentalsURL = dashboard + "/rented-trucks"

func rentalFilters(active string) []AdminFilter {
	return []AdminFilter{
		{Label: "All", URL: rentalsURL, Active: active == ""},
		{Label: "Paid", URL: rentalsURL + "?status=" + model.StatusPaid, Active: active == model.StatusPaid},
		{Label: "Unpaid", URL: rentalsURL + "?status=" + model.StatusUnpaid, Active: active == model.StatusUnpaid},
	}
}

func rentalCells(rt model.Rental) []string {
	customer, truck := "-", "-"
	if rt.Customer != nil {
		customer = rt.Customer.FullName()
		if rt.Customer.Email != "" {
			customer += " (" + rt.Customer.Email + ")"
		}
	}
	if rt.Truck != nil {
		truck = rt.Truck.Title() + " " + rt.Truck.VIN
	}
	status := "Unpaid"
	if rt.IsPaymentMade {
		status = "Paid"
	}
	return []string{
		strconv.Itoa(rt.RentID),
		customer,
		truck,
		branchName(rt.PickUp) + " to " + branchName(rt.DropOff),
		rt.RentDate + " to " + rt.ReturnDate,
		money.Format(rt.TotalCost),
		status,
	}
}

func branchName(b *model.Branch) string {
	if b == nil || b.BranchName == "" {
		return "-"
	}
	return b.BranchName
}

// Rentals lists rented trucks, optionally narrowed by ?status=paid|unpaid.
// Unknown status values show everything.
func (h *Admin) Rentals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != model.StatusPaid && status != model.StatusUnpaid {
		status = ""
	}

	data := AdminListData{
		Heading: "Rented trucks",
		Columns: []string{"Rental", "Customer", "Truck", "Route", "Dates", "Total", "Payment"},
		Filters: rentalFilters(status),
		Empty:   "No rentals match this filter.",
	}

	rentals, err := h.client.ListRentals(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list rentals")
		data.LoadError = msgLoadFailed
	}
	rentals = model.FilterRentalsByStatus(rentals, status)
	sort.SliceStable(rentals, func(i, j int) bool { return rentals[i].RentDate > rentals[j].RentDate })

	for _, rt := range rentals {
		u := rentalsURL + "/" + strconv.Itoa(rt.RentID)
		row := AdminRow{Cells: rentalCells(rt)}
		if !rt.IsPaymentMade {
			row.Actions = append(row.Actions, AdminAction{Label: "Mark as paid", URL: u + "/mark-paid"})
		}
		row.Actions = append(row.Actions, deleteAction(u))
		data.Rows = append(data.Rows, row)
	}
	h.listPage(w, r, http.StatusOK, data)
}

// MarkRentalPaid records payment for a rental settled outside the site.
func (h *Admin) MarkRentalPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	rt, err := h.client.GetRental(r.Context(), id)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Rental not found.")
		return
	}
	if !rt.IsPaymentMade {
		rt.IsPaymentMade = true
		if _, err := h.client.UpdateRental(r.Context(), *rt); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Int("rent_id", id).Msg("mark rental paid")
			h.renderer.Flash(w, render.FlashError, "The rental could not be updated. Please try again later.")
			seeOther(w, r, rentalsURL)
			return
		}
	}
	h.renderer.Flash(w, render.FlashSuccess, fmt.Sprintf("Rental #%d marked as paid.", id))
	seeOther(w, r, rentalsURL)
}

func (h *Admin) DeleteRental(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	err := h.client.DeleteRental(r.Context(), id)
	h.afterDelete(w, r, err, fmt.Sprintf("Rental #%d deleted.", id), rentalsURL)
}
