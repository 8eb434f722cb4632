package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/images"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

const dashboard = "/admin-portal/dashboard"

// Admin serves the admin dashboard. Every route runs behind RequireAdmin.
type Admin struct {
	client   *backend.Client
	images   *images.Store
	renderer *render.Renderer
}

func NewAdmin(client *backend.Client, imgs *images.Store, renderer *render.Renderer) *Admin {
	return &Admin{client: client, images: imgs, renderer: renderer}
}

// AdminAction is a row button posting to URL.
type AdminAction struct {
	Label   string
	URL     string
	Confirm string
	Danger  bool
}

type AdminRow struct {
	Cells   []string
	EditURL string
	Actions []AdminAction
}

// AdminFilter is a tab narrowing a list.
type AdminFilter struct {
	Label  string
	URL    string
	Active bool
}

// AdminListData backs the generic dashboard list page.
type AdminListData struct {
	Heading   string
	Columns   []string
	Rows      []AdminRow
	Filters   []AdminFilter
	Empty     string
	LoadError string
	Create    *render.FormView
}

type AdminEditData struct {
	Heading string
	BackURL string
	Form    render.FormView
}

func (h *Admin) Index(w http.ResponseWriter, r *http.Request) {
	seeOther(w, r, dashboard+"/trucks")
}

func (h *Admin) listPage(w http.ResponseWriter, r *http.Request, status int, data AdminListData) {
	h.renderer.Page(w, r, status, "admin_list", data.Heading, data)
}

func (h *Admin) editPage(w http.ResponseWriter, r *http.Request, status int, heading, backURL string, form render.FormView) {
	h.renderer.Page(w, r, status, "admin_edit", heading, AdminEditData{Heading: heading, BackURL: backURL, Form: form})
}

// intID reads the {id} path parameter.
func (h *Admin) intID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := request.RequireIntID(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "Invalid ID.")
		return 0, false
	}
	return id, true
}

func (h *Admin) parseForm(w http.ResponseWriter, r *http.Request) (*request.Form, bool) {
	f, err := request.ParseForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return nil, false
	}
	return f, true
}

func deleteAction(url string) AdminAction {
	return AdminAction{Label: "Delete", URL: url + "/delete", Confirm: "Delete this record?", Danger: true}
}

// writeFailure maps a failed create or update to a status and form message.
func writeFailure(r *http.Request, err error) (int, string) {
	switch {
	case errors.Is(err, backend.ErrConflict):
		return http.StatusConflict, "These details clash with an existing record."
	case errors.Is(err, backend.ErrRejected):
		return http.StatusUnprocessableEntity, "The details were rejected. Please check them and try again."
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, "This record no longer exists."
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("save record")
		return http.StatusBadGateway, msgBackendDown
	}
}

// afterDelete flashes the outcome of a delete and returns to listURL.
func (h *Admin) afterDelete(w http.ResponseWriter, r *http.Request, err error, done, listURL string) {
	switch {
	case err == nil, errors.Is(err, backend.ErrNotFound):
		h.renderer.Flash(w, render.FlashSuccess, done)
	case errors.Is(err, backend.ErrConflict):
		h.renderer.Flash(w, render.FlashError, "This record is still in use and cannot be deleted.")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("delete record")
		h.renderer.Flash(w, render.FlashError, "The record could not be deleted. Please try again later.")
	}
	seeOther(w, r, listURL)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
