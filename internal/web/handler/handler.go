// Package handler implements the page and form handlers of the web front end.
package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/middleware"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

const (
	msgBackendDown = "We could not reach the rental service. Please try again shortly."
	msgLoadFailed  = "Unable to load data right now. Please try again later."
)

// fieldSpec describes one input of a form.
type fieldSpec struct {
	name     string
	label    string
	typ      string
	required bool
	options  []render.Option
	step     string
	help     string
}

// buildFields turns specs into renderable fields, filling values and errors
// from f. Password and file inputs are never echoed back.
func buildFields(f *request.Form, specs []fieldSpec) []render.Field {
	out := make([]render.Field, 0, len(specs))
	for _, s := range specs {
		fld := render.Field{
			Name:     s.name,
			Label:    s.label,
			Type:     s.typ,
			Required: s.required,
			Step:     s.step,
			Help:     s.help,
			Error:    f.Errors[s.name],
		}
		switch s.typ {
		case "password", "file":
		case "checkbox":
			fld.Checked = f.Bool(s.name)
		case "select":
			selected := f.String(s.name)
			fld.Options = make([]render.Option, len(s.options))
			for i, o := range s.options {
				o.Selected = o.Value == selected
				fld.Options[i] = o
			}
		default:
			fld.Value = f.String(s.name)
		}
		out = append(out, fld)
	}
	return out
}

// backendFailure logs err and renders the error page: 404 for records the
// backend does not have, 502 for everything else.
func backendFailure(w http.ResponseWriter, r *http.Request, rd *render.Renderer, err error, notFound string) {
	if errors.Is(err, backend.ErrNotFound) {
		rd.Error(w, r, http.StatusNotFound, notFound)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("backend call failed")
	rd.Error(w, r, http.StatusBadGateway, msgBackendDown)
}

func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func identityOf(r *http.Request) *model.Identity {
	return middleware.GetIdentity(r.Context())
}
