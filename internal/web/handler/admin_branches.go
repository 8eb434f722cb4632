package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/money"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

// ---------- branches ----------

// The dashboard path has always been spelled this way; links in the wild
// depend on it.
const branchesURL = dashboard + "/branchez"

var branchFields = []fieldSpec{
	{name: "branchName", label: "Branch name", typ: "text", required: true},
	{name: "street", label: "Street", typ: "text", required: true},
	{name: "city", label: "City", typ: "text", required: true},
	{name: "postalCode", label: "Postal code", typ: "text", required: true},
	{name: "phoneNumber", label: "Phone number", typ: "tel", required: true},
}

type branchForm struct {
	BranchName  string `form:"branchName" validate:"required,max=80"`
	Street      string `form:"street" validate:"required,max=120"`
	City        string `form:"city" validate:"required,max=60"`
	PostalCode  string `form:"postalCode" validate:"required,numeric,max=10"`
	PhoneNumber string `form:"phoneNumber" validate:"required,max=20"`
}

func branchFromForm(f *request.Form, id int) (model.Branch, bool) {
	in := branchForm{
		BranchName:  f.String("branchName"),
		Street:      f.String("street"),
		City:        f.String("city"),
		PostalCode:  f.String("postalCode"),
		PhoneNumber: f.String("phoneNumber"),
	}
	if !f.Validate(in) {
		return model.Branch{}, false
	}
	return model.Branch{
		BranchID:    id,
		BranchName:  in.BranchName,
		Address:     model.Address{Street: in.Street, City: in.City, PostalCode: in.PostalCode},
		PhoneNumber: in.PhoneNumber,
	}, true
}

func (h *Admin) branchesPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	branches, err := h.client.ListBranches(r.Context())
	data := AdminListData{
		Heading: "Branches",
		Columns: []string{"ID", "Branch", "Address", "Phone"},
		Empty:   "No branches have been added yet.",
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list branches")
		data.LoadError = msgLoadFailed
	}
	for _, b := range branches {
		u := branchesURL + "/" + strconv.Itoa(b.BranchID)
		data.Rows = append(data.Rows, AdminRow{
			Cells:   []string{strconv.Itoa(b.BranchID), b.BranchName, b.Address.String(), b.PhoneNumber},
			EditURL: u + "/edit",
			Actions: []AdminAction{deleteAction(u)},
		})
	}
	data.Create = &render.FormView{
		Action: branchesURL,
		Submit: "Add branch",
		Fields: buildFields(f, branchFields),
		Error:  formErr,
	}
	h.listPage(w, r, status, data)
}

func (h *Admin) Branches(w http.ResponseWriter, r *http.Request) {
	h.branchesPage(w, r, http.StatusOK, request.NewForm(nil), "")
}

func (h *Admin) CreateBranch(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	b, ok := branchFromForm(f, 0)
	if !ok {
		h.branchesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	if _, err := h.client.CreateBranch(r.Context(), b); err != nil {
		status, msg := writeFailure(r, err)
		h.branchesPage(w, r, status, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Branch "+b.BranchName+" added.")
	seeOther(w, r, branchesURL)
}

func (h *Admin) branchEditPage(w http.ResponseWriter, r *http.Request, status, id int, f *request.Form, formErr string) {
	h.editPage(w, r, status, "Edit branch", branchesURL, render.FormView{
		Action: branchesURL + "/" + strconv.Itoa(id),
		Submit: "Save branch",
		Fields: buildFields(f, branchFields),
		Error:  formErr,
	})
}

func (h *Admin) EditBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	b, err := h.client.GetBranch(r.Context(), id)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Branch not found.")
		return
	}
	h.branchEditPage(w, r, http.StatusOK, id, request.NewForm(url.Values{
		"branchName":  {b.BranchName},
		"street":      {b.Address.Street},
		"city":        {b.Address.City},
		"postalCode":  {b.Address.PostalCode},
		"phoneNumber": {b.PhoneNumber},
	}), "")
}

func (h *Admin) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	b, ok := branchFromForm(f, id)
	if !ok {
		h.branchEditPage(w, r, http.StatusUnprocessableEntity, id, f, "")
		return
	}
	if _, err := h.client.UpdateBranch(r.Context(), b); err != nil {
		status, msg := writeFailure(r, err)
		h.branchEditPage(w, r, status, id, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Branch "+b.BranchName+" updated.")
	seeOther(w, r, branchesURL)
}

func (h *Admin) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	err := h.client.DeleteBranch(r.Context(), id)
	h.afterDelete(w, r, err, "Branch deleted.", branchesURL)
}

// ---------- insurances ----------

const insurancesURL = dashboard + "/insurances"

var insuranceFields = []fieldSpec{
	{name: "insuranceType", label: "Insurance type", typ: "text", required: true},
	{name: "provider", label: "Provider", typ: "text", required: true},
	{name: "policyNumber", label: "Policy number", typ: "text", required: true},
	{name: "coverage", label: "Coverage", typ: "textarea", required: true},
	{name: "premium", label: "Premium (R)", typ: "number", required: true, step: "0.01"},
}

type insuranceForm struct {
	InsuranceType string  `form:"insuranceType" validate:"required,max=60"`
	Provider      string  `form:"provider" validate:"required,max=80"`
	PolicyNumber  string  `form:"policyNumber" validate:"required,max=40"`
	Coverage      string  `form:"coverage" validate:"required,max=200"`
	Premium       float64 `form:"premium" validate:"gte=0"`
}

func insuranceFromForm(f *request.Form, id int) (model.Insurance, bool) {
	in := insuranceForm{
		InsuranceType: f.String("insuranceType"),
		Provider:      f.String("provider"),
		PolicyNumber:  f.String("policyNumber"),
		Coverage:      f.String("coverage"),
		Premium:       f.Float("premium"),
	}
	if !f.Validate(in) {
		return model.Insurance{}, false
	}
	return model.Insurance{
		InsuranceID:   id,
		InsuranceType: in.InsuranceType,
		Provider:      in.Provider,
		PolicyNumber:  in.PolicyNumber,
		Coverage:      in.Coverage,
		Premium:       in.Premium,
	}, true
}

func (h *Admin) insurancesPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	insurances, err := h.client.ListInsurances(r.Context())
	data := AdminListData{
		Heading: "Insurances",
		Columns: []string{"ID", "Type", "Provider", "Policy", "Coverage", "Premium"},
		Empty:   "No insurance products have been added yet.",
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list insurances")
		data.LoadError = msgLoadFailed
	}
	for _, i := range insurances {
		u := insurancesURL + "/" + strconv.Itoa(i.InsuranceID)
		data.Rows = append(data.Rows, AdminRow{
			Cells: []string{
				strconv.Itoa(i.InsuranceID), i.InsuranceType, i.Provider,
				i.PolicyNumber, i.Coverage, money.Format(i.Premium),
			},
			EditURL: u + "/edit",
			Actions: []AdminAction{deleteAction(u)},
		})
	}
	data.Create = &render.FormView{
		Action: insurancesURL,
		Submit: "Add insurance",
		Fields: buildFields(f, insuranceFields),
		Error:  formErr,
	}
	h.listPage(w, r, status, data)
}

func (h *Admin) Insurances(w http.ResponseWriter, r *http.Request) {
	h.insurancesPage(w, r, http.StatusOK, request.NewForm(nil), "")
}

func (h *Admin) CreateInsurance(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	ins, ok := insuranceFromForm(f, 0)
	if !ok {
		h.insurancesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	if _, err := h.client.CreateInsurance(r.Context(), ins); err != nil {
		status, msg := writeFailure(r, err)
		h.insurancesPage(w, r, status, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Insurance added.")
	seeOther(w, r, insurancesURL)
}

func (h *Admin) insuranceEditPage(w http.ResponseWriter, r *http.Request, status, id int, f *request.Form, formErr string) {
	h.editPage(w, r, status, "Edit insurance", insurancesURL, render.FormView{
		Action: insurancesURL + "/" + strconv.Itoa(id),
		Submit: "Save insurance",
		Fields: buildFields(f, insuranceFields),
		Error:  formErr,
	})
}

func (h *Admin) EditInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	ins, err := h.client.GetInsurance(r.Context(), id)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Insurance not found.")
		return
	}
	h.insuranceEditPage(w, r, http.StatusOK, id, request.NewForm(url.Values{
		"insuranceType": {ins.InsuranceType},
		"provider":      {ins.Provider},
		"policyNumber":  {ins.PolicyNumber},
		"coverage":      {ins.Coverage},
		"premium":       {strconv.FormatFloat(ins.Premium, 'f', 2, 64)},
	}), "")
}

func (h *Admin) UpdateInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	ins, ok := insuranceFromForm(f, id)
	if !ok {
		h.insuranceEditPage(w, r, http.StatusUnprocessableEntity, id, f, "")
		return
	}
	if _, err := h.client.UpdateInsurance(r.Context(), ins); err != nil {
		status, msg := writeFailure(r, err)
		h.insuranceEditPage(w, r, status, id, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Insurance updated.")
	seeOther(w, r, insurancesURL)
}

func (h *Admin) DeleteInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	err := h.client.DeleteInsurance(r.Context(), id)
	h.afterDelete(w, r, err, "Insurance deleted.", insurancesURL)
}
