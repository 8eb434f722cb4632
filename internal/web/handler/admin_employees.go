package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

const employeesURL = dashboard + "/employees"

func roleOptions() []render.Option {
	out := make([]render.Option, len(model.Roles))
	for i, r := range model.Roles {
		out[i] = render.Option{Value: string(r), Label: r.DisplayName()}
	}
	return out
}

func employeeFields(creating bool) []fieldSpec {
	password := fieldSpec{name: "password", label: "Password", typ: "password", required: true}
	if !creating {
		password.required = false
		password.help = "Leave blank to keep the current password."
	}
	return []fieldSpec{
		{name: "firstName", label: "First name", typ: "text", required: true},
		{name: "lastName", label: "Last name", typ: "text", required: true},
		{name: "email", label: "Email", typ: "email", required: true},
		password,
		{name: "role", label: "Role", typ: "select", required: true, options: roleOptions()},
	}
}

type employeeForm struct {
	FirstName string `form:"firstName" validate:"required,max=60"`
	LastName  string `form:"lastName" validate:"required,max=60"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"omitempty,min=6"`
	Role      string `form:"role" validate:"required,oneof=ADMIN RENTAL_AGENT MECHANIC HELP_DESK"`
}

func employeeFromForm(f *request.Form, number int, creating bool) (model.Employee, bool) {
	in := employeeForm{
		FirstName: f.String("firstName"),
		LastName:  f.String("lastName"),
		Email:     f.String("email"),
		Password:  f.Raw("password"),
		Role:      f.String("role"),
	}
	if creating && in.Password == "" {
		f.AddError("password", "This field is required.")
	}
	if !f.Validate(in) {
		return model.Employee{}, false
	}
	return model.Employee{
		EmployeeNumber: number,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Password:       in.Password,
		Role:           model.Role(in.Role),
	}, true
}

func (h *Admin) employeesPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	employees, err := h.client.ListEmployees(r.Context())
	data := AdminListData{
		Heading: "Employees",
		Columns: []string{"Number", "Name", "Email", "Role"},
		Empty:   "No employees have been added yet.",
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list employees")
		data.LoadError = msgLoadFailed
	}
	self := identityOf(r)
	for _, e := range employees {
		u := employeesURL + "/" + strconv.Itoa(e.EmployeeNumber)
		row := AdminRow{
			Cells:   []string{strconv.Itoa(e.EmployeeNumber), e.FullName(), e.Email, e.Role.DisplayName()},
			EditURL: u + "/edit",
		}
		if self == nil || self.ID != e.EmployeeNumber {
			row.Actions = []AdminAction{deleteAction(u)}
		}
		data.Rows = append(data.Rows, row)
	}
	data.Create = &render.FormView{
		Action: employeesURL,
		Submit: "Add employee",
		Fields: buildFields(f, employeeFields(true)),
		Error:  formErr,
	}
	h.listPage(w, r, status, data)
}

func (h *Admin) Employees(w http.ResponseWriter, r *http.Request) {
	f := request.NewForm(url.Values{"role": {string(model.RoleRentalAgent)}})
	h.employeesPage(w, r, http.StatusOK, f, "")
}

func (h *Admin) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	e, ok := employeeFromForm(f, 0, true)
	if !ok {
		h.employeesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	if _, err := h.client.CreateEmployee(r.Context(), e); err != nil {
		status, msg := writeFailure(r, err)
		h.employeesPage(w, r, status, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Employee "+e.FullName()+" added.")
	seeOther(w, r, employeesURL)
}

func (h *Admin) employeeEditPage(w http.ResponseWriter, r *http.Request, status, number int, f *request.Form, formErr string) {
	h.editPage(w, r, status, "Edit employee", employeesURL, render.FormView{
		Action: employeesURL + "/" + strconv.Itoa(number),
		Submit: "Save employee",
		Fields: buildFields(f, employeeFields(false)),
		Error:  formErr,
	})
}

func (h *Admin) EditEmployee(w http.ResponseWriter, r *http.Request) {
	number, ok := h.intID(w, r)
	if !ok {
		return
	}
	e, err := h.client.GetEmployee(r.Context(), number)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Employee not found.")
		return
	}
	h.employeeEditPage(w, r, http.StatusOK, number, request.NewForm(url.Values{
		"firstName": {e.FirstName},
		"lastName":  {e.LastName},
		"email":     {e.Email},
		"role":      {string(e.Role)},
	}), "")
}

func (h *Admin) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	number, ok := h.intID(w, r)
	if !ok {
		return
	}
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	e, ok := employeeFromForm(f, number, false)
	if !ok {
		h.employeeEditPage(w, r, http.StatusUnprocessableEntity, number, f, "")
		return
	}
	if self := identityOf(r); self != nil && self.ID == number && e.Role != model.RoleAdmin {
		f.AddError("role", "You cannot remove your own administrator role.")
		h.employeeEditPage(w, r, http.StatusUnprocessableEntity, number, f, "")
		return
	}
	if e.Password == "" {
		current, err := h.client.GetEmployee(r.Context(), number)
		if err != nil {
			status, msg := writeFailure(r, err)
			h.employeeEditPage(w, r, status, number, f, msg)
			return
		}
		if current.Password == "" {
			f.AddError("password", "Enter a password to save this employee.")
			h.employeeEditPage(w, r, http.StatusUnprocessableEntity, number, f, "")
			return
		}
		e.Password = current.Password
	}
	if _, err := h.client.UpdateEmployee(r.Context(), e); err != nil {
		status, msg := writeFailure(r, err)
		h.employeeEditPage(w, r, status, number, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Employee "+e.FullName()+" updated.")
	seeOther(w, r, employeesURL)
}

func (h *Admin) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	number, ok := h.intID(w, r)
	if !ok {
		return
	}
	if self := identityOf(r); self != nil && self.ID == number {
		h.renderer.Flash(w, render.FlashError, "You cannot delete your own account.")
		seeOther(w, r, employeesURL)
		return
	}
	err := h.client.DeleteEmployee(r.Context(), number)
	h.afterDelete(w, r, err, "Employee deleted.", employeesURL)
}
