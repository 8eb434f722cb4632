package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/money"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

// ---------- trucks ----------

const trucksURL = dashboard + "/trucks"

type truckForm struct {
	VIN            string `form:"vin" validate:"required,max=32"`
	Make           string `form:"make" validate:"required,max=40"`
	Model          string `form:"model" validate:"required,max=40"`
	Year           int    `form:"year" validate:"min=1950,max=2100"`
	LicensePlate   string `form:"licensePlate" validate:"required,max=15"`
	CurrentMileage int    `form:"currentMileage" validate:"min=0"`
	TruckType      int    `form:"truckType" validate:"required"`
}

func truckFields(types []model.TruckType, withVIN bool) []fieldSpec {
	options := make([]render.Option, len(types))
	for i, t := range types {
		options[i] = render.Option{
			Value: strconv.Itoa(t.TruckTypeID),
			Label: t.TypeName + " (" + money.Format(t.RatePerDay) + "/day)",
		}
	}
	var specs []fieldSpec
	if withVIN {
		specs = append(specs, fieldSpec{name: "vin", label: "VIN", typ: "text", required: true})
	}
	return append(specs,
		fieldSpec{name: "make", label: "Make", typ: "text", required: true},
		fieldSpec{name: "model", label: "Model", typ: "text", required: true},
		fieldSpec{name: "year", label: "Year", typ: "number", required: true},
		fieldSpec{name: "licensePlate", label: "Licence plate", typ: "text", required: true},
		fieldSpec{name: "currentMileage", label: "Current mileage (km)", typ: "number"},
		fieldSpec{name: "truckType", label: "Truck type", typ: "select", required: true, options: options},
		fieldSpec{name: "availability", label: "Available for rent", typ: "checkbox"},
	)
}

// truckFromForm validates f into a truck. vin overrides the form on update.
func truckFromForm(f *request.Form, vin string, types []model.TruckType) (model.Truck, bool) {
	in := truckForm{
		VIN:            f.String("vin"),
		Make:           f.String("make"),
		Model:          f.String("model"),
		Year:           f.Int("year"),
		LicensePlate:   f.String("licensePlate"),
		CurrentMileage: f.Int("currentMileage"),
		TruckType:      f.Int("truckType"),
	}
	if vin != "" {
		in.VIN = vin
	}
	if !f.Validate(in) {
		return model.Truck{}, false
	}

	var truckType *model.TruckType
	for i := range types {
		if types[i].TruckTypeID == in.TruckType {
			truckType = &types[i]
		}
	}
	if truckType == nil {
		f.AddError("truckType", "Choose one of the listed options.")
		return model.Truck{}, false
	}

	return model.Truck{
		VIN:            in.VIN,
		Make:           in.Make,
		Model:          in.Model,
		Year:           in.Year,
		LicensePlate:   in.LicensePlate,
		CurrentMileage: in.CurrentMileage,
		Availability:   f.Bool("availability"),
		TruckType:      truckType,
	}, true
}

func (h *Admin) loadTrucks(r *http.Request) ([]model.Truck, []model.TruckType, error) {
	var (
		trucks []model.Truck
		types  []model.TruckType
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		trucks, err = h.client.ListTrucks(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		types, err = h.client.ListTruckTypes(ctx)
		return err
	})
	err := g.Wait()
	return trucks, types, err
}

func (h *Admin) trucksPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	trucks, types, err := h.loadTrucks(r)
	data := AdminListData{
		Heading: "Trucks",
		Columns: []string{"VIN", "Truck", "Licence plate", "Type", "Mileage", "Rate per day", "Available"},
		Empty:   "No trucks have been added yet.",
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list trucks")
		data.LoadError = msgLoadFailed
	}
	for _, t := range trucks {
		typeName := "-"
		if t.TruckType != nil {
			typeName = t.TruckType.TypeName
		}
		u := trucksURL + "/" + url.PathEscape(t.VIN)
		data.Rows = append(data.Rows, AdminRow{
			Cells: []string{
				t.VIN, t.Title(), t.LicensePlate, typeName,
				strconv.Itoa(t.CurrentMileage) + " km", money.Format(t.RatePerDay()), yesNo(t.Availability),
			},
			EditURL: u + "/edit",
			Actions: []AdminAction{deleteAction(u)},
		})
	}
	data.Create = &render.FormView{
		Action: trucksURL,
		Submit: "Add truck",
		Fields: buildFields(f, truckFields(types, true)),
		Error:  formErr,
	}
	h.listPage(w, r, status, data)
}

func (h *Admin) Trucks(w http.ResponseWriter, r *http.Request) {
	f := request.NewForm(url.Values{"availability": {"on"}})
	h.trucksPage(w, r, http.StatusOK, f, "")
}

func (h *Admin) CreateTruck(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	types, err := h.client.ListTruckTypes(r.Context())
	if err != nil {
		backendFailure(w, r, h.renderer, err, "")
		return
	}
	truck, ok := truckFromForm(f, "", types)
	if !ok {
		h.trucksPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	if _, err := h.client.CreateTruck(r.Context(), truck); err != nil {
		status, msg := writeFailure(r, err)
		h.trucksPage(w, r, status, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Truck "+truck.VIN+" added.")
	seeOther(w, r, trucksURL)
}

func (h *Admin) truckEditPage(w http.ResponseWriter, r *http.Request, status int, vin string, types []model.TruckType, f *request.Form, formErr string) {
	h.editPage(w, r, status, "Edit truck "+vin, trucksURL, render.FormView{
		Action: trucksURL + "/" + url.PathEscape(vin),
		Submit: "Save truck",
		Fields: buildFields(f, truckFields(types, false)),
		Error:  formErr,
	})
}

func (h *Admin) EditTruck(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "id")
	var (
		truck *model.Truck
		types []model.TruckType
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		truck, err = h.client.GetTruck(ctx, vin)
		return err
	})
	g.Go(func() error {
		var err error
		types, err = h.client.ListTruckTypes(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		backendFailure(w, r, h.renderer, err, "Truck not found.")
		return
	}

	values := url.Values{
		"make":           {truck.Make},
		"model":          {truck.Model},
		"year":           {strconv.Itoa(truck.Year)},
		"licensePlate":   {truck.LicensePlate},
		"currentMileage": {strconv.Itoa(truck.CurrentMileage)},
	}
	if truck.TruckType != nil {
		values.Set("truckType", strconv.Itoa(truck.TruckType.TruckTypeID))
	}
	if truck.Availability {
		values.Set("availability", "on")
	}
	h.truckEditPage(w, r, http.StatusOK, vin, types, request.NewForm(values), "")
}

func (h *Admin) UpdateTruck(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "id")
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	types, err := h.client.ListTruckTypes(r.Context())
	if err != nil {
		backendFailure(w, r, h.renderer, err, "")
		return
	}
	truck, ok := truckFromForm(f, vin, types)
	if !ok {
		h.truckEditPage(w, r, http.StatusUnprocessableEntity, vin, types, f, "")
		return
	}
	if _, err := h.client.UpdateTruck(r.Context(), truck); err != nil {
		status, msg := writeFailure(r, err)
		h.truckEditPage(w, r, status, vin, types, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Truck "+vin+" updated.")
	seeOther(w, r, trucksURL)
}

func (h *Admin) DeleteTruck(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "id")
	err := h.client.DeleteTruck(r.Context(), vin)
	h.afterDelete(w, r, err, "Truck "+vin+" deleted.", trucksURL)
}

// ---------- truck types ----------

const truckTypesURL = dashboard + "/truck-types"

var fuelOptions = []render.Option{
	{Value: "Diesel", Label: "Diesel"},
	{Value: "Petrol", Label: "Petrol"},
	{Value: "Electric", Label: "Electric"},
	{Value: "Hybrid", Label: "Hybrid"},
}

var truckTypeFields = []fieldSpec{
	{name: "typeName", label: "Type name", typ: "text", required: true},
	{name: "description", label: "Description", typ: "textarea"},
	{name: "capacity", label: "Capacity (tons)", typ: "number", required: true, step: "0.1"},
	{name: "fuelType", label: "Fuel type", typ: "select", required: true, options: fuelOptions},
	{name: "ratePerDay", label: "Rate per day (R)", typ: "number", required: true, step: "0.01"},
}

type truckTypeForm struct {
	TypeName    string  `form:"typeName" validate:"required,max=60"`
	Description string  `form:"description" validate:"max=500"`
	Capacity    float64 `form:"capacity" validate:"gt=0"`
	FuelType    string  `form:"fuelType" validate:"required,oneof=Diesel Petrol Electric Hybrid"`
	RatePerDay  float64 `form:"ratePerDay" validate:"gt=0"`
}

func truckTypeFromForm(f *request.Form, id int) (model.TruckType, bool) {
	in := truckTypeForm{
		TypeName:    f.String("typeName"),
		Description: f.String("description"),
		Capacity:    f.Float("capacity"),
		FuelType:    f.String("fuelType"),
		RatePerDay:  f.Float("ratePerDay"),
	}
	if !f.Validate(in) {
		return model.TruckType{}, false
	}
	return model.TruckType{
		TruckTypeID: id,
		TypeName:    in.TypeName,
		Description: in.Description,
		Capacity:    in.Capacity,
		FuelType:    in.FuelType,
		RatePerDay:  in.RatePerDay,
	}, true
}

func (h *Admin) truckTypesPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	types, err := h.client.ListTruckTypes(r.Context())
	data := AdminListData{
		Heading: "Truck types",
		Columns: []string{"ID", "Type", "Capacity", "Fuel", "Rate per day", "Description"},
		Empty:   "No truck types have been added yet.",
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list truck types")
		data.LoadError = msgLoadFailed
	}
	for _, t := range types {
		u := truckTypesURL + "/" + strconv.Itoa(t.TruckTypeID)
		data.Rows = append(data.Rows, AdminRow{
			Cells: []string{
				strconv.Itoa(t.TruckTypeID), t.TypeName,
				strconv.FormatFloat(t.Capacity, 'f', -1, 64) + " t", t.FuelType,
				money.Format(t.RatePerDay), t.Description,
			},
			EditURL: u + "/edit",
			Actions: []AdminAction{deleteAction(u)},
		})
	}
	data.Create = &render.FormView{
		Action: truckTypesURL,
		Submit: "Add truck type",
		Fields: buildFields(f, truckTypeFields),
		Error:  formErr,
	}
	h.listPage(w, r, status, data)
}

func (h *Admin) TruckTypes(w http.ResponseWriter, r *http.Request) {
	h.truckTypesPage(w, r, http.StatusOK, request.NewForm(nil), "")
}

func (h *Admin) CreateTruckType(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	t, ok := truckTypeFromForm(f, 0)
	if !ok {
		h.truckTypesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	if _, err := h.client.CreateTruckType(r.Context(), t); err != nil {
		status, msg := writeFailure(r, err)
		h.truckTypesPage(w, r, status, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Truck type "+t.TypeName+" added.")
	seeOther(w, r, truckTypesURL)
}

func (h *Admin) truckTypeEditPage(w http.ResponseWriter, r *http.Request, status, id int, f *request.Form, formErr string) {
	h.editPage(w, r, status, "Edit truck type", truckTypesURL, render.FormView{
		Action: truckTypesURL + "/" + strconv.Itoa(id),
		Submit: "Save truck type",
		Fields: buildFields(f, truckTypeFields),
		Error:  formErr,
	})
}

func (h *Admin) EditTruckType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	t, err := h.client.GetTruckType(r.Context(), id)
	if err != nil {
		backendFailure(w, r, h.renderer, err, "Truck type not found.")
		return
	}
	h.truckTypeEditPage(w, r, http.StatusOK, id, request.NewForm(url.Values{
		"typeName":    {t.TypeName},
		"description": {t.Description},
		"capacity":    {strconv.FormatFloat(t.Capacity, 'f', -1, 64)},
		"fuelType":    {t.FuelType},
		"ratePerDay":  {strconv.FormatFloat(t.RatePerDay, 'f', 2, 64)},
	}), "")
}

func (h *Admin) UpdateTruckType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	t, ok := truckTypeFromForm(f, id)
	if !ok {
		h.truckTypeEditPage(w, r, http.StatusUnprocessableEntity, id, f, "")
		return
	}
	if _, err := h.client.UpdateTruckType(r.Context(), t); err != nil {
		status, msg := writeFailure(r, err)
		h.truckTypeEditPage(w, r, status, id, f, msg)
		return
	}
	h.renderer.Flash(w, render.FlashSuccess, "Truck type "+t.TypeName+" updated.")
	seeOther(w, r, truckTypesURL)
}

func (h *Admin) DeleteTruckType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	err := h.client.DeleteTruckType(r.Context(), id)
	h.afterDelete(w, r, err, "Truck type deleted.", truckTypesURL)
}
