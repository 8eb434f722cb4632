package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/images"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/render"
	"github.com/edvin/swiftwheelz/internal/web/request"
)

const (
	imagesURL     = dashboard + "/images"
	maxImageBytes = 5 << 20
)

type TruckGallery struct {
	Truck  model.Truck
	Images []images.Image
}

type AdminImagesData struct {
	Enabled   bool
	Galleries []TruckGallery
	LoadError string
	Upload    render.FormView
}

func (h *Admin) imagesPage(w http.ResponseWriter, r *http.Request, status int, f *request.Form, formErr string) {
	data := AdminImagesData{Enabled: h.images.Enabled()}

	trucks, err := h.client.ListTrucks(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list trucks")
		data.LoadError = msgLoadFailed
	}
	var byVIN map[string][]images.Image
	if data.Enabled {
		byVIN, err = h.images.ListAll(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("list truck images")
			data.LoadError = msgLoadFailed
		}
	}

	options := make([]render.Option, len(trucks))
	for i, t := range trucks {
		options[i] = render.Option{Value: t.VIN, Label: t.Title() + " (" + t.VIN + ")"}
		data.Galleries = append(data.Galleries, TruckGallery{Truck: t, Images: byVIN[t.VIN]})
	}
	data.Upload = render.FormView{
		Action:    imagesURL,
		Submit:    "Upload image",
		Multipart: true,
		Error:     formErr,
		Fields: buildFields(f, []fieldSpec{
			{name: "vin", label: "Truck", typ: "select", required: true, options: options},
			{name: "image", label: "Image", typ: "file", required: true, help: "JPEG, PNG or WebP, up to 5 MB."},
		}),
	}
	h.renderer.Page(w, r, status, "admin_images", "Truck images", data)
}

func (h *Admin) Images(w http.ResponseWriter, r *http.Request) {
	h.imagesPage(w, r, http.StatusOK, request.NewForm(nil), "")
}

// UploadImage stores one photo for a truck. The media type is sniffed from
// the content, never taken from the client.
func (h *Admin) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
	f, err := request.ParseForm(r)
	if err != nil {
		h.imagesPage(w, r, http.StatusRequestEntityTooLarge, request.NewForm(nil), "The image is larger than 5 MB.")
		return
	}

	vin := f.String("vin")
	if vin == "" {
		f.AddError("vin", "This field is required.")
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		f.AddError("image", "Choose an image to upload.")
		h.imagesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	defer file.Close()
	if header.Size > maxImageBytes {
		f.AddError("image", "The image is larger than 5 MB.")
	}
	if !f.Valid() {
		h.imagesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		f.AddError("image", "The image could not be read.")
		h.imagesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)

	_, err = h.images.Upload(r.Context(), vin, header.Filename, contentType, io.MultiReader(bytes.NewReader(head), file))
	switch {
	case err == nil:
	case errors.Is(err, images.ErrUnsupportedType):
		f.AddError("image", "Only JPEG, PNG and WebP images are supported.")
		h.imagesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	case errors.Is(err, images.ErrInvalidVIN):
		f.AddError("vin", "Choose one of the listed options.")
		h.imagesPage(w, r, http.StatusUnprocessableEntity, f, "")
		return
	case errors.Is(err, images.ErrDisabled):
		h.imagesPage(w, r, http.StatusServiceUnavailable, f, "Image storage is not configured.")
		return
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("vin", vin).Msg("upload truck image")
		h.imagesPage(w, r, http.StatusBadGateway, f, "The image could not be stored. Please try again later.")
		return
	}

	h.renderer.Flash(w, render.FlashSuccess, "Image uploaded for "+vin+".")
	seeOther(w, r, imagesURL+"#truck-"+url.PathEscape(vin))
}

func (h *Admin) DeleteImage(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	err := h.images.Delete(r.Context(), f.String("key"))
	switch {
	case err == nil:
		h.renderer.Flash(w, render.FlashSuccess, "Image deleted.")
	case errors.Is(err, images.ErrInvalidKey):
		h.renderer.Flash(w, render.FlashError, "Unknown image.")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("delete truck image")
		h.renderer.Flash(w, render.FlashError, "The image could not be deleted. Please try again later.")
	}
	seeOther(w, r, imagesURL)
}
