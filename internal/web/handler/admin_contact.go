package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/content"
)

const contactURL = dashboard + "/manage-contact-us"

func submittedAt(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if s == "" {
			return "-"
		}
		return s
	}
	return t.Local().Format("2 Jan 2006 15:04")
}

// ContactMessages lists messages sent through the contact form, newest
// first. Message bodies are stripped of markup before display.
func (h *Admin) ContactMessages(w http.ResponseWriter, r *http.Request) {
	data := AdminListData{
		Heading: "Contact messages",
		Columns: []string{"Received", "Name", "Email", "Subject", "Message"},
		Empty:   "No messages have been received.",
	}
	messages, err := h.client.ListContactMessages(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list contact messages")
		data.LoadError = msgLoadFailed
	}
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].ID > messages[j].ID })

	for _, m := range messages {
		u := contactURL + "/" + strconv.Itoa(m.ID)
		data.Rows = append(data.Rows, AdminRow{
			Cells: []string{
				submittedAt(m.SubmittedAt),
				content.SanitizeMessage(m.FirstName + " " + m.LastName),
				content.SanitizeMessage(m.Email),
				content.SanitizeMessage(m.Subject),
				content.SanitizeMessage(m.Message),
			},
			Actions: []AdminAction{deleteAction(u)},
		})
	}
	h.listPage(w, r, http.StatusOK, data)
}

func (h *Admin) DeleteContactMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.intID(w, r)
	if !ok {
		return
	}
	err := h.client.DeleteContactMessage(r.Context(), id)
	h.afterDelete(w, r, err, "Message deleted.", contactURL)
}
