package render

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const flashCookie = "swiftwheelz_flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

// FlashSigner signs flash cookie values so they cannot be forged.
type FlashSigner interface {
	IssueFlash(kind, message string) (string, error)
	ParseFlash(token string) (string, string, error)
}

// Flash stores a message for the next page view. Call before redirecting.
func (rd *Renderer) Flash(w http.ResponseWriter, kind FlashKind, message string) {
	token, err := rd.flashes.IssueFlash(string(kind), message)
	if err != nil {
		log.Warn().Err(err).Msg("sign flash message")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   rd.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rd *Renderer) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rd.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	kind, msg, err := rd.flashes.ParseFlash(c.Value)
	if err != nil || msg == "" {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("dropping invalid flash cookie")
		return nil
	}
	switch FlashKind(kind) {
	case FlashSuccess, FlashError:
		return &Flash{Kind: FlashKind(kind), Message: msg}
	}
	return nil
}
