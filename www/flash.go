package www

import (
	"net/http"
	"strings"

	"eaisdo/log"
)

const flashCookie = "eaisdo-flash"

const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// Flash is one notification shown on the next rendered page.
type Flash struct {
	Kind string
	Text string
}

func (h *Handlers) addFlash(w http.ResponseWriter, r *http.Request, kind, text string) {
	sess, err := h.engine.SessionStore().Get(r, flashCookie)
	if sess == nil {
		log.Warn().Err(err).Msg("www: flash session")
		return
	}
	sess.AddFlash(kind + ":" + text)
	if err := sess.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("www: save flash")
	}
}

// flashes pops the pending notifications.
func (h *Handlers) flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, _ := h.engine.SessionStore().Get(r, flashCookie)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("www: clear flash")
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, text, found := strings.Cut(s, ":")
		if !found {
			kind, text = flashInfo, s
		}
		out = append(out, Flash{Kind: kind, Text: text})
	}
	return out
}
