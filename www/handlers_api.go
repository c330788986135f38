package www

import (
	"net/http"
)

func (h *Handlers) apiListNodes(w http.ResponseWriter, r *http.Request) {
	lq := parseListQuery(r.URL.Query())
	screen := h.engine.NewScreen(h.actor())
	lq.apply(screen)
	if err := screen.Load(r.Context()); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.jsonOK(w, screen.Filtered())
}

func (h *Handlers) apiSession(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.waitReady(r))
}

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	registryOK, detail := h.engine.RegistryStatus()
	h.jsonOK(w, map[string]any{
		"registry":        registryOK,
		"registry_detail": detail,
		"messaging":       h.engine.MessagingConnected(),
		"database":        h.engine.DB().PingContext(r.Context()) == nil,
	})
}
