package www

import (
	"net/http"
)

func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	registryOK, _ := h.engine.RegistryStatus()
	data := map[string]any{
		"Page":          "home",
		"Username":      h.actor(),
		"RegistryOK":    registryOK,
		"Authenticated": h.isAuthenticated(r),
	}
	h.render(w, r, "home.html", data)
}

// handleSchema is the static data-flow diagram.
func (h *Handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Page":          "schema",
		"RegistryURL":   h.engine.Registry().BaseURL(),
		"Authenticated": h.isAuthenticated(r),
	}
	h.render(w, r, "schema.html", data)
}
