package www

import (
	"net/http"

	"eaisdo/log"
)

func (h *Handlers) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	auditLog, err := h.engine.DB().ListAuditLog(50)
	if err != nil {
		log.Error().Err(err).Msg("www: audit log")
	}

	registryOK, registryDetail := h.engine.RegistryStatus()
	msgBackend := "none"
	if c := h.engine.MsgClient(); c != nil {
		msgBackend = c.Backend()
	}

	data := map[string]any{
		"Page":             "diagnostics",
		"AuditLog":         auditLog,
		"Activity":         h.activity.Recent(),
		"RegistryOK":       registryOK,
		"RegistryDetail":   registryDetail,
		"RegistryURL":      h.engine.Registry().BaseURL(),
		"MessagingOK":      h.engine.MessagingConnected(),
		"MessagingBackend": msgBackend,
		"DBDriver":         h.engine.DB().Driver(),
		"SessionBackend":   h.engine.AppConfig().Session.Backend,
		"Authenticated":    h.isAuthenticated(r),
	}
	h.render(w, r, "diagnostics.html", data)
}
