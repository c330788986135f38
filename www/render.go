package www

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"eaisdo/log"
	"eaisdo/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"home.html",
	"login.html",
	"spinner.html",
	"nodes.html",
	"node_form.html",
	"node_delete.html",
	"schema.html",
	"diagnostics.html",
}

var funcs = template.FuncMap{
	"statusLabel": func(s model.Status) string { return s.Label() },
	"statusColor": func(s model.Status) string { return s.Color() },
	"join":        strings.Join,
	"pathEscape":  url.PathEscape,
	"contains": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}

// parseTemplates pairs every page with the shared layout.
func parseTemplates() map[string]*template.Template {
	tmpl := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return tmpl
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	h.renderStatus(w, r, http.StatusOK, name, data)
}

func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, code int, name string, data map[string]any) {
	t, ok := h.tmpl[name]
	if !ok {
		http.Error(w, "unknown template "+name, http.StatusInternalServerError)
		return
	}
	// Reading flashes rewrites the flash cookie, so it must happen before the body.
	data["Flashes"] = h.flashes(w, r)

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("www: render")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}

func (h *Handlers) jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
