package www

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"eaisdo/export"
	"eaisdo/log"
)

// handleNodesExport downloads the filtered table as a workbook.
func (h *Handlers) handleNodesExport(w http.ResponseWriter, r *http.Request) {
	lq := parseListQuery(r.URL.Query())
	back := lq.href("/nodes")

	screen := h.engine.NewScreen(h.actor())
	lq.apply(screen)
	if err := screen.Load(r.Context()); err != nil {
		h.addFlash(w, r, flashError, msgLoadFailed)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	rows := screen.Filtered()
	if len(rows) == 0 {
		h.addFlash(w, r, flashInfo, "Нет данных для экспорта")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteNodes(&buf, rows); err != nil {
		log.Error().Err(err).Msg("www: export")
		h.addFlash(w, r, flashError, "Ошибка при выгрузке данных в Excel")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	// Shown on the next page the browser loads.
	h.addFlash(w, r, flashSuccess, "Данные успешно выгружены в Excel")

	name := export.FileName(time.Now())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="export.xlsx"; filename*=UTF-8''%s`, url.PathEscape(name)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	buf.WriteTo(w)
	log.Info().Int("rows", len(rows)).Str("file", name).Msg("www: exported nodes")
}
