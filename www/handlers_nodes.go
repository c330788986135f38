package www

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eaisdo/model"
	"eaisdo/nodes"
)

const msgLoadFailed = "Ошибка при загрузке данных"

// listQuery is the node table selection carried in the URL.
type listQuery struct {
	Districts []string
	Statuses  []model.Status
	Sort      string
	Desc      bool
	Page      int
	Size      int
}

func parseListQuery(q url.Values) listQuery {
	lq := listQuery{
		Districts: q["district"],
		Sort:      q.Get("sort"),
		Desc:      q.Get("desc") == "1",
	}
	for _, s := range q["status"] {
		if st := model.Status(s); st.Valid() {
			lq.Statuses = append(lq.Statuses, st)
		}
	}
	lq.Page, _ = strconv.Atoi(q.Get("page"))
	lq.Size, _ = strconv.Atoi(q.Get("size"))
	return lq
}

func (lq listQuery) apply(s *nodes.Screen) {
	s.SetDistricts(lq.Districts)
	s.SetStatuses(lq.Statuses)
	s.SetSort(lq.Sort, lq.Desc)
}

func (lq listQuery) values() url.Values {
	v := url.Values{}
	for _, d := range lq.Districts {
		v.Add("district", d)
	}
	for _, s := range lq.Statuses {
		v.Add("status", string(s))
	}
	if lq.Sort != "" {
		v.Set("sort", lq.Sort)
	}
	if lq.Desc {
		v.Set("desc", "1")
	}
	if lq.Page > 1 {
		v.Set("page", strconv.Itoa(lq.Page))
	}
	if lq.Size > 0 {
		v.Set("size", strconv.Itoa(lq.Size))
	}
	return v
}

func (lq listQuery) href(path string) string {
	if enc := lq.values().Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

type columnLink struct {
	Label  string
	Href   string
	Active bool
	Desc   bool
}

var tableColumns = []struct{ Key, Label string }{
	{model.ColumnRegionCode, "Код региона"},
	{model.ColumnRegion, "Регион"},
	{model.ColumnDistrict, "Округ"},
	{model.ColumnNodeName, "Имя узла"},
	{model.ColumnTechnicalSolution, "Техническое решение"},
	{model.ColumnStatus, "Статус"},
}

// columnLinks builds the sortable headers; clicking the active column flips
// its direction, any other column sorts ascending from page one.
func columnLinks(lq listQuery) []columnLink {
	active := lq.Sort
	if active == "" {
		active = model.ColumnRegionCode
	}
	links := make([]columnLink, 0, len(tableColumns))
	for _, c := range tableColumns {
		next := lq
		next.Page = 0
		next.Sort = c.Key
		next.Desc = c.Key == active && !lq.Desc
		links = append(links, columnLink{
			Label:  c.Label,
			Href:   next.href("/nodes"),
			Active: c.Key == active,
			Desc:   c.Key == active && lq.Desc,
		})
	}
	return links
}

func (h *Handlers) handleNodes(w http.ResponseWriter, r *http.Request) {
	lq := parseListQuery(r.URL.Query())
	screen := h.engine.NewScreen(h.actor())
	lq.apply(screen)

	var loadError string
	if err := screen.Load(r.Context()); err != nil {
		loadError = msgLoadFailed
	}

	page := screen.Page(lq.Page, lq.Size)
	total, filtered := screen.Counts()

	prev, next := lq, lq
	prev.Page, next.Page = page.Page-1, page.Page+1
	sizeLinks := make([]map[string]any, 0, len(nodes.PageSizes))
	for _, size := range nodes.PageSizes {
		sl := lq
		sl.Page, sl.Size = 0, size
		sizeLinks = append(sizeLinks, map[string]any{
			"Size":   size,
			"Href":   sl.href("/nodes"),
			"Active": size == page.Size,
		})
	}
	exportQuery := lq
	exportQuery.Page, exportQuery.Size = 0, 0

	data := map[string]any{
		"Page":           "nodes",
		"Table":          page,
		"Columns":        columnLinks(lq),
		"PrevHref":       prev.href("/nodes"),
		"NextHref":       next.href("/nodes"),
		"SizeLinks":      sizeLinks,
		"ExportHref":     exportQuery.href("/nodes/export"),
		"Total":          total,
		"Filtered":       filtered,
		"Districts":      model.Districts,
		"Selected":       lq.Districts,
		"Statuses":       model.Statuses,
		"SelectedStatus": statusStrings(lq.Statuses),
		"LoadError":      loadError,
		"Authenticated":  h.isAuthenticated(r),
	}
	h.render(w, r, "nodes.html", data)
}

func statusStrings(ss []model.Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func (h *Handlers) renderNodeForm(w http.ResponseWriter, r *http.Request, code int, id string, form nodes.Form, errs nodes.ValidationErrors, failure string) {
	title, action := "Добавить пользователя/узел", "/nodes/create"
	if id != "" {
		title, action = "Редактировать пользователя/узел", "/nodes/update"
	}
	data := map[string]any{
		"Page":          "nodes",
		"Title":         title,
		"Action":        action,
		"ID":            id,
		"Form":          form,
		"Errors":        errs,
		"Failure":       failure,
		"Districts":     model.Districts,
		"Statuses":      model.Statuses,
		"Authenticated": h.isAuthenticated(r),
	}
	h.renderStatus(w, r, code, "node_form.html", data)
}

func (h *Handlers) handleNodeNew(w http.ResponseWriter, r *http.Request) {
	h.renderNodeForm(w, r, http.StatusOK, "", nodes.Form{}, nil, "")
}

func (h *Handlers) handleNodeCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := nodes.FormFromValues(r.PostForm)
	screen := h.engine.NewScreen(h.actor())

	err := screen.Create(r.Context(), form)
	var verr nodes.ValidationErrors
	switch {
	case err == nil, errors.Is(err, nodes.ErrReload):
		h.addFlash(w, r, flashSuccess, "Запись успешно создана на сервере")
		http.Redirect(w, r, "/nodes", http.StatusSeeOther)
	case errors.As(err, &verr):
		h.renderNodeForm(w, r, http.StatusUnprocessableEntity, "", form, verr, "")
	default:
		h.renderNodeForm(w, r, http.StatusBadGateway, "", form, nil, "Ошибка при сохранении данных: "+err.Error())
	}
}

// pathID returns the decoded {id} segment. chi matches on the escaped path
// when the id carried an escaped slash, so the param is still encoded then.
func pathID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id
	}
	if dec, err := url.PathUnescape(id); err == nil {
		return dec
	}
	return id
}

// loadNode reloads the registry and finds id. On failure it has already
// redirected back to the list with a notification.
func (h *Handlers) loadNode(w http.ResponseWriter, r *http.Request, screen *nodes.Screen, id string) (model.Node, bool) {
	if err := screen.Load(r.Context()); err != nil {
		h.addFlash(w, r, flashError, msgLoadFailed)
		http.Redirect(w, r, "/nodes", http.StatusSeeOther)
		return model.Node{}, false
	}
	n, err := screen.Find(id)
	if err != nil {
		h.addFlash(w, r, flashError, "Запись не найдена")
		http.Redirect(w, r, "/nodes", http.StatusSeeOther)
		return model.Node{}, false
	}
	return n, true
}

func (h *Handlers) handleNodeEdit(w http.ResponseWriter, r *http.Request) {
	screen := h.engine.NewScreen(h.actor())
	n, ok := h.loadNode(w, r, screen, pathID(r))
	if !ok {
		return
	}
	h.renderNodeForm(w, r, http.StatusOK, n.ID, nodes.FormFromNode(n), nil, "")
}

func (h *Handlers) handleNodeUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PostFormValue("id")
	form := nodes.FormFromValues(r.PostForm)
	screen := h.engine.NewScreen(h.actor())
	original, ok := h.loadNode(w, r, screen, id)
	if !ok {
		return
	}

	err := screen.Edit(r.Context(), original, form)
	var verr nodes.ValidationErrors
	switch {
	case err == nil, errors.Is(err, nodes.ErrReload):
		h.addFlash(w, r, flashSuccess, "Данные успешно обновлены на сервере")
		http.Redirect(w, r, "/nodes", http.StatusSeeOther)
	case errors.As(err, &verr):
		h.renderNodeForm(w, r, http.StatusUnprocessableEntity, id, form, verr, "")
	default:
		h.renderNodeForm(w, r, http.StatusBadGateway, id, form, nil, "Ошибка при сохранении данных: "+err.Error())
	}
}

func (h *Handlers) handleNodeDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	screen := h.engine.NewScreen(h.actor())
	n, ok := h.loadNode(w, r, screen, pathID(r))
	if !ok {
		return
	}
	data := map[string]any{
		"Page":          "nodes",
		"Node":          n,
		"Authenticated": h.isAuthenticated(r),
	}
	h.render(w, r, "node_delete.html", data)
}

func (h *Handlers) handleNodeDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PostFormValue("id")
	confirmed := r.PostFormValue("confirm") == "yes"

	screen := h.engine.NewScreen(h.actor())
	err := screen.Delete(r.Context(), id, confirmed)
	switch {
	case errors.Is(err, nodes.ErrNotConfirmed):
		// Cancelled from the confirmation page.
	case err == nil, errors.Is(err, nodes.ErrReload):
		h.addFlash(w, r, flashSuccess, "Запись успешно удалена")
	default:
		h.addFlash(w, r, flashError, "Ошибка при удалении данных: "+err.Error())
	}
	http.Redirect(w, r, "/nodes", http.StatusSeeOther)
}
