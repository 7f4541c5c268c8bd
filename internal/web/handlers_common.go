package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/logging"
	"github.com/JonMunkholm/trainer/internal/web/middleware"
	"github.com/JonMunkholm/trainer/internal/web/templates"
)

// notices are the success messages a redirect may ask for. Unknown keys
// show nothing.
var notices = map[string]string{
	"customer-created": "Customer saved.",
	"customer-updated": "Customer updated.",
	"customer-deleted": "Customer deleted.",
	"training-created": "Training saved.",
	"training-updated": "Training updated.",
	"training-deleted": "Training deleted.",
	"cancelled":        "Nothing was deleted.",
}

func noticeFrom(r *http.Request) string {
	return notices[r.URL.Query().Get("notice")]
}

// render writes a templ component as HTML with status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// formPage renders an add or edit dialog with the request's CSRF token.
func (s *Server) formPage(r *http.Request, v templates.FormView) templ.Component {
	v.CSRF = csrfField(r)
	return templates.FormPage(v)
}

func csrfField(r *http.Request) templates.CSRF {
	return templates.CSRF{Field: middleware.CSRFFieldName, Token: middleware.CSRFToken(r)}
}

// parseID reads the positive {id} route parameter.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", core.ErrInvalidInput, raw)
	}
	return id, nil
}

// applyListParams copies search, sort and dir from the query into state.
func applyListParams[T any](state *core.ListState[T], q url.Values) {
	state.SetSearch(strings.TrimSpace(q.Get("search")))
	if key := q.Get("sort"); key != "" {
		state.SetSort(core.SortSpec{Key: key, Dir: core.ParseDirection(q.Get("dir"))})
	}
}

// listQuery encodes search and sort back into a query string.
func listQuery(search string, spec core.SortSpec) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if spec.Key != "" {
		q.Set("sort", spec.Key)
		q.Set("dir", spec.Dir.Short())
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// listView projects state into the list page model. Column links carry
// the toggled sort so clicking a header applies the toggle rule.
func listView[T any](state *core.ListState[T], base, notice string) templates.ListView {
	kind := state.Kind()
	search, spec := state.Search(), state.Sort()

	v := templates.ListView{
		Title:      kind.Label,
		Active:     kind.Key,
		Action:     base,
		Search:     search,
		Banner:     state.Error(),
		Notice:     notice,
		NewHref:    base + "/new",
		NewLabel:   "Add " + kind.Singular,
		ExportHref: base + "/export.csv" + listQuery(search, spec),
	}
	if spec.Key != "" {
		v.Sort, v.Dir = spec.Key, spec.Dir.Short()
	}

	for _, f := range kind.Fields {
		col := templates.Column{Label: f.Label}
		if f.Sortable {
			col.SortHref = base + listQuery(search, spec.Toggle(f.Key))
			if spec.Key == f.Key {
				col.Indicator = spec.Dir.Short()
			}
		}
		v.Columns = append(v.Columns, col)
	}

	for _, rec := range state.Projection() {
		id := kind.ID(rec)
		row := templates.Row{ID: id}
		for _, f := range kind.Fields {
			row.Cells = append(row.Cells, f.TextOf(rec))
		}
		if id > 0 {
			row.EditHref = fmt.Sprintf("%s/%d/edit", base, id)
			row.DeleteHref = fmt.Sprintf("%s/%d/delete", base, id)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// exportCSV streams the projection of state as an attachment.
func exportCSV[T any](w http.ResponseWriter, r *http.Request, state *core.ListState[T]) {
	kind := state.Kind()
	name := core.ExportFilename(kind, time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	if err := core.WriteCSV(w, kind, state.Projection()); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "kind", kind.Key, "error", err)
	}
}

// bannerError wraps an orchestrator banner so respondError can map it.
func bannerError(banner string) error {
	return fmt.Errorf("%w: %s", core.ErrRequestFailed, banner)
}

// failureStatus picks the response status after a failed Save.
func failureStatus[T any](d *core.Dialog[T]) int {
	if len(d.Errors) > 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func redirect(w http.ResponseWriter, r *http.Request, path, notice string) {
	if notice != "" {
		path += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
