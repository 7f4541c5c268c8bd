package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/web/templates"
)

const timeOfDay = "15:04"

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	sc := s.trainingScreen(r)
	status := http.StatusOK
	if !sc.Refresh(r.Context()) {
		status = http.StatusBadGateway
	}

	view := templates.CalendarView{Banner: sc.State().Error()}
	for _, day := range core.GroupByDay(core.CalendarEvents(sc.State().Items(), core.DisplayLocation())) {
		d := templates.CalendarDay{Label: day.Label()}
		for _, e := range day.Events {
			d.Entries = append(d.Entries, templates.CalendarEntry{
				Time:  e.Start.Format(timeOfDay) + " - " + e.End.Format(timeOfDay),
				Title: e.Title,
			})
		}
		view.Days = append(view.Days, d)
	}
	s.render(w, r, status, templates.CalendarPage(view))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sc := s.trainingScreen(r)
	status := http.StatusOK
	if !sc.Refresh(r.Context()) {
		status = http.StatusBadGateway
	}

	totals := core.ActivityTotals(sc.State().Items())
	widths := core.BarWidths(totals)
	view := templates.StatsView{Banner: sc.State().Error()}
	for i, t := range totals {
		view.Bars = append(view.Bars, templates.StatBar{
			Activity: t.Activity,
			Minutes:  t.Minutes,
			Sessions: t.Sessions,
			Width:    widths[i],
		})
	}
	s.render(w, r, status, templates.StatsPage(view))
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	filter := auditFilter(r)
	view := templates.AuditView{Kind: filter.Kind, Action: string(filter.Action)}

	entries, err := s.recentAudit(r, filter)
	status := http.StatusOK
	if err != nil {
		view.Banner = core.MapError(err).Message
		status = http.StatusInternalServerError
	}
	loc := core.DisplayLocation()
	for _, e := range entries {
		row := templates.AuditRow{
			Time:     e.CreatedAt.In(loc).Format(core.DateLayout + ":05"),
			Action:   string(e.Action),
			Severity: string(e.Severity),
			Kind:     e.Kind,
			Summary:  e.Summary,
			IP:       e.IPAddress,
		}
		if e.RecordID > 0 {
			row.RecordID = strconv.FormatInt(e.RecordID, 10)
		}
		view.Rows = append(view.Rows, row)
	}
	s.render(w, r, status, templates.AuditLogPage(view))
}

func auditFilter(r *http.Request) core.AuditFilter {
	q := r.URL.Query()
	f := core.AuditFilter{
		Kind:   q.Get("kind"),
		Action: core.AuditAction(q.Get("action")),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	return f
}

// recentAudit returns nothing when no store is attached.
func (s *Server) recentAudit(r *http.Request, f core.AuditFilter) ([]core.AuditEntry, error) {
	if s.deps.Audit == nil {
		return nil, nil
	}
	return s.deps.Audit.Recent(r.Context(), f)
}
