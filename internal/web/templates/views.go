package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// CalendarEntry is one session on the agenda.
type CalendarEntry struct {
	Time  string // "09:00 - 10:00"
	Title string
}

// CalendarDay groups the sessions of one day.
type CalendarDay struct {
	Label   string
	Entries []CalendarEntry
}

// CalendarView is the agenda model.
type CalendarView struct {
	Banner string
	Days   []CalendarDay
}

// CalendarPage renders the agenda grouped by day.
func CalendarPage(v CalendarView) templ.Component {
	return Layout("Calendar", "calendar", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.render(Banner(v.Banner))
		if len(v.Days) == 0 && v.Banner == "" {
			p.raw(`<p>No sessions scheduled.</p>`)
		}
		for _, d := range v.Days {
			p.raw(`<section><h2>`)
			p.text(d.Label)
			p.raw(`</h2><ul>`)
			for _, e := range d.Entries {
				p.raw(`<li><strong>`)
				p.text(e.Time)
				p.raw(`</strong> `)
				p.text(e.Title)
				p.raw(`</li>`)
			}
			p.raw(`</ul></section>`)
		}
		return p.err
	}))
}

// StatBar is one bar of the activity chart.
type StatBar struct {
	Activity string
	Minutes  int
	Sessions int
	Width    int // percent of the longest bar
}

// StatsView is the statistics model.
type StatsView struct {
	Banner string
	Bars   []StatBar
}

// StatsPage renders total minutes per activity as a bar chart.
func StatsPage(v StatsView) templ.Component {
	return Layout("Statistics", "stats", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.render(Banner(v.Banner))
		p.raw(`<table><thead><tr><th>Activity</th><th>Minutes</th><th>Sessions</th><th style="width:50%"></th></tr></thead><tbody>`)
		for _, b := range v.Bars {
			p.raw(`<tr><td>`)
			p.text(b.Activity)
			p.raw(`</td><td>`, itoa(b.Minutes), `</td><td>`, itoa(b.Sessions), `</td><td><div class="bar" style="width:`, itoa(b.Width), `%"></div></td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	}))
}

// AuditRow is one rendered audit entry.
type AuditRow struct {
	Time     string
	Action   string
	Severity string
	Kind     string
	RecordID string
	Summary  string
	IP       string
}

// AuditView is the audit log model.
type AuditView struct {
	Banner string
	Kind   string
	Action string
	Rows   []AuditRow
}

// AuditLogPage renders recent mutations newest first.
func AuditLogPage(v AuditView) templ.Component {
	return Layout("Audit log", "audit", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.render(Banner(v.Banner))
		p.raw(`<div class="toolbar"><form method="get" action="/audit-log"><select name="kind">`)
		for _, k := range []string{"", "customers", "trainings", "backend"} {
			p.raw(`<option`)
			p.attr("value", k)
			if k == v.Kind {
				p.raw(` selected`)
			}
			p.raw(`>`)
			if k == "" {
				p.raw(`All kinds`)
			} else {
				p.text(k)
			}
			p.raw(`</option>`)
		}
		p.raw(`</select><select name="action">`)
		for _, a := range []string{"", "create", "update", "delete", "reset"} {
			p.raw(`<option`)
			p.attr("value", a)
			if a == v.Action {
				p.raw(` selected`)
			}
			p.raw(`>`)
			if a == "" {
				p.raw(`All actions`)
			} else {
				p.text(a)
			}
			p.raw(`</option>`)
		}
		p.raw(`</select><button type="submit">Filter</button></form></div>`)
		p.raw(`<table><thead><tr><th>Time</th><th>Action</th><th>Severity</th><th>Kind</th><th>Id</th><th>Summary</th><th>IP</th></tr></thead><tbody>`)
		for _, r := range v.Rows {
			p.raw(`<tr>`)
			for _, cell := range []string{r.Time, r.Action, r.Severity, r.Kind, r.RecordID, r.Summary, r.IP} {
				p.raw(`<td>`)
				p.text(orDash(cell))
				p.raw(`</td>`)
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	}))
}
