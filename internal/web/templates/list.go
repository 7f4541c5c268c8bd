package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Column is one sortable header of a list table.
type Column struct {
	Label     string
	SortHref  string // empty for non-sortable columns
	Indicator string // "asc", "desc" or empty
}

// Row is one rendered record.
type Row struct {
	ID         int64
	Cells      []string
	EditHref   string
	DeleteHref string
}

// ListView is the model of a searchable, sortable list page.
type ListView struct {
	Title      string
	Active     string
	Action     string // form action for the search box
	Search     string
	Sort       string
	Dir        string
	Banner     string
	Notice     string
	Columns    []Column
	Rows       []Row
	NewHref    string
	NewLabel   string
	ExportHref string
}

// ListPage renders the list screen inside the layout.
func ListPage(v ListView) templ.Component {
	return Layout(v.Title, v.Active, listBody(v))
}

func listBody(v ListView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.render(Banner(v.Banner))
		p.render(Notice(v.Notice))

		p.raw(`<div class="toolbar"><form method="get"`)
		p.attr("action", v.Action)
		p.raw(`><input type="search" name="search" placeholder="Search"`)
		p.attr("value", v.Search)
		p.raw(`>`)
		if v.Sort != "" {
			p.raw(`<input type="hidden" name="sort"`)
			p.attr("value", v.Sort)
			p.raw(`><input type="hidden" name="dir"`)
			p.attr("value", v.Dir)
			p.raw(`>`)
		}
		p.raw(`<button type="submit">Search</button></form>`)
		if v.NewHref != "" {
			p.raw(`<a`)
			p.href(v.NewHref)
			p.raw(`>`)
			p.text(v.NewLabel)
			p.raw(`</a>`)
		}
		if v.ExportHref != "" {
			p.raw(`<a`)
			p.href(v.ExportHref)
			p.raw(`>Export CSV</a>`)
		}
		p.raw(`</div>`)

		p.raw(`<table><thead><tr>`)
		for _, c := range v.Columns {
			p.raw(`<th>`)
			if c.SortHref == "" {
				p.text(c.Label)
			} else {
				p.raw(`<a`)
				p.href(c.SortHref)
				p.raw(`>`)
				p.text(c.Label)
				switch c.Indicator {
				case "asc":
					p.raw(` &#9650;`)
				case "desc":
					p.raw(` &#9660;`)
				}
				p.raw(`</a>`)
			}
			p.raw(`</th>`)
		}
		p.raw(`<th></th></tr></thead><tbody>`)
		if len(v.Rows) == 0 {
			p.raw(`<tr><td`)
			p.attr("colspan", itoa(len(v.Columns)+1))
			p.raw(`>No rows</td></tr>`)
		}
		for _, r := range v.Rows {
			p.raw(`<tr`)
			p.attr("data-id", itoa64(r.ID))
			p.raw(`>`)
			for _, cell := range r.Cells {
				p.raw(`<td>`)
				p.text(orDash(cell))
				p.raw(`</td>`)
			}
			p.raw(`<td>`)
			if r.EditHref != "" {
				p.raw(`<a`)
				p.href(r.EditHref)
				p.raw(`>Edit</a> `)
			}
			if r.DeleteHref != "" {
				p.raw(`<a`)
				p.href(r.DeleteHref)
				p.raw(`>Delete</a>`)
			}
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}
