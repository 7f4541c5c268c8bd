// Package templates renders the dashboard pages as templ components.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// page accumulates output and keeps the first write error.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newPage(ctx context.Context, w io.Writer) *page {
	return &page{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (p *page) raw(s ...string) {
	for _, part := range s {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, part)
	}
}

// text writes escaped text.
func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

// attr writes name="escaped value".
func (p *page) attr(name, value string) {
	p.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes a sanitized link attribute.
func (p *page) href(url string) {
	p.attr("href", string(templ.URL(url)))
}

// hidden writes a hidden input; nothing when name is empty.
func (p *page) hidden(name, value string) {
	if name == "" {
		return
	}
	p.raw(`<input type="hidden"`)
	p.attr("name", name)
	p.attr("value", value)
	p.raw(`>`)
}

func (p *page) render(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func itoa(n int) string { return strconv.Itoa(n) }

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }

// orDash shows "-" for empty cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
