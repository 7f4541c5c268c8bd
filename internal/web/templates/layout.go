package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// NavItem is one entry of the top navigation.
type NavItem struct {
	Key   string
	Label string
	Href  string
}

// Nav lists the dashboard sections in display order.
var Nav = []NavItem{
	{Key: "customers", Label: "Customers", Href: "/customers"},
	{Key: "trainings", Label: "Trainings", Href: "/trainings"},
	{Key: "calendar", Label: "Calendar", Href: "/calendar"},
	{Key: "stats", Label: "Statistics", Href: "/stats"},
	{Key: "audit", Label: "Audit log", Href: "/audit-log"},
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
header{background:#1f3a5f;color:#fff;padding:.75rem 1.5rem;display:flex;gap:1.5rem;align-items:center}
header a{color:#d9e2ec;text-decoration:none}header a.active{color:#fff;font-weight:600}
main{padding:1.5rem;max-width:1200px;margin:0 auto}
table{border-collapse:collapse;width:100%;background:#fff}
th,td{padding:.45rem .6rem;border-bottom:1px solid #e4e7eb;text-align:left}
th a{color:inherit;text-decoration:none}
.banner{background:#fde8e8;border:1px solid #f8b4b4;color:#9b1c1c;padding:.6rem 1rem;margin-bottom:1rem}
.notice{background:#e3f8e8;border:1px solid #a3e4b5;color:#1d5c2e;padding:.6rem 1rem;margin-bottom:1rem}
.toolbar{display:flex;gap:.75rem;margin-bottom:1rem;align-items:center}
.error{color:#9b1c1c;font-size:.85rem}
form.dialog{background:#fff;padding:1rem 1.5rem;max-width:480px}
form.dialog label{display:block;margin-top:.75rem}
.bar{background:#3e7cb1;height:1.1rem}
`

// Layout wraps body in the page chrome. active is the Nav key to highlight.
func Layout(title, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(` | Personal Trainer</title><style>`, styles, `</style></head><body><header><strong>Personal Trainer</strong><nav>`)
		for _, item := range Nav {
			p.raw(`<a`)
			p.href(item.Href)
			if item.Key == active {
				p.attr("class", "active")
			}
			p.raw(`>`)
			p.text(item.Label)
			p.raw(`</a> `)
		}
		p.raw(`</nav></header><main><h1>`)
		p.text(title)
		p.raw(`</h1>`)
		p.render(body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// Banner renders the operation error slot. Empty messages render nothing.
func Banner(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if msg == "" {
			return nil
		}
		p := newPage(ctx, w)
		p.raw(`<div class="banner" role="alert">`)
		p.text(msg)
		p.raw(`</div>`)
		return p.err
	})
}

// Notice renders a success message shown after a redirect.
func Notice(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if msg == "" {
			return nil
		}
		p := newPage(ctx, w)
		p.raw(`<div class="notice" role="status">`)
		p.text(msg)
		p.raw(`</div>`)
		return p.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<div class="banner" role="alert"><p>`)
		p.text(message)
		p.raw(`</p>`)
		if action != "" {
			p.raw(`<p>`)
			p.text(action)
			p.raw(`</p>`)
		}
		p.raw(`<p class="error">Code: `)
		p.text(code)
		p.raw(`</p></div>`)
		return p.err
	})
}
