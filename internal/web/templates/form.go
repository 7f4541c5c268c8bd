package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Option is one choice of a select field.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FormField is one input of an add or edit dialog.
type FormField struct {
	Name     string
	Label    string
	Type     string // text, email, number, datetime-local, select
	Value    string
	Error    string
	Options  []Option
	Required bool
}

// CSRF is the hidden token field posted with every form.
type CSRF struct {
	Field string
	Token string
}

// FormView is the model of an add or edit dialog.
type FormView struct {
	Title     string
	Active    string
	Action    string
	Banner    string
	Fields    []FormField
	Submit    string
	CancelURL string
	CSRF      CSRF
}

// FormPage renders the dialog inside the layout.
func FormPage(v FormView) templ.Component {
	return Layout(v.Title, v.Active, formBody(v))
}

func formBody(v FormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.render(Banner(v.Banner))
		p.raw(`<form class="dialog" method="post"`)
		p.attr("action", v.Action)
		p.raw(`>`)
		p.hidden(v.CSRF.Field, v.CSRF.Token)
		for _, f := range v.Fields {
			p.raw(`<label>`)
			p.text(f.Label)
			if f.Type == "select" {
				p.raw(`<select`)
				p.attr("name", f.Name)
				if f.Required {
					p.raw(` required`)
				}
				p.raw(`><option value="">Choose...</option>`)
				for _, o := range f.Options {
					p.raw(`<option`)
					p.attr("value", o.Value)
					if o.Selected {
						p.raw(` selected`)
					}
					p.raw(`>`)
					p.text(o.Label)
					p.raw(`</option>`)
				}
				p.raw(`</select>`)
			} else {
				p.raw(`<input`)
				p.attr("type", f.Type)
				p.attr("name", f.Name)
				p.attr("value", f.Value)
				if f.Required {
					p.raw(` required`)
				}
				p.raw(`>`)
			}
			p.raw(`</label>`)
			if f.Error != "" {
				p.raw(`<div class="error">`)
				p.text(f.Error)
				p.raw(`</div>`)
			}
		}
		p.raw(`<p><button type="submit">`)
		p.text(v.Submit)
		p.raw(`</button> <a`)
		p.href(v.CancelURL)
		p.raw(`>Cancel</a></p></form>`)
		return p.err
	})
}

// ConfirmView asks the user to confirm a destructive action.
type ConfirmView struct {
	Title     string
	Active    string
	Question  string
	Action    string
	CancelURL string
	CSRF      CSRF
}

// ConfirmPage renders a yes/no form. Only an explicit "yes" submits
// confirm=yes.
func ConfirmPage(v ConfirmView) templ.Component {
	return Layout(v.Title, v.Active, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPage(ctx, w)
		p.raw(`<form class="dialog" method="post"`)
		p.attr("action", v.Action)
		p.raw(`>`)
		p.hidden(v.CSRF.Field, v.CSRF.Token)
		p.raw(`<p>`)
		p.text(v.Question)
		p.raw(`</p><button type="submit" name="confirm" value="yes">Yes, delete</button> `)
		p.raw(`<button type="submit" name="confirm" value="no">Cancel</button></form>`)
		return p.err
	}))
}

// ErrorPage renders a full page around an error alert.
func ErrorPage(title, message, action, code string) templ.Component {
	return Layout(title, "", ErrorAlert(message, action, code))
}
