package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/logging"
	"github.com/JonMunkholm/trainer/internal/web/templates"
)

// customerScreen builds the per-request orchestrator. Every request works
// from a fresh fetch, so no list state is shared between clients.
func (s *Server) customerScreen(r *http.Request) *core.Screen[core.Customer] {
	return core.NewScreen(core.CustomerKind, s.deps.Customers,
		core.WithAudit[core.Customer](s.deps.Audit),
		core.WithLogger[core.Customer](logging.FromContext(r.Context())),
	)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	sc := s.customerScreen(r)
	status := http.StatusOK
	if !sc.Refresh(r.Context()) {
		status = http.StatusBadGateway
	}
	applyListParams(sc.State(), r.URL.Query())
	s.render(w, r, status, templates.ListPage(listView(sc.State(), "/customers", noticeFrom(r))))
}

func (s *Server) handleCustomerExport(w http.ResponseWriter, r *http.Request) {
	sc := s.customerScreen(r)
	if !sc.Refresh(r.Context()) {
		s.respondError(w, r, bannerError(sc.State().Error()), http.StatusBadGateway)
		return
	}
	applyListParams(sc.State(), r.URL.Query())
	exportCSV(w, r, sc.State())
}

func (s *Server) handleCustomerNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.formPage(r, customerForm(core.NewDialog(0, core.Customer{}), "")))
}

func (s *Server) handleCustomerCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err), http.StatusBadRequest)
		return
	}
	sc := s.customerScreen(r)
	d := core.NewDialog(0, customerFromForm(r))
	if sc.Save(r.Context(), d) != core.PhaseDone {
		s.render(w, r, failureStatus(d), s.formPage(r, customerForm(d, sc.State().Error())))
		return
	}
	redirect(w, r, "/customers", "customer-created")
}

func (s *Server) handleCustomerEdit(w http.ResponseWriter, r *http.Request) {
	sc, held, ok := s.loadCustomer(w, r)
	if !ok {
		return
	}
	d := core.NewDialog(held.ID, held)
	s.render(w, r, http.StatusOK, s.formPage(r, customerForm(d, sc.State().Error())))
}

func (s *Server) handleCustomerUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err), http.StatusBadRequest)
		return
	}
	sc, held, ok := s.loadCustomer(w, r)
	if !ok {
		return
	}
	d := core.NewDialog(held.ID, customerFromForm(r))
	if sc.Save(r.Context(), d) != core.PhaseDone {
		s.render(w, r, failureStatus(d), s.formPage(r, customerForm(d, sc.State().Error())))
		return
	}
	redirect(w, r, "/customers", "customer-updated")
}

func (s *Server) handleCustomerDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	_, held, ok := s.loadCustomer(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, templates.ConfirmPage(templates.ConfirmView{
		Title:     "Delete customer",
		Active:    core.CustomerKind.Key,
		Question:  fmt.Sprintf("Delete customer %s?", held.FullName()),
		Action:    fmt.Sprintf("/customers/%d/delete", held.ID),
		CancelURL: "/customers",
		CSRF:      csrfField(r),
	}))
}

func (s *Server) handleCustomerDelete(w http.ResponseWriter, r *http.Request) {
	sc, held, ok := s.loadCustomer(w, r)
	if !ok {
		return
	}
	confirmed := func(core.Customer) bool { return r.PostFormValue("confirm") == "yes" }
	switch sc.Delete(r.Context(), held.ID, confirmed) {
	case core.PhaseDone:
		redirect(w, r, "/customers", "customer-deleted")
	case core.PhaseCancelled:
		redirect(w, r, "/customers", "cancelled")
	default:
		s.render(w, r, http.StatusBadGateway, templates.ListPage(listView(sc.State(), "/customers", "")))
	}
}

// loadCustomer refreshes the list and resolves {id} against it. It writes
// the error response itself and reports false when the record is
// unavailable.
func (s *Server) loadCustomer(w http.ResponseWriter, r *http.Request) (*core.Screen[core.Customer], core.Customer, bool) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return nil, core.Customer{}, false
	}
	sc := s.customerScreen(r)
	if !sc.Refresh(r.Context()) {
		s.respondError(w, r, bannerError(sc.State().Error()), http.StatusBadGateway)
		return nil, core.Customer{}, false
	}
	held, ok := sc.State().Find(id)
	if !ok {
		s.respondError(w, r, fmt.Errorf("customer %d: %w", id, core.ErrNotInList), http.StatusNotFound)
		return nil, core.Customer{}, false
	}
	return sc, held, true
}

func customerFromForm(r *http.Request) core.Customer {
	v := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	return core.Customer{
		Firstname:     v("firstname"),
		Lastname:      v("lastname"),
		Email:         v("email"),
		Phone:         v("phone"),
		Streetaddress: v("streetaddress"),
		Postcode:      v("postcode"),
		City:          v("city"),
	}
}

func customerForm(d *core.Dialog[core.Customer], banner string) templates.FormView {
	c := d.Values
	field := func(name, label, typ, value string, required bool) templates.FormField {
		return templates.FormField{
			Name: name, Label: label, Type: typ, Value: value,
			Error: d.Errors[name], Required: required,
		}
	}
	v := templates.FormView{
		Title:     "New customer",
		Active:    core.CustomerKind.Key,
		Action:    "/customers",
		Banner:    banner,
		Submit:    "Save",
		CancelURL: "/customers",
		Fields: []templates.FormField{
			field("firstname", "First name", "text", c.Firstname, true),
			field("lastname", "Last name", "text", c.Lastname, true),
			field("email", "Email", "email", c.Email, true),
			field("phone", "Phone", "tel", c.Phone, false),
			field("streetaddress", "Address", "text", c.Streetaddress, false),
			field("postcode", "Postcode", "text", c.Postcode, false),
			field("city", "City", "text", c.City, false),
		},
	}
	if d.Editing() {
		v.Title = "Edit customer"
		v.Action = fmt.Sprintf("/customers/%d", d.Target)
	}
	return v
}
