package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/logging"
	"github.com/JonMunkholm/trainer/internal/web/templates"
)

// formDateLayout is the value format of a datetime-local input.
const formDateLayout = "2006-01-02T15:04"

func (s *Server) trainingScreen(r *http.Request) *core.Screen[core.Training] {
	return core.NewScreen(core.TrainingKind, s.deps.Trainings,
		core.WithAudit[core.Training](s.deps.Audit),
		core.WithLogger[core.Training](logging.FromContext(r.Context())),
	)
}

func (s *Server) handleTrainings(w http.ResponseWriter, r *http.Request) {
	sc := s.trainingScreen(r)
	status := http.StatusOK
	if !sc.Refresh(r.Context()) {
		status = http.StatusBadGateway
	}
	applyListParams(sc.State(), r.URL.Query())
	s.render(w, r, status, templates.ListPage(listView(sc.State(), "/trainings", noticeFrom(r))))
}

func (s *Server) handleTrainingExport(w http.ResponseWriter, r *http.Request) {
	sc := s.trainingScreen(r)
	if !sc.Refresh(r.Context()) {
		s.respondError(w, r, bannerError(sc.State().Error()), http.StatusBadGateway)
		return
	}
	applyListParams(sc.State(), r.URL.Query())
	exportCSV(w, r, sc.State())
}

func (s *Server) handleTrainingNew(w http.ResponseWriter, r *http.Request) {
	customers, banner := s.customerOptions(r)
	d := core.NewDialog(0, core.Training{Date: time.Now().Truncate(time.Hour), Duration: 60})
	status := http.StatusOK
	if banner != "" {
		status = http.StatusBadGateway
	}
	s.render(w, r, status, s.formPage(r, trainingForm(d, customers, banner)))
}

func (s *Server) handleTrainingCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err), http.StatusBadRequest)
		return
	}
	customers, banner := s.customerOptions(r)
	d := core.NewDialog(0, trainingFromForm(r, customers))
	if banner != "" {
		s.render(w, r, http.StatusBadGateway, s.formPage(r, trainingForm(d, customers, banner)))
		return
	}

	sc := s.trainingScreen(r)
	if sc.Save(r.Context(), d) != core.PhaseDone {
		s.render(w, r, failureStatus(d), s.formPage(r, trainingForm(d, customers, sc.State().Error())))
		return
	}
	redirect(w, r, "/trainings", "training-created")
}

func (s *Server) handleTrainingEdit(w http.ResponseWriter, r *http.Request) {
	_, held, ok := s.loadTraining(w, r)
	if !ok {
		return
	}
	customers, banner := s.customerOptions(r)
	s.render(w, r, http.StatusOK, s.formPage(r, trainingForm(core.NewDialog(held.ID, held), customers, banner)))
}

func (s *Server) handleTrainingUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err), http.StatusBadRequest)
		return
	}
	sc, held, ok := s.loadTraining(w, r)
	if !ok {
		return
	}
	customers, banner := s.customerOptions(r)
	d := core.NewDialog(held.ID, trainingFromForm(r, customers))
	if banner != "" {
		s.render(w, r, http.StatusBadGateway, s.formPage(r, trainingForm(d, customers, banner)))
		return
	}
	if sc.Save(r.Context(), d) != core.PhaseDone {
		s.render(w, r, failureStatus(d), s.formPage(r, trainingForm(d, customers, sc.State().Error())))
		return
	}
	redirect(w, r, "/trainings", "training-updated")
}

func (s *Server) handleTrainingDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	_, held, ok := s.loadTraining(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, templates.ConfirmPage(templates.ConfirmView{
		Title:     "Delete training",
		Active:    core.TrainingKind.Key,
		Question:  fmt.Sprintf("Delete training %s?", core.TrainingKind.Describe(held)),
		Action:    fmt.Sprintf("/trainings/%d/delete", held.ID),
		CancelURL: "/trainings",
		CSRF:      csrfField(r),
	}))
}

func (s *Server) handleTrainingDelete(w http.ResponseWriter, r *http.Request) {
	sc, held, ok := s.loadTraining(w, r)
	if !ok {
		return
	}
	confirmed := func(core.Training) bool { return r.PostFormValue("confirm") == "yes" }
	switch sc.Delete(r.Context(), held.ID, confirmed) {
	case core.PhaseDone:
		redirect(w, r, "/trainings", "training-deleted")
	case core.PhaseCancelled:
		redirect(w, r, "/trainings", "cancelled")
	default:
		s.render(w, r, http.StatusBadGateway, templates.ListPage(listView(sc.State(), "/trainings", "")))
	}
}

func (s *Server) loadTraining(w http.ResponseWriter, r *http.Request) (*core.Screen[core.Training], core.Training, bool) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return nil, core.Training{}, false
	}
	sc := s.trainingScreen(r)
	if !sc.Refresh(r.Context()) {
		s.respondError(w, r, bannerError(sc.State().Error()), http.StatusBadGateway)
		return nil, core.Training{}, false
	}
	held, ok := sc.State().Find(id)
	if !ok {
		s.respondError(w, r, fmt.Errorf("training %d: %w", id, core.ErrNotInList), http.StatusNotFound)
		return nil, core.Training{}, false
	}
	return sc, held, true
}

// customerOptions fetches the customers a training can be assigned to.
// On failure it returns the customer fetch banner.
func (s *Server) customerOptions(r *http.Request) ([]core.Customer, string) {
	sc := s.customerScreen(r)
	if !sc.Refresh(r.Context()) {
		return nil, sc.State().Error()
	}
	sc.State().SetSort(core.SortSpec{Key: "lastname", Dir: core.Ascending})
	return sc.State().Projection(), ""
}

// trainingFromForm reads the dialog values. The owner is resolved from
// customers by id; an unknown id leaves the training without an owner so
// validation reports the customer field.
func trainingFromForm(r *http.Request, customers []core.Customer) core.Training {
	t := core.Training{Activity: strings.TrimSpace(r.PostFormValue("activity"))}
	if d, err := time.ParseInLocation(formDateLayout, r.PostFormValue("date"), core.DisplayLocation()); err == nil {
		t.Date = d
	}
	t.Duration, _ = strconv.Atoi(strings.TrimSpace(r.PostFormValue("duration")))

	id, _ := strconv.ParseInt(r.PostFormValue("customer"), 10, 64)
	for _, c := range customers {
		if id > 0 && c.ID == id {
			t.Customer = c.Ref()
			t.OwnerHref = c.Locator()
			break
		}
	}
	return t
}

func trainingForm(d *core.Dialog[core.Training], customers []core.Customer, banner string) templates.FormView {
	t := d.Values
	date := ""
	if !t.Date.IsZero() {
		date = t.Date.In(core.DisplayLocation()).Format(formDateLayout)
	}
	duration := ""
	if t.Duration > 0 {
		duration = strconv.Itoa(t.Duration)
	}

	owner := t.CustomerID()
	options := make([]templates.Option, 0, len(customers))
	for _, c := range customers {
		options = append(options, templates.Option{
			Value:    strconv.FormatInt(c.ID, 10),
			Label:    c.FullName(),
			Selected: c.ID == owner,
		})
	}

	v := templates.FormView{
		Title:     "New training",
		Active:    core.TrainingKind.Key,
		Action:    "/trainings",
		Banner:    banner,
		Submit:    "Save",
		CancelURL: "/trainings",
		Fields: []templates.FormField{
			{Name: "date", Label: "Date", Type: "datetime-local", Value: date, Error: d.Errors["date"], Required: true},
			{Name: "duration", Label: "Duration (min)", Type: "number", Value: duration, Error: d.Errors["duration"], Required: true},
			{Name: "activity", Label: "Activity", Type: "text", Value: t.Activity, Error: d.Errors["activity"], Required: true},
			{Name: "customer", Label: "Customer", Type: "select", Options: options, Error: d.Errors["customer"], Required: true},
		},
	}
	if d.Editing() {
		v.Title = "Edit training"
		v.Action = fmt.Sprintf("/trainings/%d", d.Target)
	}
	return v
}
