package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/logging"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 64 << 10

// fieldErrorsResponse is the 422 body for rejected dialog values.
type fieldErrorsResponse struct {
	ErrorResponse
	Fields map[string]string `json:"fields"`
}

// trainingRequest is the JSON body for creating a training. The owner is
// named by customer id.
type trainingRequest struct {
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"`
	Activity   string    `json:"activity"`
	CustomerID int64     `json:"customerId"`
}

// statBar is one activity total with its chart width.
type statBar struct {
	core.ActivityTotal
	Width int `json:"width"`
}

func (s *Server) handleAPICustomers(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Customers.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, project(core.CustomerKind, items, r))
}

func (s *Server) handleAPITrainings(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Trainings.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, project(core.TrainingKind, items, r))
}

func (s *Server) handleAPICustomerCreate(w http.ResponseWriter, r *http.Request) {
	var c core.Customer
	if err := decodeBody(r, &c); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	c.ID, c.Links = 0, nil
	sc := s.customerScreen(r)
	saveJSON(w, r, sc, core.NewDialog(0, c), http.StatusCreated)
}

func (s *Server) handleAPICustomerUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	var c core.Customer
	if err := decodeBody(r, &c); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	sc := s.customerScreen(r)
	if !sc.Refresh(r.Context()) {
		respondBanner(w, http.StatusBadGateway, sc.State().Error(), "API001")
		return
	}
	if _, ok := sc.State().Find(id); !ok {
		s.respondError(w, r, fmt.Errorf("customer %d: %w", id, core.ErrNotInList), http.StatusNotFound)
		return
	}
	c.ID, c.Links = id, nil
	saveJSON(w, r, sc, core.NewDialog(id, c), http.StatusOK)
}

func (s *Server) handleAPICustomerDelete(w http.ResponseWriter, r *http.Request) {
	deleteJSON(s, w, r, s.customerScreen(r))
}

func (s *Server) handleAPITrainingCreate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.trainingFromRequest(w, r)
	if !ok {
		return
	}
	saveJSON(w, r, s.trainingScreen(r), core.NewDialog(0, t), http.StatusCreated)
}

func (s *Server) handleAPITrainingUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	t, ok := s.trainingFromRequest(w, r)
	if !ok {
		return
	}
	sc := s.trainingScreen(r)
	if !sc.Refresh(r.Context()) {
		respondBanner(w, http.StatusBadGateway, sc.State().Error(), "API001")
		return
	}
	if _, ok := sc.State().Find(id); !ok {
		s.respondError(w, r, fmt.Errorf("training %d: %w", id, core.ErrNotInList), http.StatusNotFound)
		return
	}
	t.ID = id
	saveJSON(w, r, sc, core.NewDialog(id, t), http.StatusOK)
}

// trainingFromRequest decodes the body and resolves customerId against the
// current customer list. An unknown id leaves the owner empty, which fails
// validation.
func (s *Server) trainingFromRequest(w http.ResponseWriter, r *http.Request) (core.Training, bool) {
	var req trainingRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return core.Training{}, false
	}
	t := core.Training{Date: req.Date, Duration: req.Duration, Activity: req.Activity}

	if req.CustomerID > 0 {
		cs := s.customerScreen(r)
		if !cs.Refresh(r.Context()) {
			respondBanner(w, http.StatusBadGateway, cs.State().Error(), "API001")
			return core.Training{}, false
		}
		if owner, ok := cs.State().Find(req.CustomerID); ok {
			t.Customer, t.OwnerHref = owner.Ref(), owner.Locator()
		}
	}
	return t, true
}

func (s *Server) handleAPITrainingDelete(w http.ResponseWriter, r *http.Request) {
	deleteJSON(s, w, r, s.trainingScreen(r))
}

func (s *Server) handleAPICalendar(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Trainings.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, core.CalendarEvents(items, core.DisplayLocation()))
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Trainings.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	totals := core.ActivityTotals(items)
	widths := core.BarWidths(totals)
	bars := make([]statBar, len(totals))
	for i, t := range totals {
		bars[i] = statBar{ActivityTotal: t, Width: widths[i]}
	}
	writeJSON(w, http.StatusOK, bars)
}

func (s *Server) handleAPIAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.recentAudit(r, auditFilter(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if s.deps.Resetter == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{
			Error: "reset is not available", Message: "Reset is not available.", Code: "ERR000",
		})
		return
	}
	if err := s.deps.Resetter.Reset(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	logging.FromContext(r.Context()).Warn("backend data reset", "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// project applies search, sort and dir query parameters to items.
func project[T any](kind *core.Kind[T], items []T, r *http.Request) []T {
	state := core.NewListState(kind)
	state.SetItems(items)
	applyListParams(state, r.URL.Query())
	out := state.Projection()
	if out == nil {
		out = []T{}
	}
	return out
}

// saveJSON runs the dialog through the orchestrator and reports the phase.
func saveJSON[T any](w http.ResponseWriter, r *http.Request, sc *core.Screen[T], d *core.Dialog[T], okStatus int) {
	if sc.Save(r.Context(), d) == core.PhaseDone {
		writeJSON(w, okStatus, map[string]string{"status": string(d.Phase)})
		return
	}
	if len(d.Errors) > 0 {
		um := core.MapError(core.ErrInvalidInput)
		writeJSON(w, http.StatusUnprocessableEntity, fieldErrorsResponse{
			ErrorResponse: ErrorResponse{Error: um.Message, Message: um.Message, Action: um.Action, Code: um.Code},
			Fields:        d.Errors,
		})
		return
	}
	respondBanner(w, http.StatusBadGateway, sc.State().Error(), "API001")
}

// deleteJSON deletes {id}. Issuing DELETE is the confirmation.
func deleteJSON[T any](s *Server, w http.ResponseWriter, r *http.Request, sc *core.Screen[T]) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if !sc.Refresh(r.Context()) {
		respondBanner(w, http.StatusBadGateway, sc.State().Error(), "API001")
		return
	}
	if _, ok := sc.State().Find(id); !ok {
		s.respondError(w, r, fmt.Errorf("%s %d: %w", sc.State().Kind().Singular, id, core.ErrNotInList), http.StatusNotFound)
		return
	}
	if sc.Delete(r.Context(), id, func(T) bool { return true }) != core.PhaseDone {
		respondBanner(w, http.StatusBadGateway, sc.State().Error(), "API001")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", core.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}
	return nil
}
