package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/trainer/internal/core"
)

const (
	trainingsPath     = "/trainings"
	trainingsListPath = "/gettrainings"
)

// Trainings is the training resource. It satisfies core.Resource.
type Trainings struct {
	c         *Client
	customers *Customers
}

var _ core.Resource[core.Training] = (*Trainings)(nil)

// trainingWire is a training as the backend sends it. /gettrainings embeds
// the customer object; the /trainings envelope only links to it.
type trainingWire struct {
	ID       int64           `json:"id"`
	Date     string          `json:"date"`
	Duration int             `json:"duration"`
	Activity string          `json:"activity"`
	Customer json.RawMessage `json:"customer"`
	Links    core.Links      `json:"_links"`
}

type trainingPayload struct {
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Duration int    `json:"duration"`
	Customer string `json:"customer"`
}

// List fetches all trainings with their owners. Owners that are only
// linked are fetched once per distinct link.
func (r *Trainings) List(ctx context.Context) ([]core.Training, error) {
	body, err := r.c.do(ctx, "trainings", http.MethodGet, trainingsListPath, nil)
	if err != nil {
		return nil, err
	}
	wires, err := decodeCollection[trainingWire](body, "trainings")
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, URL: r.c.resolve(trainingsListPath), Err: err}
	}

	owners := make(map[string]core.Customer)
	out := make([]core.Training, 0, len(wires))
	for _, w := range wires {
		t, err := r.fromWire(w)
		if err != nil {
			return nil, &RequestError{Method: http.MethodGet, URL: r.c.resolve(trainingsListPath), Err: err}
		}
		if t.Customer == nil {
			if err := r.resolveOwner(ctx, &t, owners); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *Trainings) fromWire(w trainingWire) (core.Training, error) {
	date, err := parseDate(w.Date)
	if err != nil {
		return core.Training{}, fmt.Errorf("training %d: %w", w.ID, err)
	}
	t := core.Training{
		ID:       w.ID,
		Date:     date,
		Duration: w.Duration,
		Activity: w.Activity,
		Links:    w.Links,
	}
	if t.ID == 0 {
		t.ID = core.IDFromHref(w.Links.Self())
	}
	if t.Links.Self() == "" {
		if loc := selfLocator(r.c.baseURL, "trainings", "", t.ID); loc != "" {
			t.Links = ensureLinks(t.Links)
			t.Links["self"] = core.Link{Href: loc}
		}
	}

	raw := bytes.TrimSpace(w.Customer)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var href string
		if err := json.Unmarshal(raw, &href); err != nil {
			return core.Training{}, fmt.Errorf("training %d customer: %w", t.ID, err)
		}
		t.Links = ensureLinks(t.Links)
		t.Links["customer"] = core.Link{Href: href}
	default:
		var ref core.CustomerRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return core.Training{}, fmt.Errorf("training %d customer: %w", t.ID, err)
		}
		t.Customer = &ref
		t.OwnerHref = selfLocator(r.c.baseURL, "customers", "", ref.ID)
	}
	return t, nil
}

// resolveOwner fetches the customer behind the training's customer link.
// A 404 there means the owner is gone.
func (r *Trainings) resolveOwner(ctx context.Context, t *core.Training, cache map[string]core.Customer) error {
	href := t.Links.Href("customer")
	if href == "" {
		return nil
	}
	owner, ok := cache[href]
	if !ok {
		var err error
		owner, err = r.customers.Get(ctx, href)
		if err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) && reqErr.NotFound() {
				return fmt.Errorf("training %d: %w: %w", t.ID, core.ErrOwnerNotFound, err)
			}
			return err
		}
		cache[href] = owner
	}
	t.Customer = owner.Ref()
	t.OwnerHref = owner.Locator()
	return nil
}

// Create posts a new training owned by t.OwnerHref.
func (r *Trainings) Create(ctx context.Context, t core.Training) error {
	payload, err := r.payload(t)
	if err != nil {
		return fmt.Errorf("create training: %w", err)
	}
	_, err = r.c.do(ctx, "trainings", http.MethodPost, trainingsPath, payload)
	return err
}

// Update replaces the training at locator.
func (r *Trainings) Update(ctx context.Context, locator string, t core.Training) error {
	if locator == "" {
		return fmt.Errorf("update training: %w", core.ErrMissingLocator)
	}
	payload, err := r.payload(t)
	if err != nil {
		return fmt.Errorf("update training: %w", err)
	}
	_, err = r.c.do(ctx, "trainings", http.MethodPut, locator, payload)
	return err
}

// Delete removes the training at locator.
func (r *Trainings) Delete(ctx context.Context, locator string) error {
	if locator == "" {
		return fmt.Errorf("delete training: %w", core.ErrMissingLocator)
	}
	_, err := r.c.do(ctx, "trainings", http.MethodDelete, locator, nil)
	return err
}

func (r *Trainings) payload(t core.Training) (trainingPayload, error) {
	owner := t.OwnerHref
	if owner == "" && t.Customer != nil {
		owner = selfLocator(r.c.baseURL, "customers", "", t.Customer.ID)
	}
	if owner == "" {
		return trainingPayload{}, core.ErrOwnerNotFound
	}
	return trainingPayload{
		Date:     formatDate(t.Date),
		Activity: t.Activity,
		Duration: t.Duration,
		Customer: owner,
	}, nil
}
