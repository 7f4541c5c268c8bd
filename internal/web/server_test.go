package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/trainer/internal/config"
	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/web/middleware"
)

// fakeResource is an in-memory backend for one kind that records calls.
type fakeResource[T any] struct {
	mu      sync.Mutex
	kind    *core.Kind[T]
	items   []T
	created []T
	calls   []string
	nextID  int64
	assign  func(*T, int64)

	listErr, saveErr, deleteErr error
}

func (f *fakeResource[T]) List(context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "GET")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]T(nil), f.items...), nil
}

func (f *fakeResource[T]) Create(_ context.Context, rec T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "POST")
	if f.saveErr != nil {
		return f.saveErr
	}
	f.created = append(f.created, rec)
	f.nextID++
	f.assign(&rec, f.nextID)
	f.items = append(f.items, rec)
	return nil
}

func (f *fakeResource[T]) Update(_ context.Context, locator string, rec T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "PUT "+locator)
	if f.saveErr != nil {
		return f.saveErr
	}
	for i := range f.items {
		if f.kind.Locator(f.items[i]) == locator {
			f.assign(&rec, f.kind.ID(f.items[i]))
			f.items[i] = rec
		}
	}
	return nil
}

func (f *fakeResource[T]) Delete(_ context.Context, locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DELETE "+locator)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.items {
		if f.kind.Locator(f.items[i]) == locator {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeResource[T]) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func selfLink(kind string, id int64) core.Links {
	return core.Links{"self": {Href: fmt.Sprintf("http://backend/api/%s/%d", kind, id)}}
}

func newFakeCustomers(items ...core.Customer) *fakeResource[core.Customer] {
	f := &fakeResource[core.Customer]{
		kind:   core.CustomerKind,
		nextID: 100,
		assign: func(c *core.Customer, id int64) { c.ID, c.Links = id, selfLink("customers", id) },
	}
	for _, c := range items {
		f.assign(&c, c.ID)
		f.items = append(f.items, c)
	}
	return f
}

func newFakeTrainings(items ...core.Training) *fakeResource[core.Training] {
	f := &fakeResource[core.Training]{
		kind:   core.TrainingKind,
		nextID: 200,
		assign: func(t *core.Training, id int64) { t.ID, t.Links = id, selfLink("trainings", id) },
	}
	for _, t := range items {
		f.assign(&t, t.ID)
		f.items = append(f.items, t)
	}
	return f
}

type fakeResetter struct {
	calls int
	err   error
}

func (f *fakeResetter) Reset(context.Context) error {
	f.calls++
	return f.err
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("HTTP %d: request failed", int(e)) }
func (e statusErr) Unwrap() error   { return core.ErrRequestFailed }
func (e statusErr) StatusCode() int { return int(e) }

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Backend:  config.BackendConfig{BaseURL: "http://backend/api"},
		Security: config.SecurityConfig{EnableCSP: true},
		Audit:    config.AuditConfig{MemoryCapacity: 50},
	}
}

type harness struct {
	server    *Server
	customers *fakeResource[core.Customer]
	trainings *fakeResource[core.Training]
	audit     *core.MemoryAuditStore
	resetter  *fakeResetter
	registry  *prometheus.Registry
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	prev := core.DisplayLocation()
	core.SetDisplayLocation(time.UTC)
	t.Cleanup(func() { core.SetDisplayLocation(prev) })

	h := &harness{
		customers: newFakeCustomers(
			core.Customer{ID: 1, Firstname: "Anna", Lastname: "Aho", Email: "anna@example.com", City: "Helsinki"},
			core.Customer{ID: 2, Firstname: "Bert", Lastname: "Berg", Email: "bert@example.com"},
		),
		audit:    core.NewMemoryAuditStore(50),
		resetter: &fakeResetter{},
		registry: prometheus.NewRegistry(),
	}
	anna := h.customers.items[0]
	h.trainings = newFakeTrainings(
		core.Training{ID: 10, Activity: "Spinning", Duration: 60,
			Date: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Customer: anna.Ref(), OwnerHref: anna.Locator()},
		core.Training{ID: 11, Activity: "Gym", Duration: 30,
			Date: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)},
	)
	h.server = NewServer(cfg, Deps{
		Customers: h.customers,
		Trainings: h.trainings,
		Audit:     h.audit,
		Resetter:  h.resetter,
		Registry:  h.registry,
	})
	return h
}

func (h *harness) do(method, target string, body io.Reader, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "192.0.2.10:5000"
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.server.Router().ServeHTTP(rec, req)
	return rec
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// formToken loads the add dialog and returns the session cookie header and
// the token embedded in the form.
func (h *harness) formToken() (cookie, token string) {
	rec := h.do(http.MethodGet, "/customers/new", nil)
	for _, c := range rec.Result().Cookies() {
		cookie = c.Name + "=" + c.Value
	}
	if m := csrfInput.FindStringSubmatch(rec.Body.String()); m != nil {
		token = html.UnescapeString(m[1])
	}
	return cookie, token
}

// postForm submits form the way the browser would, with a valid token.
func (h *harness) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	cookie, token := h.formToken()
	signed := url.Values{middleware.CSRFFieldName: {token}}
	for k, v := range form {
		signed[k] = v
	}
	return h.do(http.MethodPost, target, strings.NewReader(signed.Encode()),
		"Content-Type", "application/x-www-form-urlencoded",
		"Cookie", cookie)
}

func TestServer_Infrastructure(t *testing.T) {
	t.Run("Should redirect the root to the customer list", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/customers", rec.Header().Get("Location"))
	})

	t.Run("Should report health", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("Should set security headers", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/healthz", nil)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
	})

	t.Run("Should expose request metrics by route", func(t *testing.T) {
		h := newHarness(t, nil)
		h.do(http.MethodGet, "/customers", nil)
		rec := h.do(http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `trainer_http_requests_total{method="GET",route="/customers`)
	})

	t.Run("Should limit mutations per client", func(t *testing.T) {
		cfg := testConfig()
		cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, MutationLimit: 1}
		h := newHarness(t, cfg)

		form := url.Values{"confirm": {"no"}}
		first := h.postForm("/customers/1/delete", form)
		second := h.postForm("/customers/1/delete", form)

		assert.Equal(t, http.StatusSeeOther, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Contains(t, second.Body.String(), "RATE001")
		assert.NotEmpty(t, second.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/customers", nil).Code, "reads are not mutation-limited")
	})
}

func TestServer_CSRF(t *testing.T) {
	t.Run("Should reject a cross-site delete without a token", func(t *testing.T) {
		h := newHarness(t, nil)
		form := url.Values{"confirm": {"yes"}}
		rec := h.do(http.MethodPost, "/customers/1/delete", strings.NewReader(form.Encode()),
			"Content-Type", "application/x-www-form-urlencoded",
			"Origin", "https://evil.example",
			"Sec-Fetch-Site", "cross-site")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "CSRF001")
		assert.Empty(t, h.customers.Calls(), "backend must not be contacted")
	})

	t.Run("Should reject a valid token posted from another origin", func(t *testing.T) {
		h := newHarness(t, nil)
		cookie, token := h.formToken()
		require.NotEmpty(t, token)

		form := url.Values{"confirm": {"yes"}, middleware.CSRFFieldName: {token}}
		rec := h.do(http.MethodPost, "/customers/1/delete", strings.NewReader(form.Encode()),
			"Content-Type", "application/x-www-form-urlencoded",
			"Cookie", cookie,
			"Origin", "https://evil.example")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotContains(t, h.customers.Calls(), "DELETE http://backend/api/customers/1")
	})

	t.Run("Should accept a trusted origin with a token", func(t *testing.T) {
		cfg := testConfig()
		cfg.Security.CSRFTrustedOrigins = []string{"dashboard.example:8443"}
		h := newHarness(t, cfg)
		cookie, token := h.formToken()

		form := url.Values{"confirm": {"yes"}, middleware.CSRFFieldName: {token}}
		rec := h.do(http.MethodPost, "/customers/1/delete", strings.NewReader(form.Encode()),
			"Content-Type", "application/x-www-form-urlencoded",
			"Cookie", cookie,
			"Origin", "https://dashboard.example:8443")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, h.customers.Calls(), "DELETE http://backend/api/customers/1")
	})

	t.Run("Should embed the token in dialogs and confirmations", func(t *testing.T) {
		h := newHarness(t, nil)
		for _, target := range []string{"/customers/new", "/customers/1/edit", "/customers/1/delete", "/trainings/new", "/trainings/10/delete"} {
			rec := h.do(http.MethodGet, target, nil)
			require.Equal(t, http.StatusOK, rec.Code, target)
			assert.Regexp(t, csrfInput, rec.Body.String(), target)
		}
	})

	t.Run("Should leave the JSON API to key auth", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodDelete, "/api/customers/2", nil, "Origin", "https://evil.example")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCustomerPages(t *testing.T) {
	t.Run("Should list customers with sort links and dashes for empty cells", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers?sort=lastname&dir=asc", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, "Anna")
		assert.Contains(t, body, "Berg")
		assert.Contains(t, body, `href="/customers?dir=desc&amp;sort=lastname"`, "active ascending column toggles to descending")
		assert.Contains(t, body, `href="/customers?dir=asc&amp;sort=city"`)
		assert.Contains(t, body, "<td>-</td>")
		assert.Less(t, strings.Index(body, "Aho"), strings.Index(body, "Berg"))
	})

	t.Run("Should filter by search across all fields", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers?search=helsinki", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Anna")
		assert.NotContains(t, rec.Body.String(), "Bert")
	})

	t.Run("Should show the fetch banner when the backend fails", func(t *testing.T) {
		h := newHarness(t, nil)
		h.customers.listErr = statusErr(http.StatusInternalServerError)
		rec := h.do(http.MethodGet, "/customers", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Fetching customers failed.")
	})

	t.Run("Should create a customer, audit it and redirect", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/customers", url.Values{
			"firstname": {"Cleo"}, "lastname": {"Cruz"}, "email": {"cleo@example.com"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/customers?notice=customer-created", rec.Header().Get("Location"))
		require.Len(t, h.customers.created, 1)
		assert.Equal(t, "Cleo", h.customers.created[0].Firstname)
		assert.Equal(t, []string{"POST", "GET"}, h.customers.Calls(), "a successful save re-fetches the list")

		entries, err := h.audit.Recent(context.Background(), core.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, core.ActionCreate, entries[0].Action)
		assert.Equal(t, "192.0.2.10", entries[0].IPAddress)
	})

	t.Run("Should keep the dialog open with field errors on invalid input", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/customers", url.Values{
			"firstname": {"Cleo"}, "lastname": {"Cruz"}, "email": {"not-an-email"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "must be a valid email address")
		assert.Contains(t, rec.Body.String(), `value="Cleo"`)
		assert.Empty(t, h.customers.Calls(), "invalid values never reach the backend")
	})

	t.Run("Should keep entered values when the backend rejects the save", func(t *testing.T) {
		h := newHarness(t, nil)
		h.customers.saveErr = statusErr(http.StatusInternalServerError)
		rec := h.postForm("/customers", url.Values{
			"firstname": {"Cleo"}, "lastname": {"Cruz"}, "email": {"cleo@example.com"},
		})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Saving the customer failed.")
		assert.Contains(t, rec.Body.String(), `value="cleo@example.com"`)
	})

	t.Run("Should update through the held locator", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/customers/2", url.Values{
			"firstname": {"Bert"}, "lastname": {"Berg"}, "email": {"bert@new.example.com"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, h.customers.Calls(), "PUT http://backend/api/customers/2")
	})

	t.Run("Should answer 404 for an id not in the list", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers/999/edit", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "REC003")
	})

	t.Run("Should answer 400 for a malformed id", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers/abc/edit", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should ask before deleting", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers/1/delete", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Delete customer Anna Aho?")
	})

	t.Run("Should not call the backend when deletion is declined", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/customers/1/delete", url.Values{"confirm": {"no"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/customers?notice=cancelled", rec.Header().Get("Location"))
		assert.Equal(t, []string{"GET"}, h.customers.Calls())
	})

	t.Run("Should delete when confirmed", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/customers/1/delete", url.Values{"confirm": {"yes"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, []string{"GET", "DELETE http://backend/api/customers/1", "GET"}, h.customers.Calls())
	})

	t.Run("Should show the delete banner when the backend fails", func(t *testing.T) {
		h := newHarness(t, nil)
		h.customers.deleteErr = statusErr(http.StatusInternalServerError)
		rec := h.postForm("/customers/1/delete", url.Values{"confirm": {"yes"}})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Deleting the customer failed.")
	})

	t.Run("Should export the current projection as CSV", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers/export.csv?search=anna", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="customers_`)

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "firstname,lastname,email,streetaddress,postcode,city,phone", strings.TrimSpace(lines[0]))
		assert.True(t, strings.HasPrefix(lines[1], "Anna,Aho,"))
	})

	t.Run("Should show a notice after a redirect", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/customers?notice=customer-deleted", nil)
		assert.Contains(t, rec.Body.String(), "Customer deleted.")
	})
}

func TestTrainingPages(t *testing.T) {
	t.Run("Should list trainings with owner names", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/trainings?sort=date", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Anna Aho")
		assert.Contains(t, body, "02.03.2026 09:00")
		assert.Less(t, strings.Index(body, "Gym"), strings.Index(body, "Spinning"))
	})

	t.Run("Should offer customers in the new training form", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/trainings/new", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `<option value="1">Anna Aho</option>`)
	})

	t.Run("Should create a training owned by the chosen customer", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/trainings", url.Values{
			"date": {"2026-03-05T10:30"}, "duration": {"45"}, "activity": {"Boxing"}, "customer": {"2"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Len(t, h.trainings.created, 1)
		got := h.trainings.created[0]
		assert.Equal(t, "http://backend/api/customers/2", got.OwnerHref)
		assert.Equal(t, 45, got.Duration)
		assert.True(t, got.Date.Equal(time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC)))
	})

	t.Run("Should reject a training without a known customer", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/trainings", url.Values{
			"date": {"2026-03-05T10:30"}, "duration": {"45"}, "activity": {"Boxing"}, "customer": {"77"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "is required")
		assert.Empty(t, h.trainings.Calls())
	})

	t.Run("Should report the customer fetch failure on the form", func(t *testing.T) {
		h := newHarness(t, nil)
		h.customers.listErr = errors.New("dial tcp: connection refused")
		rec := h.postForm("/trainings", url.Values{
			"date": {"2026-03-05T10:30"}, "duration": {"45"}, "activity": {"Boxing"}, "customer": {"1"},
		})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Fetching customers failed.")
		assert.Empty(t, h.trainings.Calls())
	})

	t.Run("Should delete a confirmed training", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.postForm("/trainings/10/delete", url.Values{"confirm": {"yes"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, h.trainings.Calls(), "DELETE http://backend/api/trainings/10")
	})
}

func TestDerivedPages(t *testing.T) {
	t.Run("Should render the agenda grouped by day", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/calendar", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Sun 01.03.2026")
		assert.Contains(t, body, "09:00 - 10:00")
		assert.Contains(t, body, "Spinning (Anna Aho)")
		assert.Less(t, strings.Index(body, "Gym"), strings.Index(body, "Spinning"))
	})

	t.Run("Should render activity totals", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/stats", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "width:100%")
		assert.Contains(t, rec.Body.String(), "width:50%")
	})

	t.Run("Should list audit entries", func(t *testing.T) {
		h := newHarness(t, nil)
		h.postForm("/customers/1/delete", url.Values{"confirm": {"yes"}})
		rec := h.do(http.MethodGet, "/audit-log?action=delete", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Anna Aho")
		assert.Contains(t, rec.Body.String(), "high")
	})
}
