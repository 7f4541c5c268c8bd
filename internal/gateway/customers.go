package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/trainer/internal/core"
)

const customersPath = "/customers"

// Customers is the customer resource. It satisfies core.Resource.
type Customers struct {
	c *Client
}

var _ core.Resource[core.Customer] = (*Customers)(nil)

// customerPayload is the body for POST and PUT; the backend assigns ids
// and links itself.
type customerPayload struct {
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Streetaddress string `json:"streetaddress"`
	Postcode      string `json:"postcode"`
	City          string `json:"city"`
}

func toCustomerPayload(c core.Customer) customerPayload {
	return customerPayload{
		Firstname:     c.Firstname,
		Lastname:      c.Lastname,
		Email:         c.Email,
		Phone:         c.Phone,
		Streetaddress: c.Streetaddress,
		Postcode:      c.Postcode,
		City:          c.City,
	}
}

// List fetches all customers in backend order.
func (r *Customers) List(ctx context.Context) ([]core.Customer, error) {
	body, err := r.c.do(ctx, "customers", http.MethodGet, customersPath, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeCollection[core.Customer](body, "customers")
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, URL: r.c.resolve(customersPath), Err: err}
	}
	for i := range items {
		r.normalize(&items[i])
	}
	return items, nil
}

// Get fetches one customer by locator.
func (r *Customers) Get(ctx context.Context, locator string) (core.Customer, error) {
	if locator == "" {
		return core.Customer{}, fmt.Errorf("get customer: %w", core.ErrMissingLocator)
	}
	var cust core.Customer
	if err := r.c.getJSON(ctx, "customers", locator, &cust); err != nil {
		return core.Customer{}, err
	}
	if cust.Links.Self() == "" {
		cust.Links = ensureLinks(cust.Links)
		cust.Links["self"] = core.Link{Href: locator}
	}
	r.normalize(&cust)
	return cust, nil
}

// Create posts a new customer.
func (r *Customers) Create(ctx context.Context, c core.Customer) error {
	_, err := r.c.do(ctx, "customers", http.MethodPost, customersPath, toCustomerPayload(c))
	return err
}

// Update replaces the customer at locator.
func (r *Customers) Update(ctx context.Context, locator string, c core.Customer) error {
	if locator == "" {
		return fmt.Errorf("update customer: %w", core.ErrMissingLocator)
	}
	_, err := r.c.do(ctx, "customers", http.MethodPut, locator, toCustomerPayload(c))
	return err
}

// Delete removes the customer at locator. The backend also removes the
// customer's trainings.
func (r *Customers) Delete(ctx context.Context, locator string) error {
	if locator == "" {
		return fmt.Errorf("delete customer: %w", core.ErrMissingLocator)
	}
	_, err := r.c.do(ctx, "customers", http.MethodDelete, locator, nil)
	return err
}

// normalize fills the id from the self link, or the self link from the id.
func (r *Customers) normalize(c *core.Customer) {
	self := c.Links.Self()
	if c.ID == 0 {
		c.ID = core.IDFromHref(self)
	}
	if self == "" {
		if loc := selfLocator(r.c.baseURL, "customers", "", c.ID); loc != "" {
			c.Links = ensureLinks(c.Links)
			c.Links["self"] = core.Link{Href: loc}
		}
	}
}

func ensureLinks(l core.Links) core.Links {
	if l == nil {
		return core.Links{}
	}
	return l
}
