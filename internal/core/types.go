// Package core provides the business logic for the personal trainer dashboard.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Link is a single hypermedia link.
type Link struct {
	Href string `json:"href"`
}

// Links is the "_links" object attached to every backend resource.
type Links map[string]Link

// Self returns the resource's own locator, or "" when the backend sent none.
func (l Links) Self() string {
	return l.Href("self")
}

// Href returns the href stored under rel, or "".
func (l Links) Href(rel string) string {
	if l == nil {
		return ""
	}
	return l[rel].Href
}

// IDFromHref derives a numeric id from the last path segment of a locator.
// Returns 0 when the locator is empty or does not end in a number.
func IDFromHref(href string) int64 {
	href = strings.TrimRight(href, "/")
	if href == "" {
		return 0
	}
	id, err := strconv.ParseInt(path.Base(href), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// Customer is a client of the personal trainer.
type Customer struct {
	ID            int64  `json:"id,omitempty"`
	Firstname     string `json:"firstname" validate:"required,max=100"`
	Lastname      string `json:"lastname" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"omitempty,max=40"`
	Streetaddress string `json:"streetaddress" validate:"omitempty,max=200"`
	Postcode      string `json:"postcode" validate:"omitempty,max=20"`
	City          string `json:"city" validate:"omitempty,max=100"`
	Links         Links  `json:"_links,omitempty"`
}

// FullName is the display name used in lists, titles and confirmations.
func (c Customer) FullName() string {
	return joinName(c.Firstname, c.Lastname)
}

// Locator returns the customer's self href.
func (c Customer) Locator() string {
	return c.Links.Self()
}

// CustomerRef is the owner summary the backend embeds in a training.
type CustomerRef struct {
	ID            int64  `json:"id,omitempty"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Streetaddress string `json:"streetaddress,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	City          string `json:"city,omitempty"`
}

// Ref builds the embedded summary for a customer.
func (c Customer) Ref() *CustomerRef {
	return &CustomerRef{
		ID:            c.ID,
		Firstname:     c.Firstname,
		Lastname:      c.Lastname,
		Email:         c.Email,
		Phone:         c.Phone,
		Streetaddress: c.Streetaddress,
		Postcode:      c.Postcode,
		City:          c.City,
	}
}

// Training is a single scheduled session owned by exactly one customer.
type Training struct {
	ID       int64        `json:"id,omitempty"`
	Date     time.Time    `json:"date" validate:"required"`
	Duration int          `json:"duration" validate:"required,gt=0,lte=1440"`
	Activity string       `json:"activity" validate:"required,max=100"`
	Customer *CustomerRef `json:"customer,omitempty"`
	Links    Links        `json:"_links,omitempty"`

	// OwnerHref is the owning customer's locator. The backend expects it as
	// the "customer" property when creating or updating a training.
	OwnerHref string `json:"-"`
}

// CustomerName returns the owner's display name, or "" when unknown.
func (t Training) CustomerName() string {
	if t.Customer == nil {
		return ""
	}
	return joinName(t.Customer.Firstname, t.Customer.Lastname)
}

// CustomerID returns the owner's id, or 0 when unknown.
func (t Training) CustomerID() int64 {
	if t.Customer != nil && t.Customer.ID > 0 {
		return t.Customer.ID
	}
	return IDFromHref(t.Links.Href("customer"))
}

// End returns the session end time (start + duration minutes).
func (t Training) End() time.Time {
	return t.Date.Add(time.Duration(t.Duration) * time.Minute)
}

// Locator returns the training's self href.
func (t Training) Locator() string {
	return t.Links.Self()
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
