package core

import (
	"errors"
	"strconv"
	"time"
)

// DateLayout is the display format for session dates.
const DateLayout = "02.01.2006 15:04"

// DayLayout is the display format for calendar days.
const DayLayout = "02.01.2006"

// Field describes one column of an entity kind.
type Field[T any] struct {
	Key      string // Sort key and query parameter value
	Label    string // Column header and CSV header
	Sortable bool

	// Value yields the sort value: string, int, int64, float64 or time.Time.
	Value func(T) any

	// Text yields the display and search text. Defaults to the
	// stringified Value.
	Text func(T) string
}

// TextOf returns the field's display text for rec.
func (f Field[T]) TextOf(rec T) string {
	if f.Text != nil {
		return f.Text(rec)
	}
	return stringify(f.Value(rec))
}

// Messages are the banner texts shown when an operation fails.
type Messages struct {
	FetchFailed  string
	SaveFailed   string
	DeleteFailed string
}

// Kind describes an entity type the generic list screen can manage.
type Kind[T any] struct {
	Key      string // "customers", "trainings"
	Label    string // "Customers"
	Singular string // "customer"
	Fields   []Field[T]

	ID      func(T) int64
	Locator func(T) string

	// Describe returns a short human description used in confirmations
	// and audit entries.
	Describe func(T) string

	// Validate checks dialog values before they are submitted.
	Validate func(T) error

	Messages Messages
}

// Field returns the field with the given key.
func (k *Kind[T]) Field(key string) (Field[T], bool) {
	for _, f := range k.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

// CustomerKind is the field table for customers.
// All fields are sortable and exported to CSV.
var CustomerKind = &Kind[Customer]{
	Key:      "customers",
	Label:    "Customers",
	Singular: "customer",
	Fields: []Field[Customer]{
		{Key: "firstname", Label: "First name", Sortable: true, Value: func(c Customer) any { return c.Firstname }},
		{Key: "lastname", Label: "Last name", Sortable: true, Value: func(c Customer) any { return c.Lastname }},
		{Key: "email", Label: "Email", Sortable: true, Value: func(c Customer) any { return c.Email }},
		{Key: "streetaddress", Label: "Address", Sortable: true, Value: func(c Customer) any { return c.Streetaddress }},
		{Key: "postcode", Label: "Postcode", Sortable: true, Value: func(c Customer) any { return c.Postcode }},
		{Key: "city", Label: "City", Sortable: true, Value: func(c Customer) any { return c.City }},
		{Key: "phone", Label: "Phone", Sortable: true, Value: func(c Customer) any { return c.Phone }},
	},
	ID:       func(c Customer) int64 { return c.ID },
	Locator:  Customer.Locator,
	Describe: Customer.FullName,
	Validate: func(c Customer) error { return ValidateRecord(c) },
	Messages: Messages{
		FetchFailed:  "Fetching customers failed.",
		SaveFailed:   "Saving the customer failed.",
		DeleteFailed: "Deleting the customer failed.",
	},
}

// TrainingKind is the field table for training sessions.
var TrainingKind = &Kind[Training]{
	Key:      "trainings",
	Label:    "Trainings",
	Singular: "training",
	Fields: []Field[Training]{
		{Key: "activity", Label: "Activity", Sortable: true, Value: func(t Training) any { return t.Activity }},
		{Key: "duration", Label: "Duration (min)", Sortable: true, Value: func(t Training) any { return t.Duration }},
		{
			Key: "date", Label: "Date", Sortable: true,
			Value: func(t Training) any { return t.Date },
			Text:  func(t Training) string { return formatDate(t.Date, DateLayout) },
		},
		{Key: "customer", Label: "Customer", Sortable: true, Value: func(t Training) any { return t.CustomerName() }},
	},
	ID:      func(t Training) int64 { return t.ID },
	Locator: Training.Locator,
	Describe: func(t Training) string {
		return t.Activity + " (" + formatDate(t.Date, DayLayout) + ")"
	},
	Validate: validateTraining,
	Messages: Messages{
		FetchFailed:  "Fetching trainings failed.",
		SaveFailed:   "Saving the training failed.",
		DeleteFailed: "Deleting the training failed.",
	},
}

// validateTraining adds the owner requirement, which has no JSON
// property of its own, to the tag rules.
func validateTraining(t Training) error {
	var errs ValidationErrors
	if err := ValidateRecord(t); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}
	if t.OwnerHref == "" && t.Customer == nil {
		errs = append(errs, ValidationError{Field: "customer", Message: "is required"})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// displayLocation is the zone dates are rendered in. Set once at startup.
var displayLocation = time.Local

// SetDisplayLocation sets the zone used when formatting dates.
func SetDisplayLocation(loc *time.Location) {
	if loc != nil {
		displayLocation = loc
	}
}

// DisplayLocation returns the zone used when formatting dates.
func DisplayLocation() *time.Location {
	return displayLocation
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.In(displayLocation).Format(layout)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
