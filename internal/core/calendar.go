package core

import (
	"slices"
	"time"
)

// CalendarEvent is one training placed on the calendar.
type CalendarEvent struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	CustomerID int64     `json:"customerId,omitempty"`
}

// Duration returns the event length.
func (e CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// EventTitle is "activity (First Last)", or just the activity when the
// owner is unknown.
func EventTitle(t Training) string {
	if name := t.CustomerName(); name != "" {
		return t.Activity + " (" + name + ")"
	}
	return t.Activity
}

// CalendarEvents maps each training to an event expressed in loc.
// A nil loc uses the display location.
func CalendarEvents(trainings []Training, loc *time.Location) []CalendarEvent {
	if loc == nil {
		loc = DisplayLocation()
	}
	events := make([]CalendarEvent, 0, len(trainings))
	for _, t := range trainings {
		events = append(events, CalendarEvent{
			ID:         t.ID,
			Title:      EventTitle(t),
			Start:      t.Date.In(loc),
			End:        t.End().In(loc),
			CustomerID: t.CustomerID(),
		})
	}
	return events
}

// CalendarDay is the agenda for one local date.
type CalendarDay struct {
	Date   time.Time // Midnight in the event location
	Events []CalendarEvent
}

// Label renders the day as dd.mm.yyyy with the weekday.
func (d CalendarDay) Label() string {
	return d.Date.Format("Mon " + DayLayout)
}

// GroupByDay buckets events by their local start date. Days and the events
// within each day are in chronological order.
func GroupByDay(events []CalendarEvent) []CalendarDay {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})

	var days []CalendarDay
	for _, e := range sorted {
		y, m, d := e.Start.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, e.Start.Location())
		if n := len(days); n > 0 && days[n-1].Date.Equal(day) {
			days[n-1].Events = append(days[n-1].Events, e)
			continue
		}
		days = append(days, CalendarDay{Date: day, Events: []CalendarEvent{e}})
	}
	return days
}
