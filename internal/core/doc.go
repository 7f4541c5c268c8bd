// Package core provides the business logic of the trainer dashboard.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server and the trainerctl CLI both drive it through the
// same types, so behaviour is identical on every surface.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Kinds: a [Kind] describes one record type (customers, trainings) with
//     its displayed fields, identity, validation and banner messages.
//   - List state: [ListState] holds the last fetched collection plus the
//     search text and sort spec, and derives the visible projection.
//   - Screens: a [Screen] orchestrates fetch, create, update and delete
//     against a [Resource], always re-fetching after a mutation.
//   - Audit: every successful mutation is recorded in an [AuditStore].
//
// # Sorting
//
// Selecting the current sort column flips the direction; selecting any
// other column sorts it ascending:
//
//	state.RequestSort("lastname") // lastname asc
//	state.RequestSort("lastname") // lastname desc
//	state.RequestSort("city")     // city asc
//
// # Mutations
//
// A save or delete goes through a [Dialog] and reports a [Phase]. Failures
// never change the held collection; they set the kind's banner message
// and leave the dialog open:
//
//	d := core.NewDialog(0, customer)
//	switch screen.Save(ctx, d) {
//	case core.PhaseDone:
//	    // list re-fetched, dialog closed
//	case core.PhaseFailed:
//	    // d.Errors has field errors, or screen.State().Error() a banner
//	}
//
// # Error Handling
//
// Backend failures are mapped to user-facing messages with stable codes
// by [MapError]. See error_messages.go for the code table.
//
// # Derived Views
//
// [CalendarEvents] and [GroupByDay] build the agenda, [ActivityTotals] and
// [BarWidths] the statistics chart, and [WriteCSV] the export of the
// current projection.
package core
