// Package cli implements trainerctl, the command-line client for the
// personal-trainer backend.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/trainer/internal/core"
)

// App holds what the commands operate on.
type App struct {
	Customers core.Resource[core.Customer]
	Trainings core.Resource[core.Training]
	Resetter  interface{ Reset(ctx context.Context) error }
	Audit     core.AuditStore
	Logger    *slog.Logger

	// Now is the clock used for export filenames.
	Now func() time.Time
}

// Options are the global flags passed to the factory.
type Options struct {
	BackendURL string
	Timeout    time.Duration
	Verbose    bool
}

// Factory builds the App once flags are parsed.
type Factory func(opts Options) (*App, error)

var errNotFound = errors.New("not found")

// NewRootCmd assembles the command tree. The factory runs before any
// subcommand so --help works without a reachable backend.
func NewRootCmd(factory Factory) *cobra.Command {
	var (
		opts Options
		app  App
	)

	root := &cobra.Command{
		Use:   "trainerctl",
		Short: "Manage personal-trainer customers and trainings",
		Long: `trainerctl talks to the personal-trainer REST backend.

Examples:
  trainerctl customers list --search an --sort lastname
  trainerctl trainings list --sort date --desc
  trainerctl customers export -o customers.csv
  trainerctl calendar
  trainerctl reset --yes`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := factory(opts)
			if err != nil {
				return err
			}
			app = *built
			if app.Now == nil {
				app.Now = time.Now
			}
			if app.Logger == nil {
				app.Logger = slog.Default()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.BackendURL, "backend", "", "Backend API root (overrides BACKEND_BASE_URL)")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "Per-request timeout (overrides BACKEND_TIMEOUT)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		customersCmd(&app),
		trainingsCmd(&app),
		calendarCmd(&app),
		statsCmd(&app),
		auditCmd(&app),
		resetCmd(&app),
	)
	return root
}

// listFlags are shared by the list commands.
type listFlags struct {
	search string
	sort   string
	desc   bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive filter across all columns")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Column key to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
}

func (f *listFlags) apply(state interface {
	SetSearch(string)
	SetSort(core.SortSpec)
}) {
	state.SetSearch(f.search)
	if f.sort != "" {
		dir := core.Ascending
		if f.desc {
			dir = core.Descending
		}
		state.SetSort(core.SortSpec{Key: f.sort, Dir: dir})
	}
}

// refresh loads the screen or returns its banner as the command error.
func refresh[T any](ctx context.Context, sc *core.Screen[T]) error {
	if !sc.Refresh(ctx) {
		return errors.New(sc.State().Error())
	}
	return nil
}

func screen[T any](app *App, kind *core.Kind[T], res core.Resource[T]) *core.Screen[T] {
	return core.NewScreen(kind, res,
		core.WithAudit[T](app.Audit),
		core.WithLogger[T](app.Logger),
	)
}

func sortKeys[T any](kind *core.Kind[T]) string {
	keys := make([]string, len(kind.Fields))
	for i, f := range kind.Fields {
		keys[i] = f.Key
	}
	return "Sort keys: " + strings.Join(keys, ", ")
}
