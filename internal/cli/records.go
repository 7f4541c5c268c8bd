package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/trainer/internal/core"
)

func customersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "c"},
		Short:   "List, export and delete customers",
	}
	res := func() core.Resource[core.Customer] { return app.Customers }
	cmd.AddCommand(
		listCmd(app, core.CustomerKind, res),
		exportCmd(app, core.CustomerKind, res),
		deleteCmd(app, core.CustomerKind, res),
	)
	return cmd
}

func trainingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trainings",
		Aliases: []string{"training", "t"},
		Short:   "List, export and delete training sessions",
	}
	res := func() core.Resource[core.Training] { return app.Trainings }
	cmd.AddCommand(
		listCmd(app, core.TrainingKind, res),
		exportCmd(app, core.TrainingKind, res),
		deleteCmd(app, core.TrainingKind, res),
	)
	return cmd
}

// listCmd prints the filtered, sorted collection. res is resolved at run
// time because the App is only built once flags are parsed.
func listCmd[T any](app *App, kind *core.Kind[T], res func() core.Resource[T]) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(kind.Label),
		Long:  "List " + strings.ToLower(kind.Label) + ".\n\n" + sortKeys(kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := screen(app, kind, res())
			if err := refresh(cmd.Context(), sc); err != nil {
				return err
			}
			flags.apply(sc.State())
			return renderTable(cmd.OutOrStdout(), kind, sc.State().Projection())
		},
	}
	flags.register(cmd)
	return cmd
}

// exportCmd writes the projection as CSV. "-o -" writes to stdout.
func exportCmd[T any](app *App, kind *core.Kind[T], res func() core.Resource[T]) *cobra.Command {
	var (
		flags  listFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export " + strings.ToLower(kind.Label) + " as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := screen(app, kind, res())
			if err := refresh(cmd.Context(), sc); err != nil {
				return err
			}
			flags.apply(sc.State())
			rows := sc.State().Projection()

			if output == "-" {
				return core.WriteCSV(cmd.OutOrStdout(), kind, rows)
			}
			if output == "" {
				output = core.ExportFilename(kind, app.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := core.WriteCSV(f, kind, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Wrote %d %s to %s", len(rows), strings.ToLower(kind.Label), output)))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <kind>_<timestamp>.csv, - for stdout)")
	return cmd
}

// deleteCmd asks y/N on stdin unless --yes is given.
func deleteCmd[T any](app *App, kind *core.Kind[T], res func() core.Resource[T]) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + kind.Singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid %s id %q", kind.Singular, args[0])
			}
			sc := screen(app, kind, res())
			if err := refresh(cmd.Context(), sc); err != nil {
				return err
			}
			if _, ok := sc.State().Find(id); !ok {
				return fmt.Errorf("%s %d: %w", kind.Singular, id, errNotFound)
			}

			out := cmd.OutOrStdout()
			confirm := func(rec T) bool {
				if yes {
					return true
				}
				return ask(cmd.InOrStdin(), out, fmt.Sprintf("Delete %s %s? [y/N] ", kind.Singular, kind.Describe(rec)))
			}

			switch sc.Delete(cmd.Context(), id, confirm) {
			case core.PhaseDone:
				fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Deleted %s %d", kind.Singular, id)))
				return nil
			case core.PhaseCancelled:
				fmt.Fprintln(out, "Cancelled")
				return nil
			default:
				return errors.New(sc.State().Error())
			}
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// ask reads one line and accepts only y or yes.
func ask(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, warnStyle.Render(prompt))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
