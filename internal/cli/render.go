package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/trainer/internal/core"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	columnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	dayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("135"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))
)

// maxBar is the character width of a full statistics bar.
const maxBar = 30

// renderTable writes items as an aligned table with an id column.
func renderTable[T any](w io.Writer, kind *core.Kind[T], items []T) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, headerStyle.Render("No "+strings.ToLower(kind.Label)+" found"))
		return err
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d %s", len(items), strings.ToLower(kind.Label))))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := []string{columnStyle.Render("ID")}
	for _, f := range kind.Fields {
		cols = append(cols, columnStyle.Render(f.Label))
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	for _, rec := range items {
		cells := []string{idStyle.Render(strconv.FormatInt(kind.ID(rec), 10))}
		for _, f := range kind.Fields {
			text := f.TextOf(rec)
			if text == "" {
				text = "-"
			}
			cells = append(cells, text)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func bar(width int) string {
	n := width * maxBar / 100
	if n == 0 && width > 0 {
		n = 1
	}
	return barStyle.Render(strings.Repeat("#", n))
}
