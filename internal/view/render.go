package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/bookcafe-client/internal/application"
)

var actionLabels = map[application.Action]string{
	application.ActionEdit:       "edit",
	application.ActionConfirm:    "confirm",
	application.ActionCancel:     "cancel",
	application.ActionChangeRole: "role",
	application.ActionDelete:     "delete",
}

// Render writes panel as an aligned table. Offered actions are listed in a
// trailing column.
func Render(w io.Writer, panel Panel) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", panel.Heading); err != nil {
		return err
	}
	if len(panel.Rows) == 0 {
		if panel.Hint == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, panel.Hint)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range panel.Rows {
		cells := row.Cells
		if len(row.Actions) > 0 {
			cells = append(append([]string(nil), cells...), actionList(row.Actions))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderDashboard writes the dashboard header followed by panels.
func RenderDashboard(w io.Writer, d Dashboard, panels ...Panel) error {
	if d.Title == "" {
		_, err := fmt.Fprintln(w, "Not logged in.")
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", d.Title, d.Subtitle); err != nil {
		return err
	}
	for _, p := range panels {
		if !d.Has(p.ID) {
			continue
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := Render(w, p); err != nil {
			return err
		}
	}
	return nil
}

func actionList(actions application.Actions) string {
	labels := make([]string, 0, len(actions))
	for _, a := range actions {
		label, ok := actionLabels[a]
		if !ok {
			label = string(a)
		}
		labels = append(labels, "["+label+"]")
	}
	return strings.Join(labels, " ")
}
