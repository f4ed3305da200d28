package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newOrganizeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "organize TEMPLATE",
		Short: "Rearrange a template interactively",
		Long: `Organize opens a full-screen view of the template tree. Grab an item
with "m", move it with the arrow keys (left and right change the nesting
depth) and drop it with enter. Every change is saved immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("organize needs an interactive terminal; use the item and section commands instead")
			}
			// Resolve early so a bad reference fails before the screen opens.
			t, err := app.Templates.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newOrganizeModel(app, t.ID), tea.WithAltScreen()).Run()
			return err
		},
	}
}
