package cli

import (
	"github.com/alexanderramin/cvorganizer/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and terminal hooks used by CLI commands.
type App struct {
	Templates service.TemplateService
	Organizer service.OrganizerService
	Import    service.ImportService

	// IndentWidth is the pixel width of one indent step. The organize view
	// and "item move --steps" turn key presses into pointer offsets with it.
	IndentWidth float64

	// IsInteractive reports whether stdin is a terminal. Destructive commands
	// refuse to run without --yes when it returns false.
	IsInteractive func() bool

	// Confirm asks a yes/no question. Nil means a huh confirmation form.
	Confirm func(title string) (bool, error)

	// Setup runs once flags are parsed and before any subcommand. The binary
	// uses it to load configuration and wire the services.
	Setup func(cmd *cobra.Command) error
}

// NewRootCmd creates the top-level "cvorg" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cvorg",
		Short:         "Organize faculty CV report templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Setup == nil {
				return nil
			}
			return app.Setup(cmd)
		},
	}

	root.AddCommand(
		newTemplateCmd(app),
		newGroupCmd(app),
		newSectionCmd(app),
		newItemCmd(app),
		newOrganizeCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) indentWidth() float64 {
	if a.IndentWidth > 0 {
		return a.IndentWidth
	}
	return service.DefaultSettings().IndentWidth
}
