package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/cvorganizer/internal/cli/formatter"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/service"
	"github.com/spf13/cobra"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage the section groups of a template",
	}

	cmd.AddCommand(
		newGroupListCmd(app),
		newGroupCreateCmd(app),
		newGroupRenameCmd(app),
		newGroupDeleteCmd(app),
	)

	return cmd
}

func newGroupListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list TEMPLATE",
		Short: "List groups and their sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Organizer.Snapshot(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGroups(snap.Groups))
			return nil
		},
	}
}

func newGroupCreateCmd(app *App) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "create TEMPLATE NAME",
		Short: "Add an empty group before the hidden group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Organizer.CreateGroup(context.Background(), args[0], id, args[1])
			if err != nil {
				return err
			}
			created := res.Template.Groups[len(res.Template.Groups)-2]
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %s [%s]\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Group ID (generated when empty)")
	return cmd
}

func newGroupRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename TEMPLATE GROUP NAME",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Organizer.RenameGroup(context.Background(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			reportChange(cmd, res, fmt.Sprintf("Renamed group %s to %q", args[1], args[2]))
			return nil
		},
	}
}

func newGroupDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete TEMPLATE GROUP",
		Short: "Delete a group, moving its sections to the hidden group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[1] == domain.HiddenGroupID {
				return fmt.Errorf("the hidden group cannot be deleted")
			}
			ok, err := confirmDestructive(app, yes,
				fmt.Sprintf("Delete group %q?", args[1]),
				"Its sections move to the hidden group.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			res, err := app.Organizer.DeleteGroup(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s; moved %s to hidden\n",
				args[1], formatter.Plural(payloadInt(res, "relocated"), "section"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

// reportChange prints msg, or a no-change notice when the operation was a no-op.
func reportChange(cmd *cobra.Command, res *service.MutationResult, msg string) {
	if !res.Changed {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Nothing changed."))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render(msg))
}

func payloadInt(res *service.MutationResult, key string) int {
	if res == nil || res.Payload == nil {
		return 0
	}
	n, _ := res.Payload[key].(int)
	return n
}
