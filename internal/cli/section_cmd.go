package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/spf13/cobra"
)

func newSectionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Place prepared sections in groups",
	}

	cmd.AddCommand(
		newSectionAddCmd(app),
		newSectionMoveCmd(app),
		newSectionReorderCmd(app),
		newSectionRemoveCmd(app),
		newSectionRowCountCmd(app),
		newSectionWhereCmd(app),
	)

	return cmd
}

func newSectionAddCmd(app *App) *cobra.Command {
	var (
		title    string
		rowCount bool
	)

	cmd := &cobra.Command{
		Use:   "add TEMPLATE GROUP SECTION",
		Short: "Append a new prepared section to a group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec := domain.PreparedSection{DataSectionID: args[2], Title: title, ShowRowCount: rowCount}
			res, err := app.Organizer.AddSection(context.Background(), args[0], args[1], sec)
			if err != nil {
				return err
			}
			reportChange(cmd, res, fmt.Sprintf("Added section %s to %s", args[2], args[1]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Section title (defaults to the section ID)")
	cmd.Flags().BoolVar(&rowCount, "row-count", false, "Show the row count")

	return cmd
}

func newSectionReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder TEMPLATE SECTION INDEX",
		Short: "Move a section to a position within its group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[2], err)
			}
			res, err := app.Organizer.ReorderSection(context.Background(), args[0], args[1], index)
			if err != nil {
				return err
			}
			reportChange(cmd, res, fmt.Sprintf("Moved section %s to position %d", args[1], index))
			return nil
		},
	}
}

func newSectionMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move TEMPLATE SECTION GROUP",
		Short: "Move a section to the front of another group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Organizer.MoveSection(context.Background(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			reportChange(cmd, res, fmt.Sprintf("Moved section %s to %s", args[1], args[2]))
			return nil
		},
	}
}

func newSectionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TEMPLATE SECTION",
		Short: "Move a section to the hidden group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Organizer.RemoveSection(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			reportChange(cmd, res, fmt.Sprintf("Hid section %s", args[1]))
			return nil
		},
	}
}

func newSectionRowCountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "row-count TEMPLATE SECTION on|off",
		Short:     "Show or hide the row count of a section",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseOnOff(args[2])
			if err != nil {
				return err
			}
			res, err := app.Organizer.ToggleRowCount(context.Background(), args[0], args[1], value)
			if err != nil {
				return err
			}
			reportChange(cmd, res, fmt.Sprintf("Row count for %s is %s", args[1], strings.ToLower(args[2])))
			return nil
		},
	}
}

func newSectionWhereCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "where TEMPLATE SECTION",
		Short: "Print the group holding a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Organizer.Snapshot(context.Background(), args[0])
			if err != nil {
				return err
			}
			g, ok := groupHolding(snap.Groups, args[1])
			if !ok {
				return fmt.Errorf("section %q is not placed in any group", args[1])
			}
			removable := "yes"
			if g.IsHidden() {
				removable = "no"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tremovable: %s\n", g.ID, g.Name, removable)
			return nil
		},
	}
}

func groupHolding(groups []domain.Group, sectionID string) (domain.Group, bool) {
	for _, g := range groups {
		for _, s := range g.Sections {
			if s.DataSectionID == sectionID {
				return g, true
			}
		}
	}
	return domain.Group{}, false
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q: use on or off", s)
	}
}
