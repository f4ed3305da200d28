package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/cvorganizer/internal/cli/formatter"
	"github.com/alexanderramin/cvorganizer/internal/organizer"
	"github.com/alexanderramin/cvorganizer/internal/service"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Rearrange the item tree of a template",
	}

	cmd.AddCommand(
		newItemListCmd(app),
		newItemMoveCmd(app),
		newItemCollapseCmd(app),
	)

	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "list TEMPLATE",
		Short: "Print the visible rows with their indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Organizer.Snapshot(context.Background(), args[0])
			if err != nil {
				return err
			}
			if tree {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatView(snap.View, func(id string) int {
					n, _ := organizer.ChildCount(snap.Template.Tree, id)
					return n
				}))
				return nil
			}
			rows := make([][]string, 0, len(snap.View))
			for i, f := range snap.View {
				parent := f.ParentOrEmpty()
				if parent == "" {
					parent = "-"
				}
				rows = append(rows, []string{
					fmt.Sprint(i),
					f.ID,
					fmt.Sprint(f.Depth),
					parent,
					f.Name,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"#", "ID", "DEPTH", "PARENT", "NAME"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Draw the visible rows as a tree")
	return cmd
}

func newItemMoveCmd(app *App) *cobra.Command {
	var over, steps int
	var offset float64

	cmd := &cobra.Command{
		Use:   "move TEMPLATE ITEM",
		Short: "Move an item with its subtree, as a drag and drop would",
		Long: `Move drops ITEM at row --over of the visible list with ITEM removed
(see "item list"). --steps shifts the drop right (positive) or left
(negative) by whole indents; --offset gives the shift in pixels instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("steps") {
				if cmd.Flags().Changed("offset") {
					return fmt.Errorf("--steps and --offset are mutually exclusive")
				}
				offset = float64(steps) * app.indentWidth()
			}
			res, err := app.Organizer.MoveItem(context.Background(), args[0], service.MoveItemRequest{
				ActiveID:  args[1],
				OverIndex: over,
				Offset:    offset,
			})
			if err != nil {
				return err
			}
			parent, _ := res.Payload["parent_id"].(string)
			if parent == "" {
				parent = "top level"
			}
			reportChange(cmd, res, fmt.Sprintf("Moved %s under %s (depth %d)", args[1], parent, payloadInt(res, "depth")))
			return nil
		},
	}

	cmd.Flags().IntVar(&over, "over", 0, "Target row index in the list without the moved item")
	cmd.Flags().IntVar(&steps, "steps", 0, "Horizontal shift in indent steps")
	cmd.Flags().Float64Var(&offset, "offset", 0, "Horizontal shift in pixels")
	_ = cmd.MarkFlagRequired("over")
	return cmd
}

func newItemCollapseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "collapse TEMPLATE ITEM",
		Short: "Toggle whether an item's children are shown",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Organizer.ToggleCollapsed(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			state := "expanded"
			if collapsed, _ := res.Payload["collapsed"].(bool); collapsed {
				state = "collapsed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[1], state)
			return nil
		},
	}
}
