package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/cvorganizer/internal/cli/formatter"
	"github.com/alexanderramin/cvorganizer/internal/importer"
	"github.com/spf13/cobra"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage report templates",
	}

	cmd.AddCommand(
		newTemplateCreateCmd(app),
		newTemplateListCmd(app),
		newTemplateShowCmd(app),
		newTemplateExportCmd(app),
		newTemplateImportCmd(app),
		newTemplateDeleteCmd(app),
	)

	return cmd
}

func newTemplateCreateCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Create(context.Background(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %s [%s]\n", t.Name, t.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Template description")
	return cmd
}

func newTemplateListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Templates.List(context.Background())
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateList(templates))
			return nil
		},
	}
}

func newTemplateShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show TEMPLATE",
		Short: "Show a template's tree and groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateShow(t))
			return nil
		},
	}
}

func newTemplateExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export TEMPLATE",
		Short: "Export a template as YAML or JSON",
		Long: `Export writes the template in the import format. Importing the
output creates a copy with a new ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := app.Templates.Export(context.Background(), args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = importer.FormatYAML
				if out != "" {
					format = importer.FormatForPath(out)
				}
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := importer.Encode(w, schema, format); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", schema.Template.Name, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: yaml or json (default from --out extension, else yaml)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newTemplateImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a template from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportFile(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported template %s [%s]: %s, %s, %s\n",
				result.Template.Name,
				result.Template.DisplayID(),
				formatter.Plural(result.ItemCount, "item"),
				formatter.Plural(result.GroupCount, "group"),
				formatter.Plural(result.SectionCount, "section"),
			)
			return nil
		},
	}
}

func newTemplateDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete TEMPLATE",
		Short: "Delete a template with its tree and groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDestructive(app, yes,
				fmt.Sprintf("Delete template %q?", t.Name),
				"Its tree, groups and section placements are removed.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err := app.Templates.Delete(context.Background(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", t.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
