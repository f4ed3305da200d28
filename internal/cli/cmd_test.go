package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"github.com/alexanderramin/cvorganizer/internal/service"
	"github.com/alexanderramin/cvorganizer/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// testApp wires a full App backed by an in-memory DB and seeds the sample CV.
func testApp(t *testing.T) (*App, *domain.Template) {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	sample := testutil.SampleCV("Sample CV")
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTemplateRepo(tx).Create(ctx, sample); err != nil {
			return err
		}
		layout := repository.NewSQLiteLayoutRepo(tx)
		if err := layout.SaveTree(ctx, sample.ID, sample.Tree); err != nil {
			return err
		}
		return layout.SaveGroups(ctx, sample.ID, sample.Groups)
	})
	require.NoError(t, err)

	settings := service.DefaultSettings()
	return &App{
		Templates:     service.NewTemplateService(uow, settings),
		Organizer:     service.NewOrganizerService(uow, settings, nil),
		Import:        service.NewImportService(uow, settings, nil),
		IndentWidth:   settings.IndentWidth,
		IsInteractive: func() bool { return false },
	}, sample
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

func TestRootCmd_NoArgsShowsHelp(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app)

	require.NoError(t, err)
	assert.Contains(t, out, "cvorg")
	assert.Contains(t, out, "organize")
}

func TestTemplateCmd_CreateListShow(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "template", "create", "Promotion Dossier", "-d", "tenure case")
	require.NoError(t, err)
	assert.Contains(t, out, "Created template Promotion Dossier")

	out, err = executeCmd(t, app, "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Promotion Dossier")
	assert.Contains(t, out, "Sample CV")

	out, err = executeCmd(t, app, "template", "show", "sample cv")
	require.NoError(t, err)
	assert.Contains(t, out, "Courses taught")
	assert.Contains(t, out, "├─ ▤ Courses")
}

func TestTemplateCmd_ExportImportRoundTrip(t *testing.T) {
	app, _ := testApp(t)
	path := filepath.Join(t.TempDir(), "sample.json")

	out, err := executeCmd(t, app, "template", "export", "Sample CV", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported Sample CV")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data_section_id": "s-courses"`)

	// Importing under the same name is refused.
	_, err = executeCmd(t, app, "template", "import", path)
	assert.ErrorIs(t, err, service.ErrNameTaken)

	yamlOut, err := executeCmd(t, app, "template", "export", "Sample CV")
	require.NoError(t, err)
	assert.Contains(t, yamlOut, "data_section_id: s-courses")
}

func TestTemplateCmd_ImportFile(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "template", "import", "../importer/testdata/annual.yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "Imported template Annual Faculty Report")
	assert.Contains(t, out, "4 items, 2 groups, 3 sections")
}

func TestTemplateCmd_DeleteNeedsConfirmation(t *testing.T) {
	app, sample := testApp(t)

	_, err := executeCmd(t, app, "template", "delete", sample.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	app.Confirm = func(string) (bool, error) { return false, nil }
	out, err := executeCmd(t, app, "template", "delete", sample.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = executeCmd(t, app, "template", "delete", sample.ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted template Sample CV")

	_, err = executeCmd(t, app, "template", "show", sample.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGroupCmd_Lifecycle(t *testing.T) {
	app, sample := testApp(t)

	out, err := executeCmd(t, app, "group", "create", sample.ID, "Service", "--id", "svc")
	require.NoError(t, err)
	assert.Contains(t, out, "Created group Service [svc]")

	out, err = executeCmd(t, app, "group", "rename", sample.ID, "svc", "Committees")
	require.NoError(t, err)
	assert.Contains(t, out, `Renamed group svc to "Committees"`)

	out, err = executeCmd(t, app, "group", "rename", sample.ID, "svc", "Committees")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing changed.")

	out, err = executeCmd(t, app, "group", "delete", sample.ID, "main", "-y")
	require.NoError(t, err)
	assert.Contains(t, out, "moved 2 sections to hidden")

	out, err = executeCmd(t, app, "group", "list", sample.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Committees (svc)")
	assert.NotContains(t, out, "Main (main)")

	_, err = executeCmd(t, app, "group", "delete", sample.ID, domain.HiddenGroupID, "-y")
	assert.Error(t, err)
}

func TestSectionCmd(t *testing.T) {
	app, sample := testApp(t)

	out, err := executeCmd(t, app, "section", "where", sample.ID, "s-grants")
	require.NoError(t, err)
	assert.Contains(t, out, "main\tMain\tremovable: yes")

	out, err = executeCmd(t, app, "section", "remove", sample.ID, "s-grants")
	require.NoError(t, err)
	assert.Contains(t, out, "Hid section s-grants")

	out, err = executeCmd(t, app, "section", "where", sample.ID, "s-grants")
	require.NoError(t, err)
	assert.Contains(t, out, "removable: no")

	out, err = executeCmd(t, app, "section", "move", sample.ID, "s-grants", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved section s-grants to main")

	out, err = executeCmd(t, app, "section", "row-count", sample.ID, "s-grants", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Row count for s-grants is on")

	_, err = executeCmd(t, app, "section", "row-count", sample.ID, "s-grants", "maybe")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "section", "move", sample.ID, "s-grants", "nowhere")
	assert.Error(t, err)
}

func TestSectionCmd_AddAndReorder(t *testing.T) {
	app, sample := testApp(t)

	out, err := executeCmd(t, app, "section", "add", sample.ID, "main", "s-service", "--title", "Service", "--row-count")
	require.NoError(t, err)
	assert.Contains(t, out, "Added section s-service to main")

	out, err = executeCmd(t, app, "section", "where", sample.ID, "s-service")
	require.NoError(t, err)
	assert.Contains(t, out, "main\tMain")

	out, err = executeCmd(t, app, "section", "reorder", sample.ID, "s-service", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved section s-service to position 0")

	out, err = executeCmd(t, app, "section", "reorder", sample.ID, "s-service", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing changed.")

	snap, err := app.Organizer.Snapshot(context.Background(), sample.ID)
	require.NoError(t, err)
	mg := snap.Groups[0]
	require.Equal(t, "main", mg.ID)
	require.Len(t, mg.Sections, 3)
	assert.Equal(t, "s-service", mg.Sections[0].DataSectionID)
	assert.Equal(t, "Service", mg.Sections[0].Title)
	assert.True(t, mg.Sections[0].ShowRowCount)

	_, err = executeCmd(t, app, "section", "reorder", sample.ID, "s-service", "first")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "section", "add", sample.ID, "nowhere", "s-extra")
	assert.Error(t, err)
}

func TestItemCmd_ListMoveCollapse(t *testing.T) {
	app, sample := testApp(t)

	out, err := executeCmd(t, app, "item", "list", sample.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "advising")

	// Drop "research" between "courses" and "advising", one indent in: it
	// must nest under "teaching".
	out, err = executeCmd(t, app, "item", "move", sample.ID, "research", "--over", "2", "--steps", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved research under teaching (depth 1)")

	got, err := app.Templates.Get(context.Background(), sample.ID)
	require.NoError(t, err)
	require.Len(t, got.Tree, 1)
	require.Len(t, got.Tree[0].Children, 3)
	assert.Equal(t, "research", got.Tree[0].Children[1].ID)
	assert.Equal(t, "grants", got.Tree[0].Children[1].Children[0].ID)

	out, err = executeCmd(t, app, "item", "collapse", sample.ID, "teaching")
	require.NoError(t, err)
	assert.Contains(t, out, "teaching is now collapsed")

	out, err = executeCmd(t, app, "item", "list", sample.ID, "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Teaching")
	assert.Contains(t, out, "[ +4 ]")
	assert.NotContains(t, out, "Grants")

	_, err = executeCmd(t, app, "item", "move", sample.ID, "research", "--over", "0", "--steps", "1", "--offset", "3")
	assert.Error(t, err)
}

func TestOrganizeCmd_RefusesWithoutTerminal(t *testing.T) {
	app, sample := testApp(t)

	_, err := executeCmd(t, app, "organize", sample.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestRootCmd_SetupRunsBeforeSubcommands(t *testing.T) {
	app, _ := testApp(t)
	templates := app.Templates
	app.Templates = nil
	app.Setup = func(cmd *cobra.Command) error {
		app.Templates = templates
		return nil
	}

	out, err := executeCmd(t, app, "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample CV")

	app.Setup = func(cmd *cobra.Command) error { return errors.New("config: broken") }
	_, err = executeCmd(t, app, "template", "list")
	assert.EqualError(t, err, "config: broken")
}
