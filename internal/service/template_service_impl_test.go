package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"github.com/alexanderramin/cvorganizer/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateService(t *testing.T, settings Settings, observers ...UseCaseObserver) TemplateService {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewTemplateService(testutil.NewTestUoW(database), settings, observers...)
}

func TestTemplateService_CreateSeedsHiddenGroup(t *testing.T) {
	svc := newTemplateService(t, Settings{IndentWidth: 50, HiddenGroupName: "Unused sections"})
	ctx := context.Background()

	created, err := svc.Create(ctx, "  Annual Report ", "spring cycle")
	require.NoError(t, err)
	assert.Equal(t, "Annual Report", created.Name)
	assert.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, "annual report")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "spring cycle", got.Description)
	assert.Empty(t, got.Tree)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, domain.HiddenGroupID, got.Groups[0].ID)
	assert.Equal(t, "Unused sections", got.Groups[0].Name)
}

func TestTemplateService_CreateRejectsBadNames(t *testing.T) {
	svc := newTemplateService(t, DefaultSettings())
	ctx := context.Background()

	_, err := svc.Create(ctx, "   ", "")
	assert.Error(t, err)

	_, err = svc.Create(ctx, "Dossier", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "DOSSIER", "")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestTemplateService_GetLoadsLayout(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	sample := testutil.SampleCV("Sample CV")
	seedTemplate(t, uow, sample)
	svc := NewTemplateService(uow, DefaultSettings())

	got, err := svc.Get(context.Background(), sample.DisplayID())

	require.NoError(t, err)
	if diff := cmp.Diff(sample.Tree, got.Tree, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sample.Groups, got.Groups, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateService_ListAndDelete(t *testing.T) {
	rec := &recordingObserver{}
	svc := newTemplateService(t, DefaultSettings(), rec)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Beta", "")
	require.NoError(t, err)
	alpha, err := svc.Create(ctx, "alpha", "")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "Beta", list[1].Name)
	assert.Equal(t, 2, rec.last(t).Fields["count"])

	require.NoError(t, svc.Delete(ctx, alpha.ID))
	_, err = svc.Get(ctx, alpha.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ev := rec.last(t)
	assert.Equal(t, "template.get", ev.Name)
	assert.False(t, ev.Success)

	err = svc.Delete(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTemplateService_ExportImportRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	sample := testutil.SampleCV("Sample CV")
	seedTemplate(t, uow, sample)

	templates := NewTemplateService(uow, DefaultSettings())
	imports := NewImportService(uow, DefaultSettings(), nil)
	ctx := context.Background()

	schema, err := templates.Export(ctx, "Sample CV")
	require.NoError(t, err)
	assert.Equal(t, "Sample CV", schema.Template.Name)
	assert.Equal(t, "Annual faculty report", schema.Template.Description)

	schema.Template.Name = "Sample CV (copy)"
	res, err := imports.ImportSchema(ctx, schema)
	require.NoError(t, err)
	assert.NotEqual(t, sample.ID, res.Template.ID)

	copied, err := templates.Get(ctx, res.Template.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(sample.Tree, copied.Tree, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sample.Groups, copied.Groups, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}
