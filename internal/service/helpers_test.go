package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"github.com/alexanderramin/cvorganizer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedTemplate writes tmpl and its layout directly through the repositories.
func seedTemplate(t *testing.T, uow db.UnitOfWork, tmpl *domain.Template) {
	t.Helper()
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTemplateRepo(tx).Create(ctx, tmpl); err != nil {
			return err
		}
		return saveLayout(ctx, repository.NewSQLiteLayoutRepo(tx), tmpl)
	})
	require.NoError(t, err)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) last(t *testing.T) UseCaseEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

func TestResolveTemplate(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	a := testutil.NewTestTemplate("Annual Report")
	a.ID = "abcd1111-0000-0000-0000-000000000000"
	b := testutil.NewTestTemplate("Promotion Dossier")
	b.ID = "abcd2222-0000-0000-0000-000000000000"
	seedTemplate(t, uow, a)
	seedTemplate(t, uow, b)

	repo := repository.NewSQLiteTemplateRepo(database)

	got, err := resolveTemplate(ctx, repo, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = resolveTemplate(ctx, repo, "promotion dossier")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	got, err = resolveTemplate(ctx, repo, "abcd2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = resolveTemplate(ctx, repo, "abcd")
	assert.ErrorIs(t, err, ErrAmbiguousRef)

	_, err = resolveTemplate(ctx, repo, "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = resolveTemplate(ctx, repo, "  ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNewOrganizer_NamesSeededHiddenGroup(t *testing.T) {
	tmpl := testutil.NewTestTemplate("Bare", testutil.WithGroups(testutil.Group("main", "Main")))

	o, err := newOrganizer(tmpl, Settings{IndentWidth: 40, HiddenGroupName: "Unused sections"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Unused sections", o.Store().Hidden().Name)
	assert.Equal(t, float64(40), o.IndentWidth())

	// A stored hidden group keeps its own name.
	stored := testutil.SampleCV("Sample")
	o, err = newOrganizer(stored, Settings{IndentWidth: 50, HiddenGroupName: "Unused sections"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.HiddenGroupName, o.Store().Hidden().Name)
}

func TestFormatValidationErrors(t *testing.T) {
	err := formatValidationErrors([]error{assert.AnError, assert.AnError})
	assert.Contains(t, err.Error(), "import validation failed (2 errors):")
	assert.Contains(t, err.Error(), "\n  - "+assert.AnError.Error())
}
