package repos

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

func TestModelRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepo(logger.NewNop())

	a := repo.Create(ctx, "a")
	b := repo.Create(ctx, "b")
	require.EqualValues(t, 1, a.ID)
	require.EqualValues(t, 2, b.ID)

	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "b", got.Name)

	_, err = repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, ErrModelNotFound)

	upd, err := repo.Update(ctx, 1, "a2")
	require.NoError(t, err)
	require.Equal(t, "a2", upd.Name)

	_, err = repo.Update(ctx, 42, "x")
	require.ErrorIs(t, err, ErrModelNotFound)

	require.NoError(t, repo.Delete(ctx, 1))
	require.ErrorIs(t, repo.Delete(ctx, 1), ErrModelNotFound)

	c := repo.Create(ctx, "c")
	require.EqualValues(t, 3, c.ID, "ids are not reused")

	all := repo.GetAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].Name)
	require.Equal(t, "c", all[1].Name)
}

func TestModelRepo_SnapshotsDoNotAlias(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepo(logger.NewNop())
	m := repo.Create(ctx, "orig")
	m.Name = "mutated"

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "orig", got.Name)
}

func TestOrganizationRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewOrganizationRepo(logger.NewNop())

	o1 := repo.Create(ctx, "one")
	o2 := repo.Create(ctx, "two")
	require.Equal(t, "1", o1.ID)
	require.Equal(t, "2", o2.ID)
	require.NotNil(t, o1.Models)
	require.Empty(t, o1.Models)

	_, err := repo.GetByID(ctx, "9")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	upd, err := repo.Update(ctx, "2", "deux")
	require.NoError(t, err)
	require.Equal(t, "deux", upd.Name)

	require.NoError(t, repo.Delete(ctx, "1"))
	require.ErrorIs(t, repo.Delete(ctx, "1"), ErrOrganizationNotFound)

	all := repo.GetAll(ctx)
	require.Len(t, all, 1)
	require.Equal(t, "deux", all[0].Name)
}

func TestOrganizationRepo_AddModelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewOrganizationRepo(logger.NewNop())
	org := repo.Create(ctx, "org")
	m := domain.Model{ID: 7, Name: "bert"}

	require.NoError(t, repo.AddModelToOrganization(ctx, org.ID, m))
	require.NoError(t, repo.AddModelToOrganization(ctx, org.ID, m))

	got, err := repo.GetByID(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.Model{m}, got.Models)

	err = repo.AddModelToOrganization(ctx, "missing", m)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestOrganizationRepo_RemoveModel(t *testing.T) {
	ctx := context.Background()
	repo := NewOrganizationRepo(logger.NewNop())
	org := repo.Create(ctx, "org")
	require.NoError(t, repo.AddModelToOrganization(ctx, org.ID, domain.Model{ID: 1, Name: "a"}))
	require.NoError(t, repo.AddModelToOrganization(ctx, org.ID, domain.Model{ID: 2, Name: "b"}))

	removed, err := repo.RemoveModelFromOrganization(ctx, org.ID, 1)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.RemoveModelFromOrganization(ctx, org.ID, 1)
	require.NoError(t, err)
	require.False(t, removed)

	_, err = repo.RemoveModelFromOrganization(ctx, "missing", 2)
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	got, err := repo.GetByID(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.Model{{ID: 2, Name: "b"}}, got.Models)
}

func TestSeedSampleData(t *testing.T) {
	ctx := context.Background()
	orgs := NewOrganizationRepo(logger.NewNop())
	models := NewModelRepo(logger.NewNop())

	require.NoError(t, SeedSampleData(ctx, orgs, models))

	all := orgs.GetAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, "Baseten", all[0].Name)
	require.Equal(t, []domain.Model{{ID: 1, Name: "GPT-3.5"}, {ID: 2, Name: "BERT"}}, all[0].Models)
	require.Equal(t, "Strawberry", all[1].Name)
	require.Equal(t, []domain.Model{{ID: 3, Name: "ResNet"}}, all[1].Models)
	require.Len(t, models.GetAll(ctx), 3)
}

func TestInvocationRepo_ConcurrentRecordsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewInvocationRepo(logger.NewNop())

	const workers, perWorker = 8, 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m", Success: true, LatencyMs: 1})
			}
		}()
	}
	wg.Wait()

	hist := repo.GetInvocationHistory(ctx, domain.HistoryQuery{})
	require.Len(t, hist, workers*perWorker)
	seen := make(map[int64]struct{}, len(hist))
	for _, rec := range hist {
		_, dup := seen[rec.ID]
		require.False(t, dup, "duplicate id %d", rec.ID)
		seen[rec.ID] = struct{}{}
	}
	require.EqualValues(t, workers*perWorker, repo.GetModelStats(ctx, nil)["m"].TotalInvocations)
}

func TestModelRepo_UpdateRefreshesOrganizationCopies(t *testing.T) {
	ctx := context.Background()
	orgs := NewOrganizationRepo(logger.NewNop())
	models := NewModelRepo(logger.NewNop(), RefreshOrganizations(orgs))

	m := models.Create(ctx, "gpt")
	withModel := orgs.Create(ctx, "acme")
	without := orgs.Create(ctx, "other")
	require.NoError(t, orgs.AddModelToOrganization(ctx, withModel.ID, *m))

	renamed, err := models.Update(ctx, m.ID, "gpt-2")
	require.NoError(t, err)

	got, err := orgs.GetByID(ctx, withModel.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.Model{{ID: m.ID, Name: "gpt-2"}}, got.Models)

	require.NoError(t, orgs.AddModelToOrganization(ctx, withModel.ID, *renamed))
	got, err = orgs.GetByID(ctx, withModel.ID)
	require.NoError(t, err)
	require.Len(t, got.Models, 1, "re-adding a renamed model must not duplicate it")

	other, err := orgs.GetByID(ctx, without.ID)
	require.NoError(t, err)
	require.Empty(t, other.Models)

	_, err = models.Update(ctx, 99, "x")
	require.ErrorIs(t, err, ErrModelNotFound)
}
