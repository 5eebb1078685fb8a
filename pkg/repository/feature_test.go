package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

func runFeatureRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("Create defaults status change time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Feature().Create(ctx, &model.Feature{
			Code:        uniqueCode("F"),
			Title:       "Search",
			Status:      types.FeatureStatusNew,
			ProductCode: uniqueCode("PRD"),
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created.StatusChangedAt.IsZero()).False()

		got, err := repo.Feature().Get(ctx, created.Code)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Search")
		gt.Value(t, got.ReleaseCode).Equal("")
	})

	t.Run("Update persists planning fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Feature().Create(ctx, &model.Feature{
			Code:        uniqueCode("F"),
			Title:       "Export",
			Status:      types.FeatureStatusInProgress,
			ProductCode: uniqueCode("PRD"),
		})
		gt.NoError(t, err).Required()

		due := isolatedTime()
		created.PlanningStatus = types.PlanningStatusBlocked
		created.BlockageReason = "waiting on API"
		created.FeatureOwner = "bob@example.com"
		created.PlannedCompletionDate = &due

		_, err = repo.Feature().Update(ctx, created)
		gt.NoError(t, err).Required()

		got, err := repo.Feature().Get(ctx, created.Code)
		gt.NoError(t, err).Required()
		gt.Value(t, got.PlanningStatus).Equal(types.PlanningStatusBlocked)
		gt.Value(t, got.BlockageReason).Equal("waiting on API")
		gt.Value(t, got.Owner()).Equal("bob@example.com")
		gt.Value(t, got.PlannedCompletionDate).NotNil()
		gt.Bool(t, got.PlannedCompletionDate.Equal(due)).True()
	})

	t.Run("Update and Delete of missing feature return ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Feature().Update(ctx, &model.Feature{Code: uniqueCode("NOPE"), Status: types.FeatureStatusNew})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
		gt.Error(t, repo.Feature().Delete(ctx, uniqueCode("NOPE"))).Is(interfaces.ErrNotFound)
	})

	t.Run("List filters by product and release", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		product := uniqueCode("PRD")
		release := uniqueCode("REL")

		for _, rel := range []string{release, release, ""} {
			_, err := repo.Feature().Create(ctx, &model.Feature{
				Code:        uniqueCode("F"),
				Title:       "f",
				Status:      types.FeatureStatusNew,
				ProductCode: product,
				ReleaseCode: rel,
				CreatedBy:   "user",
			})
			gt.NoError(t, err).Required()
		}

		byProduct, err := repo.Feature().List(ctx, interfaces.FeatureFilter{ProductCode: product})
		gt.NoError(t, err).Required()
		gt.Array(t, byProduct).Length(3)

		byRelease, err := repo.Feature().List(ctx, interfaces.FeatureFilter{ReleaseCode: release})
		gt.NoError(t, err).Required()
		gt.Array(t, byRelease).Length(2)
	})
}

func runDependencyRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("Create, update and delete a dependency", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		a, b := uniqueCode("A"), uniqueCode("B")
		notes := "needs schema"

		_, err := repo.Dependency().Create(ctx, &model.FeatureDependency{
			FeatureCode:   a,
			DependsOnCode: b,
			Type:          types.DependencyTypeHard,
			Notes:         &notes,
		})
		gt.NoError(t, err).Required()

		_, err = repo.Dependency().Create(ctx, &model.FeatureDependency{
			FeatureCode:   a,
			DependsOnCode: b,
			Type:          types.DependencyTypeSoft,
		})
		gt.Error(t, err).Is(interfaces.ErrAlreadyExists)

		got, err := repo.Dependency().Get(ctx, a, b)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Notes).NotNil()
		gt.Value(t, *got.Notes).Equal("needs schema")

		got.Type = types.DependencyTypeOptional
		got.Notes = nil
		_, err = repo.Dependency().Update(ctx, got)
		gt.NoError(t, err).Required()

		got, err = repo.Dependency().Get(ctx, a, b)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Type).Equal(types.DependencyTypeOptional)
		gt.Value(t, got.Notes).Nil()

		gt.NoError(t, repo.Dependency().Delete(ctx, a, b)).Required()
		_, err = repo.Dependency().Get(ctx, a, b)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("DeleteByFeature removes both directions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		a, b, c := uniqueCode("A"), uniqueCode("B"), uniqueCode("C")

		for _, pair := range [][2]string{{a, b}, {c, a}, {b, c}} {
			_, err := repo.Dependency().Create(ctx, &model.FeatureDependency{
				FeatureCode:   pair[0],
				DependsOnCode: pair[1],
				Type:          types.DependencyTypeHard,
			})
			gt.NoError(t, err).Required()
		}

		gt.NoError(t, repo.Dependency().DeleteByFeature(ctx, a)).Required()

		fromA, err := repo.Dependency().ListByFeature(ctx, a)
		gt.NoError(t, err).Required()
		gt.Array(t, fromA).Length(0)

		fromC, err := repo.Dependency().ListByFeature(ctx, c)
		gt.NoError(t, err).Required()
		gt.Array(t, fromC).Length(0)

		fromB, err := repo.Dependency().ListByFeature(ctx, b)
		gt.NoError(t, err).Required()
		gt.Array(t, fromB).Length(1)
		gt.Value(t, fromB[0].DependsOnCode).Equal(c)
	})
}

func TestFeatureRepository(t *testing.T) {
	runAllBackends(t, runFeatureRepositoryTest)
}

func TestDependencyRepository(t *testing.T) {
	runAllBackends(t, runDependencyRepositoryTest)
}
