// Package repotest holds the behaviour every simpleassets.Repository
// implementation must share. Each backend's tests call Run with a factory
// returning an empty repository.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// Factory returns an empty repository for a single subtest.
type Factory func(t *testing.T) simpleassets.Repository

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, repo simpleassets.Repository) []*simpleassets.Asset {
	t.Helper()
	ctx := context.Background()

	fixtures := []*simpleassets.Asset{
		{Filename: "Holiday.PNG", ContentType: "image/png", Size: 10, UploadDate: base},
		{Filename: "clip.mp4", ContentType: "video/mp4", Size: 20, UploadDate: base.Add(time.Hour)},
		{Filename: "holiday-2.jpg", ContentType: "image/jpeg", Size: 30, UploadDate: base.Add(2 * time.Hour)},
		{Filename: "report_100%.png", ContentType: "image/png", Size: 40, UploadDate: base.Add(3 * time.Hour)},
	}

	saved := make([]*simpleassets.Asset, 0, len(fixtures))
	for _, f := range fixtures {
		s, err := repo.Save(ctx, f)
		require.NoError(t, err)
		saved = append(saved, s)
	}
	return saved
}

func filenames(assets []*simpleassets.Asset) []string {
	names := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.Filename)
	}
	return names
}

// Run exercises the Repository contract against newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("SaveAssignsIDAndDefaults", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.Save(ctx, &simpleassets.Asset{
			Filename:    "a.png",
			ContentType: "image/png",
			Content:     []byte("payload"),
			Size:        7,
			UploadDate:  base,
		})
		require.NoError(t, err)
		second, err := repo.Save(ctx, &simpleassets.Asset{Filename: "b.png", UploadDate: base})
		require.NoError(t, err)

		assert.Positive(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
		assert.Equal(t, simpleassets.AssetStatusPending, first.Status)

		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.png", got.Filename)
		assert.Equal(t, "image/png", got.ContentType)
		assert.Equal(t, int64(7), got.Size)
		assert.True(t, base.Equal(got.UploadDate))
		assert.Empty(t, got.Content, "payload is never persisted")
		assert.Empty(t, got.URL)
	})

	t.Run("SaveKeepsExplicitStatus", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, &simpleassets.Asset{
			Filename:   "x.png",
			UploadDate: base,
			Status:     simpleassets.AssetStatusFailed,
		})
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, simpleassets.AssetStatusFailed, got.Status)
	})

	t.Run("FindByIDMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(ctx, 4242)
		assert.ErrorIs(t, err, simpleassets.ErrAssetNotFound)
	})

	t.Run("UpdateStatusAndURL", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, &simpleassets.Asset{Filename: "a.png", UploadDate: base})
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatus(ctx, saved.ID, simpleassets.AssetStatusUploading))
		require.NoError(t, repo.UpdateStorageURL(ctx, saved.ID, "images/tok-a.png"))

		got, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, simpleassets.AssetStatusUploading, got.Status)
		assert.Equal(t, "images/tok-a.png", got.URL)
	})

	t.Run("UpdatesOnUnknownIDAreNoOps", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, &simpleassets.Asset{Filename: "a.png", UploadDate: base})
		require.NoError(t, err)

		assert.NoError(t, repo.UpdateStatus(ctx, saved.ID+100, simpleassets.AssetStatusCompleted))
		assert.NoError(t, repo.UpdateStorageURL(ctx, saved.ID+100, "images/x"))

		got, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, simpleassets.AssetStatusPending, got.Status)
		assert.Empty(t, got.URL)
	})

	t.Run("ReturnedCopiesAreDetached", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, &simpleassets.Asset{Filename: "a.png", UploadDate: base})
		require.NoError(t, err)

		saved.Filename = "mutated.png"
		got, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.png", got.Filename)
	})

	t.Run("SearchEmptyStore", func(t *testing.T) {
		repo := newRepo(t)
		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{}))
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("SearchDefaultsToNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{}))
		require.NoError(t, err)
		assert.Equal(t, []string{"report_100%.png", "holiday-2.jpg", "clip.mp4", "Holiday.PNG"}, filenames(result))
	})

	t.Run("SearchAscending", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			SortDirection: simpleassets.SortAscending,
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Holiday.PNG", "clip.mp4", "holiday-2.jpg", "report_100%.png"}, filenames(result))
	})

	t.Run("SearchEqualDatesTieBreakOnID", func(t *testing.T) {
		repo := newRepo(t)
		for _, name := range []string{"one.png", "two.png", "three.png"} {
			_, err := repo.Save(ctx, &simpleassets.Asset{Filename: name, UploadDate: base})
			require.NoError(t, err)
		}

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			SortDirection: simpleassets.SortAscending,
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"one.png", "two.png", "three.png"}, filenames(result))
	})

	t.Run("SearchFilenameIsCaseInsensitiveSubstring", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			FilenamePattern: ptr("HOLIDAY"),
			SortDirection:   simpleassets.SortAscending,
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Holiday.PNG", "holiday-2.jpg"}, filenames(result))
	})

	t.Run("SearchFilenameFoldsNonASCIICase", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)
		for _, name := range []string{"ÉCOLE.png", "Straße.mp4"} {
			_, err := repo.Save(ctx, &simpleassets.Asset{Filename: name, UploadDate: base.Add(4 * time.Hour)})
			require.NoError(t, err)
		}

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			FilenamePattern: ptr("école"),
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"ÉCOLE.png"}, filenames(result))

		result, err = repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			FilenamePattern: ptr("STRASSE"),
		}))
		require.NoError(t, err)
		assert.Empty(t, result, "case folding is not full Unicode case mapping")

		result, err = repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			FilenamePattern: ptr("STRAßE"),
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Straße.mp4"}, filenames(result))
	})

	t.Run("SearchFilenameTreatsWildcardsLiterally", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			FilenamePattern: ptr("_100%"),
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"report_100%.png"}, filenames(result))

		result, err = repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			FilenamePattern: ptr("h%y"),
		}))
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("SearchContentTypeExact", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			ContentType: ptr("image/png"),
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"report_100%.png", "Holiday.PNG"}, filenames(result))
	})

	t.Run("SearchDateRangeIsInclusive", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			UploadDateStart: ptr(base.Add(time.Hour)),
			UploadDateEnd:   ptr(base.Add(2 * time.Hour)),
			SortDirection:   simpleassets.SortAscending,
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"clip.mp4", "holiday-2.jpg"}, filenames(result))
	})

	t.Run("SearchCombinedFilters", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		result, err := repo.Search(ctx, simpleassets.BuildFilter(&simpleassets.SearchCriteria{
			UploadDateStart: ptr(base.Add(30 * time.Minute)),
			FilenamePattern: ptr("holiday"),
			ContentType:     ptr("image/jpeg"),
		}))
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "holiday-2.jpg", result[0].Filename)
		assert.Equal(t, int64(30), result[0].Size)
	})
}
