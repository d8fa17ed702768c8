package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/daytasks/internal/model"
)

type backend struct {
	name string
	open func(t *testing.T, dir string) Repository
}

func backends() []backend {
	return []backend{
		{name: "json", open: func(t *testing.T, dir string) Repository {
			repo, err := OpenJSON(filepath.Join(dir, "tasks.json"))
			require.NoError(t, err)
			return repo
		}},
		{name: "sqlite", open: func(t *testing.T, dir string) Repository {
			repo, err := OpenSQLite(filepath.Join(dir, "tasks.db"))
			require.NoError(t, err)
			return repo
		}},
		{name: "gorm", open: func(t *testing.T, dir string) Repository {
			repo, err := OpenGorm(DialectSQLite, filepath.Join(dir, "tasks-gorm.db"))
			require.NoError(t, err)
			return repo
		}},
	}
}

func eachBackend(t *testing.T, fn func(t *testing.T, open func() Repository)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			var opened []Repository
			t.Cleanup(func() {
				for _, r := range opened {
					_ = r.Close()
				}
			})
			fn(t, func() Repository {
				r := b.open(t, dir)
				opened = append(opened, r)
				return r
			})
		})
	}
}

func TestRepositoryAppendKeepsInsertionOrder(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		repo := open()
		ctx := context.Background()

		got, err := repo.Append(ctx, "42", "02.06.2025", "  Buy milk ")
		require.NoError(t, err)
		require.Equal(t, []model.Task{{Text: "Buy milk"}}, got)

		got, err = repo.Append(ctx, "42", "02.06.2025", "Call mom")
		require.NoError(t, err)
		require.Equal(t, []model.Task{{Text: "Buy milk"}, {Text: "Call mom"}}, got)

		day, err := repo.DayBucket(ctx, "42", "02.06.2025")
		require.NoError(t, err)
		require.Equal(t, got, day)
	})
}

func TestRepositoryRejectsEmptyTextAndBadKeys(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		repo := open()
		ctx := context.Background()

		_, err := repo.Append(ctx, "42", "02.06.2025", "   ")
		require.ErrorIs(t, err, model.ErrEmptyText)

		_, err = repo.Append(ctx, "", "02.06.2025", "x")
		require.ErrorIs(t, err, ErrInvalidKey)

		_, err = repo.Append(ctx, "42", "2025-06-02", "x")
		require.ErrorIs(t, err, ErrInvalidKey)

		day, err := repo.DayBucket(ctx, "42", "02.06.2025")
		require.NoError(t, err)
		require.Empty(t, day)
	})
}

func TestRepositoryToggleIsInvolution(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		repo := open()
		ctx := context.Background()

		_, err := repo.Append(ctx, "42", "02.06.2025", "Buy milk")
		require.NoError(t, err)
		_, err = repo.Append(ctx, "42", "02.06.2025", "Call mom")
		require.NoError(t, err)

		got, err := repo.Toggle(ctx, "42", "02.06.2025", 1)
		require.NoError(t, err)
		require.False(t, got[0].Completed)
		require.True(t, got[1].Completed)

		got, err = repo.Toggle(ctx, "42", "02.06.2025", 1)
		require.NoError(t, err)
		require.False(t, got[1].Completed)

		_, err = repo.Toggle(ctx, "42", "02.06.2025", 2)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = repo.Toggle(ctx, "42", "02.06.2025", -1)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepositoryIsolatesUsers(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		repo := open()
		ctx := context.Background()

		_, err := repo.Append(ctx, "1", "02.06.2025", "mine")
		require.NoError(t, err)
		_, err = repo.Append(ctx, "2", "02.06.2025", "theirs")
		require.NoError(t, err)

		_, err = repo.Toggle(ctx, "2", "02.06.2025", 0)
		require.NoError(t, err)

		mine, err := repo.DayBucket(ctx, "1", "02.06.2025")
		require.NoError(t, err)
		require.Equal(t, []model.Task{{Text: "mine"}}, mine)
	})
}

func TestRepositoryWeekBucketsSkipEmptyDays(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		repo := open()
		ctx := context.Background()

		_, err := repo.Append(ctx, "42", "05.06.2025", "thursday")
		require.NoError(t, err)
		_, err = repo.Append(ctx, "42", "02.06.2025", "monday")
		require.NoError(t, err)
		_, err = repo.Append(ctx, "42", "09.06.2025", "next week")
		require.NoError(t, err)

		week, err := repo.WeekBuckets(ctx, "42", "02.06.2025")
		require.NoError(t, err)
		require.Equal(t, []model.DayBucket{
			{Date: "02.06.2025", Tasks: []model.Task{{Text: "monday"}}},
			{Date: "05.06.2025", Tasks: []model.Task{{Text: "thursday"}}},
		}, week)

		empty, err := repo.WeekBuckets(ctx, "other", "02.06.2025")
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}

func TestRepositorySurvivesReopen(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		ctx := context.Background()
		first := open()
		_, err := first.Append(ctx, "42", "02.06.2025", "Buy milk")
		require.NoError(t, err)
		_, err = first.Toggle(ctx, "42", "02.06.2025", 0)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second := open()
		day, err := second.DayBucket(ctx, "42", "02.06.2025")
		require.NoError(t, err)
		require.Equal(t, []model.Task{{Text: "Buy milk", Completed: true}}, day)
	})
}

func TestRepositoryExportImport(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Repository) {
		repo := open()
		ctx := context.Background()

		_, err := repo.Append(ctx, "stale", "01.06.2025", "gone after import")
		require.NoError(t, err)

		snap := model.Snapshot{
			"42": model.UserStore{
				"02.06.2025": {{Text: "a"}, {Text: "b", Completed: true}},
			},
			"7": model.UserStore{
				"03.06.2025": {{Text: "c"}},
			},
		}
		require.NoError(t, repo.Import(ctx, snap))

		got, err := repo.Export(ctx)
		require.NoError(t, err)
		require.Equal(t, snap, got)

		next, err := repo.Append(ctx, "42", "02.06.2025", "d")
		require.NoError(t, err)
		require.Len(t, next, 3)
		require.Equal(t, "d", next[2].Text)
	})
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := Open(ctx, Options{Path: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	require.IsType(t, &JSONRepository{}, repo)

	repo, err = Open(ctx, Options{Driver: "SQLite", Path: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close())

	repo, err = Open(ctx, Options{Driver: DriverGorm, Path: filepath.Join(dir, "b.db")})
	require.NoError(t, err)
	require.IsType(t, &GormRepository{}, repo)
	require.NoError(t, repo.Close())

	_, err = Open(ctx, Options{Driver: "redis"})
	require.Error(t, err)

	_, err = OpenGorm("postgres", "x")
	require.Error(t, err)
}

func TestOpenRejectsMissingLocation(t *testing.T) {
	ctx := context.Background()
	for _, opts := range []Options{
		{},
		{Driver: DriverJSON, Path: "  "},
		{Driver: DriverSQLite},
		{Driver: DriverGorm, Dialect: DialectSQLite},
		{Driver: DriverGorm, Dialect: DialectMySQL},
	} {
		_, err := Open(ctx, opts)
		require.ErrorIs(t, err, ErrNoLocation, "options %+v", opts)
	}
	require.NoError(t, Options{Driver: DriverGorm, DSN: "file::memory:"}.Validate())
}
