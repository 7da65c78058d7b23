//go:build integration

package labelfmt

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer creates an ephemeral PostgreSQL container for testing.
func setupPostgresContainer(t *testing.T) (*PostgresStorage, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("labelfmt_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	storage, err := NewPostgresStorage(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
		QueryTimeout:     30 * time.Second,
	})
	require.NoError(t, err, "failed to create postgres storage")

	cleanup := func() {
		if storage != nil {
			_ = storage.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	}

	return storage, cleanup
}

func TestPostgres_E2E_BasicCRUD(t *testing.T) {
	storage, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		label := &StoredLabel{
			Name:       "episode",
			Template:   "[{series} - ]S{season:02d}E{episode:02d}",
			Stylesheet: "styles:\n  series: B\n",
			Metadata:   map[string]string{"author": "test"},
			Tags:       []string{"tv", "test"},
		}

		err := storage.Save(ctx, label)
		require.NoError(t, err)
		assert.NotEmpty(t, label.ID)
		assert.Equal(t, 1, label.Version)
		assert.False(t, label.CreatedAt.IsZero())
		assert.False(t, label.UpdatedAt.IsZero())
	})

	t.Run("Get", func(t *testing.T) {
		label, err := storage.Get(ctx, "episode")
		require.NoError(t, err)
		assert.Equal(t, "episode", label.Name)
		assert.Contains(t, label.Template, "S{season:02d}")
		assert.Equal(t, 1, label.Version)
		assert.Equal(t, map[string]string{"author": "test"}, label.Metadata)
		assert.Contains(t, label.Tags, "tv")
	})

	t.Run("SaveNewVersion", func(t *testing.T) {
		label := &StoredLabel{Name: "episode", Template: "v2"}
		require.NoError(t, storage.Save(ctx, label))
		assert.Equal(t, 2, label.Version)

		latest, err := storage.Get(ctx, "episode")
		require.NoError(t, err)
		assert.Equal(t, "v2", latest.Template)
	})

	t.Run("GetVersion", func(t *testing.T) {
		label, err := storage.GetVersion(ctx, "episode", 1)
		require.NoError(t, err)
		assert.Contains(t, label.Template, "E{episode:02d}")
	})

	t.Run("ListVersions", func(t *testing.T) {
		versions, err := storage.ListVersions(ctx, "episode")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, versions)
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := storage.Exists(ctx, "episode")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = storage.Exists(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("DeleteVersion", func(t *testing.T) {
		require.NoError(t, storage.DeleteVersion(ctx, "episode", 1))

		versions, err := storage.ListVersions(ctx, "episode")
		require.NoError(t, err)
		assert.Equal(t, []int{2}, versions)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, "episode"))

		_, err := storage.Get(ctx, "episode")
		require.Error(t, err)
		assert.True(t, IsLabelNotFound(err))
	})
}

func TestPostgres_E2E_NotFound(t *testing.T) {
	storage, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	_, err := storage.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsLabelNotFound(err))

	_, err = storage.GetVersion(ctx, "missing", 1)
	require.Error(t, err)
	assert.True(t, IsLabelNotFound(err))

	err = storage.Delete(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsLabelNotFound(err))
}

func TestPostgres_E2E_List(t *testing.T) {
	storage, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.Save(ctx, &StoredLabel{
			Name:     fmt.Sprintf("ep-%d", i),
			Template: "x",
			Tags:     []string{"tv"},
		}))
	}
	require.NoError(t, storage.Save(ctx, &StoredLabel{Name: "ep-0", Template: "y", Tags: []string{"tv"}}))
	require.NoError(t, storage.Save(ctx, &StoredLabel{Name: "movie", Template: "z", Tags: []string{"film"}}))

	t.Run("latest versions by default", func(t *testing.T) {
		results, err := storage.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, results, 4)
		assert.Equal(t, "ep-0", results[0].Name)
		assert.Equal(t, 2, results[0].Version)
	})

	t.Run("all versions", func(t *testing.T) {
		results, err := storage.List(ctx, &LabelQuery{IncludeAllVersions: true})
		require.NoError(t, err)
		assert.Len(t, results, 5)
	})

	t.Run("prefix filter", func(t *testing.T) {
		results, err := storage.List(ctx, &LabelQuery{NamePrefix: "ep-"})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("contains filter", func(t *testing.T) {
		results, err := storage.List(ctx, &LabelQuery{NameContains: "ovi"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "movie", results[0].Name)
	})

	t.Run("tag filter", func(t *testing.T) {
		results, err := storage.List(ctx, &LabelQuery{Tags: []string{"film"}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "movie", results[0].Name)
	})

	t.Run("limit and offset", func(t *testing.T) {
		page, err := storage.List(ctx, &LabelQuery{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})
}

func TestPostgres_E2E_ConcurrentSaves(t *testing.T) {
	storage, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- storage.Save(ctx, &StoredLabel{Name: "shared", Template: "x"})
		}()
	}
	wg.Wait()
	close(errs)

	// serializable transactions may force retries onto callers; every
	// success must have claimed a distinct version
	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Greater(t, succeeded, 0)

	versions, err := storage.ListVersions(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, versions, succeeded)
	seen := make(map[int]bool)
	for _, v := range versions {
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestPostgres_E2E_CatalogIntegration(t *testing.T) {
	storage, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, &StoredLabel{
		Name:       "episode",
		Template:   "[{series} - ][S{season:02d}][E{episode:02d}][: {title}]",
		Stylesheet: "styles:\n  title: B\n",
	}))

	catalog := NewCatalog(storage)
	out, err := catalog.Render(ctx, "episode", nil, map[string]any{
		"series": "Serial", "season": 2, "episode": 3, "title": "Pilot",
	})
	require.NoError(t, err)
	assert.Equal(t, "Serial - S02E03: [B]Pilot[/B]", out)
}
