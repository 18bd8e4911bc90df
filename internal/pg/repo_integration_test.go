//go:build integration

package pg

import (
	"context"
	"sync"
	"testing"
	"time"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
	"cardscan/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"
)

type staticConfig struct {
	mu  sync.Mutex
	cfg schema.ColumnConfig
}

func (s *staticConfig) Current() schema.ColumnConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

func (s *staticConfig) set(cfg schema.ColumnConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func startRepo(t *testing.T) (*Repo, *staticConfig) {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("cardscan"),
		postgres.WithUsername("cardscan"),
		postgres.WithPassword("cardscan"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, url, Pool{MaxOpen: 4, MaxIdle: 2, MaxLifetime: time.Minute, PingTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	src := &staticConfig{cfg: schema.Default()}
	repo := NewRepo(db, src, true, zaptest.NewLogger(t))
	require.NoError(t, repo.Migrate(ctx, src.Current()))
	return repo, src
}

func TestRepoCRUD(t *testing.T) {
	repo, _ := startRepo(t)
	ctx := context.Background()

	rec := record.New(map[string]string{"name": "Ada", "email": "ada@example.com", "dateAdded": "2024-01-02T00:00:00Z"})
	rec.ShortID = 123456
	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 123456, created.ShortID)
	assert.Equal(t, "Ada", created.Fields["name"])

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	found, ok, err := repo.FindByShortID(ctx, 123456)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, found.ID)

	edited := got.Merge(map[string]string{"company": "Analytical Engines"})
	edited.ShortID = 999999
	updated, err := repo.Update(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines", updated.Fields["company"])
	assert.Equal(t, 123456, updated.ShortID)

	require.NoError(t, repo.Delete(ctx, created.ID))
	err = repo.Delete(ctx, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = repo.Get(ctx, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRepoShortIDUnique(t *testing.T) {
	repo, _ := startRepo(t)
	ctx := context.Background()

	a := record.New(map[string]string{"name": "A"})
	a.ShortID = 111111
	_, err := repo.Create(ctx, a)
	require.NoError(t, err)

	b := record.New(map[string]string{"name": "B"})
	b.ShortID = 111111
	_, err = repo.Create(ctx, b)
	assert.ErrorIs(t, err, record.ErrShortIDTaken)
}

func TestRepoListOrderAndClear(t *testing.T) {
	repo, _ := startRepo(t)
	ctx := context.Background()

	for i, d := range []string{"2024-01-01T00:00:00Z", "2024-03-01T00:00:00Z", "2024-02-01T00:00:00Z"} {
		r := record.New(map[string]string{"name": d, "dateAdded": d})
		r.ShortID = 200000 + i
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
	}
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-03-01T00:00:00Z", list[0].Fields["dateAdded"])
	assert.Equal(t, "2024-01-01T00:00:00Z", list[2].Fields["dateAdded"])

	require.NoError(t, repo.Clear(ctx))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepoAddedFieldRoundTrips(t *testing.T) {
	repo, src := startRepo(t)
	ctx := context.Background()

	cfg, _, err := src.Current().Add("Job Title")
	require.NoError(t, err)
	require.NoError(t, repo.Sync(ctx, cfg))
	src.set(cfg)

	r := record.New(map[string]string{"name": "Grace", "job_title": "Rear Admiral", "unknown": "dropped"})
	r.ShortID = 654321
	created, err := repo.Create(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "Rear Admiral", created.Fields["job_title"])
	assert.NotContains(t, created.Fields, "unknown")

	// удалённое поле скрыто, но данные остаются в колонке
	without, err := cfg.Remove("job_title")
	require.NoError(t, err)
	src.set(without)
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.Fields, "job_title")

	src.set(cfg)
	got, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rear Admiral", got.Fields["job_title"])
}
