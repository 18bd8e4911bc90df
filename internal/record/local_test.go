package record

import (
	"context"
	"errors"
	"testing"

	"cardscan/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data   map[string]string
	putErr error
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

func newLocal(t *testing.T, kv *memKV) *LocalRepo {
	t.Helper()
	r, err := NewLocal(context.Background(), kv, nil)
	require.NoError(t, err)
	return r
}

func TestLocalCRUD(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string]string{}}
	repo := newLocal(t, kv)

	a, err := repo.Create(ctx, Record{ShortID: 111111, Fields: map[string]string{"name": "A"}})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	b, err := repo.Create(ctx, New(map[string]string{"name": "B"}))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Fields["name"])

	a.Fields["name"] = "A2"
	a.ShortID = 999999 // не должен перезаписаться
	upd, err := repo.Update(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 111111, upd.ShortID)

	got, found, err := repo.FindByShortID(ctx, 111111)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A2", got.Fields["name"])

	require.NoError(t, repo.Delete(ctx, b.ID))
	_, err = repo.Get(ctx, b.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// перечитываем из kv: данные пережили "перезапуск"
	again := newLocal(t, kv)
	list, err = again.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, upd, list[0])
}

func TestLocalUpdateUnknown(t *testing.T) {
	repo := newLocal(t, &memKV{data: map[string]string{}})
	_, err := repo.Update(context.Background(), Record{ID: "missing"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLocalCreateRejectsTakenShortID(t *testing.T) {
	ctx := context.Background()
	repo := newLocal(t, &memKV{data: map[string]string{}})
	_, err := repo.Create(ctx, Record{ShortID: 123456})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Record{ShortID: 123456})
	assert.ErrorIs(t, err, ErrShortIDTaken)
}

func TestLocalCorruptDataStartsEmpty(t *testing.T) {
	repo := newLocal(t, &memKV{data: map[string]string{DefaultLocalKey: "[{broken"}})
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLocalPersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string]string{}}
	repo := newLocal(t, kv)
	_, err := repo.Create(ctx, New(map[string]string{"name": "A"}))
	require.NoError(t, err)

	kv.putErr = errors.New("disk")
	require.Error(t, repo.Clear(ctx))
	list, _ := repo.List(ctx)
	assert.Len(t, list, 1)
}

func TestLocalClear(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string]string{}}
	repo := newLocal(t, kv)
	_, _ = repo.Create(ctx, New(map[string]string{"name": "A"}))
	require.NoError(t, repo.Clear(ctx))
	assert.Equal(t, "[]", kv.data[DefaultLocalKey])
}
