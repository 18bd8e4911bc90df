package record

import (
	"context"
	"errors"
)

// ErrShortIDTaken: хранилище отклонило вставку из-за занятого короткого id.
var ErrShortIDTaken = errors.New("short id already taken")

// Repository: коллекция записей поверх одного из бэкендов (локальный / Postgres).
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	// Create назначает ID; ShortID должен быть уже проставлен вызывающим (или 0).
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	// FindByShortID: проба для генератора коротких id.
	FindByShortID(ctx context.Context, shortID int) (Record, bool, error)
}
