package record

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"cardscan/internal/apperr"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultLocalKey: ключ kv, где лежит JSON-массив записей.
const DefaultLocalKey = "cardscan-db"

// KV совпадает с settings.Backend, локальное хранилище строк по ключу.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// LocalRepo: весь набор записей читается один раз при старте и целиком
// перезаписывается после каждой мутации.
type LocalRepo struct {
	mu      sync.RWMutex
	kv      KV
	key     string
	records []Record
	entropy io.Reader
	log     *zap.Logger
}

func NewLocal(ctx context.Context, kv KV, log *zap.Logger) (*LocalRepo, error) {
	if log == nil {
		log = zap.NewNop()
	}
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	r := &LocalRepo{
		kv:      kv,
		key:     DefaultLocalKey,
		entropy: ulid.Monotonic(src, 0),
		log:     log,
	}
	raw, ok, err := kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("local repo: load: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &r.records); err != nil {
			// битые данные → пустой список, как при первом запуске
			log.Warn("stored records are corrupt, starting empty", zap.Error(err))
			r.records = nil
		}
	}
	return r, nil
}

func (r *LocalRepo) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), r.entropy).String()
}

func (r *LocalRepo) persistLocked(ctx context.Context, next []Record) error {
	if next == nil {
		next = []Record{}
	}
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("local repo: encode: %w", err)
	}
	if err := r.kv.Put(ctx, r.key, string(b)); err != nil {
		return fmt.Errorf("local repo: persist: %w", err)
	}
	r.records = next
	return nil
}

func (r *LocalRepo) indexLocked(id string) int {
	for i, rec := range r.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(in []Record) []Record {
	out := make([]Record, 0, len(in))
	for _, rec := range in {
		out = append(out, rec.Clone())
	}
	return out
}

// List: в порядке добавления.
func (r *LocalRepo) List(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.records), nil
}

func (r *LocalRepo) Get(_ context.Context, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return Record{}, apperr.NotFound("local.get", "Record not found")
	}
	return r.records[i].Clone(), nil
}

func (r *LocalRepo) Create(ctx context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec = rec.Clone()
	rec.ID = r.newID()
	if rec.ShortID != 0 {
		for _, ex := range r.records {
			if ex.ShortID == rec.ShortID {
				return Record{}, ErrShortIDTaken
			}
		}
	}
	next := append(cloneAll(r.records), rec)
	if err := r.persistLocked(ctx, next); err != nil {
		return Record{}, err
	}
	return rec.Clone(), nil
}

// Update заменяет запись целиком; ID и ShortID не меняются.
func (r *LocalRepo) Update(ctx context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(rec.ID)
	if i < 0 {
		return Record{}, apperr.NotFound("local.update", "Record not found")
	}
	rec = rec.Clone()
	rec.ShortID = r.records[i].ShortID
	next := cloneAll(r.records)
	next[i] = rec
	if err := r.persistLocked(ctx, next); err != nil {
		return Record{}, err
	}
	return rec.Clone(), nil
}

func (r *LocalRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return apperr.NotFound("local.delete", "Record not found")
	}
	next := make([]Record, 0, len(r.records)-1)
	next = append(next, cloneAll(r.records[:i])...)
	next = append(next, cloneAll(r.records[i+1:])...)
	return r.persistLocked(ctx, next)
}

func (r *LocalRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(ctx, nil)
}

func (r *LocalRepo) FindByShortID(_ context.Context, shortID int) (Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ShortID == shortID {
			return rec.Clone(), true, nil
		}
	}
	return Record{}, false, nil
}
