package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cardscan/internal/schema"

	"go.uber.org/zap"
)

// DefaultKey: ключ, под которым конфигурация лежит в локальном хранилище.
const DefaultKey = "cardscan-config"

// Backend: минимальный контракт kv-хранилища.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Store держит единственный экземпляр ColumnConfig на процесс.
// Каждое изменение сразу пишется в Backend, без батчинга.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	key      string
	defaults schema.ColumnConfig
	log      *zap.Logger
	current  schema.ColumnConfig
}

func New(backend Backend, defaults schema.ColumnConfig, log *zap.Logger) *Store {
	if defaults == nil {
		defaults = schema.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend:  backend,
		key:      DefaultKey,
		defaults: defaults.Clone(),
		log:      log,
		current:  defaults.Clone(),
	}
}

// Load никогда не падает: нет данных или они битые → набор по умолчанию.
func (s *Store) Load(ctx context.Context) schema.ColumnConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.loadLocked(ctx)
	return s.current.Clone()
}

func (s *Store) loadLocked(ctx context.Context) schema.ColumnConfig {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("column config read failed, using defaults", zap.Error(err))
		return s.defaults.Clone()
	}
	if !ok {
		return s.defaults.Clone()
	}
	var cfg schema.ColumnConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.log.Warn("column config is corrupt, using defaults", zap.Error(err))
		return s.defaults.Clone()
	}
	if err := cfg.Validate(); err != nil {
		s.log.Warn("column config is invalid, using defaults", zap.Error(err))
		return s.defaults.Clone()
	}
	return cfg
}

// Current: копия текущей конфигурации; вызывающий может её менять.
func (s *Store) Current() schema.ColumnConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Save перезаписывает конфигурацию целиком.
func (s *Store) Save(ctx context.Context, cfg schema.ColumnConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, cfg)
}

func (s *Store) saveLocked(ctx context.Context, cfg schema.ColumnConfig) error {
	if cfg == nil {
		cfg = schema.ColumnConfig{}
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("settings: persist: %w", err)
	}
	s.current = cfg.Clone()
	return nil
}

// Apply применяет мутацию к текущей конфигурации и сохраняет результат.
// Мутации идут строго по очереди; при отказе состояние не меняется.
func (s *Store) Apply(ctx context.Context, mutate func(schema.ColumnConfig) (schema.ColumnConfig, error)) (schema.ColumnConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := mutate(s.current.Clone())
	if err != nil {
		return s.current.Clone(), err
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return s.current.Clone(), err
	}
	s.log.Debug("column config saved", zap.Int("fields", len(next)))
	return next.Clone(), nil
}

// Reset возвращает набор по умолчанию.
func (s *Store) Reset(ctx context.Context) (schema.ColumnConfig, error) {
	return s.Apply(ctx, func(schema.ColumnConfig) (schema.ColumnConfig, error) {
		return s.defaults.Clone(), nil
	})
}

// Defaults: копия набора по умолчанию.
func (s *Store) Defaults() schema.ColumnConfig { return s.defaults.Clone() }
