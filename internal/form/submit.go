package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
	"cardscan/internal/schema"

	"go.uber.org/zap"
)

const (
	MsgSaved   = "Contact saved successfully!"
	MsgUpdated = "Contact updated successfully!"
)

// IDSource: shortid.Generator.
type IDSource interface {
	Generate(ctx context.Context) (int, error)
}

type Submission struct {
	// Token: идентификатор открытой формы; повторная отправка с тем же
	// токеном, пока первая не завершилась, отклоняется.
	Token    string
	Original record.Record
	Edited   map[string]string
	Editing  bool
	// Config: текущая ColumnConfig; nil означает встроенный набор.
	Config schema.ColumnConfig
}

type Result struct {
	Record  record.Record `json:"record"`
	Message string        `json:"message"`
}

type Submitter struct {
	repo record.Repository
	ids  IDSource
	now  func() time.Time
	log  *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmitter(repo record.Repository, ids IDSource, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		repo:     repo,
		ids:      ids,
		now:      time.Now,
		log:      log,
		inFlight: map[string]struct{}{},
	}
}

func (s *Submitter) acquire(token string) bool {
	if token == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[token]; busy {
		return false
	}
	s.inFlight[token] = struct{}{}
	return true
}

func (s *Submitter) release(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.inFlight, token)
	s.mu.Unlock()
}

// Submit: правки поверх исходной записи, свежая дата, create или update по флагу.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (Result, error) {
	if !s.acquire(sub.Token) {
		return Result{}, apperr.Busy("form.submit", "Saving...")
	}
	defer s.release(sub.Token)

	cfg := sub.Config
	if cfg == nil {
		cfg = schema.Default()
	}
	// из формы принимаем только поля формы
	inputs := cfg.FormFields()
	edited := make(map[string]string, len(sub.Edited))
	for k, v := range sub.Edited {
		if inputs.Has(k) {
			edited[k] = v
		}
	}
	orig := sub.Original
	if !sub.Editing {
		// новая запись: исходник (распознавание, клиент) режем по конфигурации;
		// при правке старые значения удалённых полей остаются как есть
		orig = record.New(nil)
		for k, v := range sub.Original.Fields {
			if cfg.Has(k) && !schema.IsSystemManaged(k) {
				orig.Set(k, v)
			}
		}
	}
	rec := orig.Merge(edited)
	rec.Set(schema.KeyDateAdded, s.now().UTC().Format(time.RFC3339))

	if sub.Editing {
		if rec.ID == "" {
			return Result{}, apperr.Validation(record.KeyID, "Cannot update a contact without an id.", nil)
		}
		out, err := s.repo.Update(ctx, rec)
		if err != nil {
			return Result{}, err
		}
		s.log.Info("record updated", zap.String("id", out.ID))
		return Result{Record: out, Message: MsgUpdated}, nil
	}

	out, err := s.create(ctx, rec)
	if err != nil {
		return Result{}, err
	}
	s.log.Info("record created", zap.String("id", out.ID), zap.Int("short_id", out.ShortID))
	return Result{Record: out, Message: MsgSaved}, nil
}

// create: при гонке за короткий id (индекс в Postgres) берём новый один раз.
func (s *Submitter) create(ctx context.Context, rec record.Record) (record.Record, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		n, err := s.ids.Generate(ctx)
		if err != nil {
			return record.Record{}, err
		}
		rec.ShortID = n
		out, err := s.repo.Create(ctx, rec)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, record.ErrShortIDTaken) {
			return record.Record{}, err
		}
		s.log.Warn("short id taken on insert, retrying", zap.Int("short_id", n))
		lastErr = err
	}
	return record.Record{}, apperr.Transport("form.submit", "Error saving contact", lastErr)
}
