// Package shortid выдаёт шестизначный отображаемый id, которого нет в хранилище.
package shortid

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
)

const (
	Min = 100000
	Max = 999999

	DefaultMaxAttempts = 50
)

var ErrExhausted = errors.New("no free short id")

// Probe: record.Repository.FindByShortID.
type Probe interface {
	FindByShortID(ctx context.Context, shortID int) (record.Record, bool, error)
}

// Generator: проверка-потом-вставка без блокировок. Уникальность при
// одновременной вставке держит индекс хранилища (record.ErrShortIDTaken).
type Generator struct {
	probe       Probe
	maxAttempts int

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Generator)

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithRand: детерминированный источник для тестов.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

func New(p Probe, opts ...Option) *Generator {
	g := &Generator{
		probe:       p,
		maxAttempts: DefaultMaxAttempts,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) draw() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Min + g.rnd.Intn(Max-Min+1)
}

// Generate пробует случайные кандидаты до первого свободного.
func (g *Generator) Generate(ctx context.Context) (int, error) {
	for i := 0; i < g.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return 0, apperr.Transport("shortid", "Generating an ID was interrupted.", err)
		}
		n := g.draw()
		_, taken, err := g.probe.FindByShortID(ctx, n)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindTransport {
				return 0, err
			}
			return 0, apperr.Transport("shortid", "Could not check ID availability.", err)
		}
		if !taken {
			return n, nil
		}
	}
	return 0, apperr.Unknown("shortid", "Could not find a free ID. Please try again.", ErrExhausted)
}
