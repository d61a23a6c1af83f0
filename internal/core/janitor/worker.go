// Package janitor evicts expired in-memory state on a fixed interval.
package janitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

type Worker struct {
	name      string
	target    Sweeper
	pollEvery time.Duration
}

func NewWorker(name string, target Sweeper, every time.Duration) *Worker {
	if every <= 0 {
		every = time.Minute
	}
	return &Worker{name: name, target: target, pollEvery: every}
}

func (w *Worker) Run(ctx context.Context) {
	log.Info().Str("worker", w.name).Dur("every", w.pollEvery).Msg("janitor: started")
	t := time.NewTicker(w.pollEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("worker", w.name).Msg("janitor: stopping")
			return
		case <-t.C:
			w.tick()
		}
	}
}

func (w *Worker) tick() {
	if n := w.target.Sweep(); n > 0 {
		log.Debug().Str("worker", w.name).Int("evicted", n).Msg("janitor: swept expired entries")
	}
}
