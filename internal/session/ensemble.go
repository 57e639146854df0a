package session

import (
	"context"
	"sync"

	"github.com/san-kum/pegfall/internal/board"
)

// EnsembleConfig describes a batch of seeded drops over one board.
type EnsembleConfig struct {
	Board     board.Config
	Classes   ClassTable
	ClassID   string
	DropX     float64
	SeedStart int64
	Runs      int
	MaxTicks  int
}

// RunEnsemble executes Runs seeded drops in parallel, one engine per
// goroutine (engines are single threaded by construction). Seeds are
// SeedStart, SeedStart+1, ... so a batch is reproducible.
func RunEnsemble(ctx context.Context, cfg EnsembleConfig) ([]*DropResult, error) {
	results := make([]*DropResult, cfg.Runs)
	errs := make([]error, cfg.Runs)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			b, err := board.New(cfg.Board)
			if err != nil {
				errs[idx] = err
				return
			}
			eng, err := New(b, cfg.Classes, Callbacks{})
			if err != nil {
				errs[idx] = err
				return
			}
			eng.SetClass(cfg.ClassID)
			eng.DropSeeded(cfg.DropX, cfg.SeedStart+int64(idx))
			results[idx], errs[idx] = eng.Run(ctx, cfg.MaxTicks)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
