package travel

import (
	"context"
	"log"
	"time"
)

// DefaultHoldSweepInterval is how often expired holds are released when
// no interval is configured.
const DefaultHoldSweepInterval = 5 * time.Minute

// StartHoldSweeper releases lapsed booking holds on a fixed interval
// until ctx is cancelled.
func (s *Service) StartHoldSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHoldSweepInterval
	}
	go s.sweepLoop(ctx, interval)
}

func (s *Service) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireHolds(ctx)
			if err != nil {
				log.Printf("expire holds error: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("released %d expired booking holds", n)
			}
		}
	}
}
