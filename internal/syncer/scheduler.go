package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// StartScheduler runs Sync on a fixed interval until the stop channel fires.
// A pass already in flight is left alone; the tick is simply skipped.
func (p *Pipeline) StartScheduler(interval time.Duration, stopChan chan bool, waitGroup *sync.WaitGroup) {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		p.logger.Info("sync scheduler started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				p.runScheduledPass(interval)
			case <-stopChan:
				p.logger.Info("sync scheduler stopped")
				return
			}
		}
	}()
}

func (p *Pipeline) runScheduledPass(interval time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), interval)
	defer cancel()

	_, err := p.Sync(ctx)
	if errors.Is(err, review.ErrSyncBusy) {
		p.logger.Debug("previous sync pass still running, skipping tick")
		return
	}
	if err != nil {
		p.logger.Error("scheduled sync pass failed", "error", err)
	}
}
