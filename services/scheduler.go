// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartReseedScheduler reseeds the catalog every interval. It returns nil when
// interval is not positive. Callers must Shutdown the returned scheduler.
func (s *CatalogService) StartReseedScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			summary, err := s.Reseed(ctx)
			if err != nil {
				log.Printf("[Scheduler] Catalog reseed failed: %v", err)
				return
			}
			log.Printf("✅ Scheduled reseed imported %d trophies across %d games", summary.Inserted, summary.Games)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	log.Printf("[Scheduler] Catalog reseed every %s", interval)
	return sched, nil
}
