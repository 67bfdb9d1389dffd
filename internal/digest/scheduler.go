// internal/digest/scheduler.go
package digest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs digest builds on a cron schedule. Build skips shops whose
// cadence is "off" or not yet due, so the schedule only has to fire as often
// as the most frequent cadence.
type Scheduler struct {
	service *Service
	shops   func(ctx context.Context) ([]string, error)
	cron    *cron.Cron
}

func NewScheduler(service *Service, shops func(ctx context.Context) ([]string, error)) *Scheduler {
	return &Scheduler{
		service: service,
		shops:   shops,
		cron:    cron.New(),
	}
}

// Start registers the schedule and launches the cron loop.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runAll)
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("schedule", spec).Msg("digest scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	shops, err := s.shops(ctx)
	if err != nil {
		log.Error().Err(err).Msg("digest scheduler could not list shops")
		return
	}

	for _, shop := range shops {
		if _, err := s.service.Build(ctx, shop); err != nil {
			log.Error().Err(err).Str("shop", shop).Msg("digest build failed")
		}
	}
}
