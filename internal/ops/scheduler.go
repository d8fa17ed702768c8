package ops

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var specParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler runs periodic jobs. A job still running when its next tick fires is skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
	ctx  context.Context
}

func NewScheduler(ctx context.Context, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(specParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log: log.With(slog.String("component", "scheduler")),
		ctx: ctx,
	}
}

func ValidateSpec(spec string) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Add(job Job) error {
	if err := ValidateSpec(job.Spec); err != nil {
		return err
	}
	log := s.log.With(slog.String("job", job.Name))
	_, err := s.cron.AddFunc(job.Spec, func() {
		started := time.Now()
		if err := job.Run(s.ctx); err != nil {
			log.Error("job failed", slog.Any("error", err))
			return
		}
		log.Debug("job done", slog.Duration("took", time.Since(started)))
	})
	if err != nil {
		return fmt.Errorf("error scheduling %s: %w", job.Name, err)
	}
	log.Info("job scheduled", slog.String("spec", job.Spec))
	return nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
