// Package scheduler triggers the daily extraction from a cron expression
// evaluated in the business timezone.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

type Scheduler struct {
	cron  *cron.Cron
	sched cron.Schedule
	loc   *time.Location
	log   *zap.Logger
}

// New parses a five-field expression. Overlapping firings are skipped while
// the previous task is still running.
func New(expression string, loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	sched, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expression, err)
	}
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{cron: c, sched: sched, loc: loc, log: log}, nil
}

// Next reports the first firing strictly after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.sched.Next(t.In(s.loc))
}

// Run fires task on schedule until ctx is done, then waits for an in-flight
// task to return. Task errors are logged; the schedule keeps going.
func (s *Scheduler) Run(ctx context.Context, task Task) {
	s.cron.Schedule(s.sched, s.job(ctx, task))
	s.cron.Start()
	s.log.Info("scheduler started", zap.Time("next", s.Next(time.Now())))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) job(ctx context.Context, task Task) cron.Job {
	return cron.FuncJob(func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			s.log.Error("scheduled run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		s.log.Info("scheduled run finished", zap.Duration("elapsed", time.Since(start)))
	})
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
