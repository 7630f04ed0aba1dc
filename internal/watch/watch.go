// Package watch fires a cron job on every opening and closing of the
// configured business-hours schedules, logging and journaling each transition.
package watch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"businesshours/internal/eventbus"
	"businesshours/internal/storage"
	"businesshours/pkg/businesshours"
	logx "businesshours/pkg/logx"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

type Config struct {
	Location *time.Location
	// Preview is how many upcoming firings are logged per job on registration.
	Preview int
}

// JobInfo describes one registered transition job.
type JobInfo struct {
	Schedule string
	Kind     storage.Kind
	Cron     string
	Next     time.Time
}

type job struct {
	schedule string
	kind     storage.Kind
	spec     string
	sched    cron.Schedule
	entryID  cron.EntryID
}

type Service struct {
	mu sync.Mutex

	log   logx.Logger
	store storage.Store
	cfg   Config

	parser    cron.Parser
	c         *cron.Cron
	schedules map[string]*businesshours.BusinessHours
	jobs      []job

	runCtx    context.Context
	runCancel context.CancelFunc

	// stateLog throttles the per-schedule state dump; reloads can come in bursts
	// while a config file is being edited.
	stateLog *rate.Limiter

	events *eventbus.Bus[storage.Transition]
	now    func() time.Time
}

// New creates a stopped service. store may be nil.
func New(cfg Config, store storage.Store, log logx.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{
		cfg:       cfg,
		store:     store,
		log:       log,
		parser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		schedules: map[string]*businesshours.BusinessHours{},
		stateLog:  rate.NewLimiter(rate.Every(10*time.Second), 1),
		events:    eventbus.New[storage.Transition](),
		now:       time.Now,
	}
}

// Apply replaces the watched schedules and settings. Running services
// re-register every job; a location change restarts the cron runner.
func (s *Service) Apply(cfg Config, schedules map[string]*businesshours.BusinessHours) error {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	jobs, err := s.buildJobs(schedules)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	restart := s.c != nil && cfg.Location.String() != s.cfg.Location.String()
	s.cfg = cfg
	s.schedules = schedules

	if s.c == nil {
		s.jobs = jobs
		return nil
	}
	if restart {
		// Do not wait for in-flight jobs here: they take s.mu in fire().
		s.c.Stop()
		s.c = cron.New(cron.WithLocation(s.cfg.Location))
		s.c.Start()
	} else {
		for _, j := range s.jobs {
			s.c.Remove(j.entryID)
		}
	}
	s.jobs = jobs
	s.registerLocked()
	if s.stateLog.Allow() {
		s.logStatesLocked()
	}
	return nil
}

// buildJobs derives one job per opening and closing cron of every schedule.
func (s *Service) buildJobs(schedules map[string]*businesshours.BusinessHours) ([]job, error) {
	names := make([]string, 0, len(schedules))
	for name := range schedules {
		names = append(names, name)
	}
	sort.Strings(names)

	var jobs []job
	for _, name := range names {
		bh := schedules[name]
		for _, set := range []struct {
			kind  storage.Kind
			specs []string
		}{
			{storage.Opened, bh.OpeningCrons()},
			{storage.Closed, bh.ClosingCrons()},
		} {
			for _, spec := range set.specs {
				sched, err := s.parser.Parse(spec)
				if err != nil {
					return nil, fmt.Errorf("schedule %s: cron %q: %w", name, spec, err)
				}
				jobs = append(jobs, job{schedule: name, kind: set.kind, spec: spec, sched: sched})
			}
		}
	}
	return jobs, nil
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.c = cron.New(cron.WithLocation(s.cfg.Location))
	s.registerLocked()
	s.c.Start()
	s.stateLog.Allow()
	s.logStatesLocked()
	s.log.Info("watch started", logx.String("tz", s.cfg.Location.String()), logx.Int("schedules", len(s.schedules)), logx.Int("jobs", len(s.jobs)))
}

// Stop halts the cron runner and waits for running jobs, or until ctx is done.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c, cancel := s.c, s.runCancel
	s.c, s.runCancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	if cancel != nil {
		cancel()
	}
	s.log.Info("watch stopped")
}

func (s *Service) registerLocked() {
	preview := s.cfg.Preview
	for i := range s.jobs {
		j := &s.jobs[i]
		name, kind, spec := j.schedule, j.kind, j.spec
		j.entryID = s.c.Schedule(j.sched, cron.FuncJob(func() { s.fire(name, kind, spec) }))
		if preview > 0 && s.log.Enabled(logx.LevelDebug) {
			s.log.Debug("transition job registered",
				logx.String("schedule", name),
				logx.String("kind", string(kind)),
				logx.String("cron", spec),
				logx.Strs("next", nextRuns(j.sched, s.now().In(s.cfg.Location), preview)),
			)
		}
	}
}

func nextRuns(sched cron.Schedule, from time.Time, n int) []string {
	out := make([]string, 0, n)
	t := from
	for i := 0; i < n; i++ {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		out = append(out, t.Format(time.RFC3339))
	}
	return out
}

// fire is the body of every cron job.
func (s *Service) fire(name string, kind storage.Kind, spec string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in transition job", logx.String("schedule", name), logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()

	s.mu.Lock()
	loc, store := s.cfg.Location, s.store
	bh := s.schedules[name]
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	t := storage.Transition{At: s.now().In(loc), Schedule: name, Kind: kind, Cron: spec}
	fields := []logx.Field{logx.String("schedule", name), logx.String("cron", spec), logx.Time("at", t.At)}
	if bh != nil {
		if kind == storage.Opened {
			fields = append(fields, logx.Time("closes_at", bh.NextClosing(t.At)))
		} else {
			fields = append(fields, logx.Time("opens_at", bh.NextOpening(t.At)))
		}
	}
	s.log.Info("schedule "+string(kind), fields...)

	if store != nil {
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := store.AppendTransition(sctx, t)
		cancel()
		if err != nil {
			s.log.Warn("transition not recorded", logx.String("schedule", name), logx.Err(err))
		}
	}
	s.events.Publish(t)
}

// Subscribe streams every fired transition. Slow subscribers miss events.
func (s *Service) Subscribe(buffer int) (<-chan storage.Transition, func()) {
	return s.events.Subscribe(buffer)
}

func (s *Service) logStatesLocked() {
	now := s.now().In(s.cfg.Location)
	names := make([]string, 0, len(s.schedules))
	for name := range s.schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		bh := s.schedules[name]
		fields := []logx.Field{logx.String("schedule", name), logx.Bool("open", bh.IsOpen(now))}
		if !bh.IsAlwaysOpen() {
			fields = append(fields,
				logx.Duration("opens_in", time.Duration(bh.TimeBeforeOpening(now, time.Second))*time.Second),
				logx.Duration("closes_in", time.Duration(bh.TimeBeforeClosing(now, time.Second))*time.Second),
			)
		}
		s.log.Info("schedule state", fields...)
	}
}

// Snapshot lists registered jobs with their next firing, ordered by schedule.
func (s *Service) Snapshot() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().In(s.cfg.Location)
	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, JobInfo{Schedule: j.schedule, Kind: j.kind, Cron: j.spec, Next: j.sched.Next(now)})
	}
	return out
}
