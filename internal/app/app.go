package app

import (
	"context"
	"fmt"
	"sync"

	"businesshours/internal/config"
	"businesshours/internal/storage"
	"businesshours/internal/watch"
	"businesshours/pkg/businesshours"
	logx "businesshours/pkg/logx"
	"businesshours/pkg/systemd"
)

// App wires the config manager, logging, storage and the watch daemon.
type App struct {
	cfgm *config.Manager

	log   logx.Logger
	logs  *logx.Service
	store storage.Store
	watch *watch.Service

	mu      sync.Mutex
	enabled bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.NewService(cfg.LogConfig())
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	sc, err := cfg.StorageOptions()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	if store != nil {
		log.Info("storage enabled", logx.String("driver", sc.Driver))
	}

	wcfg, schedules, err := mapWatch(cfg)
	if err != nil {
		return nil, err
	}
	w := watch.New(wcfg, store, log.With(logx.String("comp", "watch")))
	if err := w.Apply(wcfg, schedules); err != nil {
		return nil, err
	}

	return &App{
		cfgm:    cfgm,
		log:     log.With(logx.String("comp", "app")),
		logs:    logSvc,
		store:   store,
		watch:   w,
		enabled: cfg.Watch.Enabled,
	}, nil
}

func mapWatch(cfg *config.Config) (watch.Config, map[string]*businesshours.BusinessHours, error) {
	loc, err := cfg.Watch.Location()
	if err != nil {
		return watch.Config{}, nil, fmt.Errorf("watch.timezone: %w", err)
	}
	schedules, err := config.Compile(cfg)
	if err != nil {
		return watch.Config{}, nil, err
	}
	return watch.Config{Location: loc, Preview: cfg.Watch.PreviewOrDefault()}, schedules, nil
}

func (a *App) Watch() *watch.Service { return a.watch }

// Start runs the config watcher and, when watch.enabled, the cron daemon.
// Config reloads are applied live.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	updates := a.cfgm.Subscribe(1)
	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		if err := systemd.Watchdog(ctx); err != nil {
			a.log.Warn("systemd watchdog stopped", logx.Err(err))
		}
	}()
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(ctx); err != nil {
			a.log.Error("config watch failed", logx.Err(err))
		}
	}()
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(updates)
		prev := a.cfgm.Get()
		for {
			select {
			case <-ctx.Done():
				return
			case cfg := <-updates:
				a.reload(ctx, prev, cfg)
				prev = cfg
			}
		}
	}()

	a.mu.Lock()
	enabled := a.enabled
	a.mu.Unlock()
	if enabled {
		a.watch.Start(ctx)
	} else {
		a.log.Warn("watch disabled in config; only tracking reloads")
	}
	a.notifyReady()
	return nil
}

func (a *App) notifyReady() {
	status := fmt.Sprintf("watching %d jobs", len(a.watch.Snapshot()))
	if sent, err := systemd.Ready(status); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify ready", logx.String("status", status))
	}
}

func (a *App) reload(ctx context.Context, prev, cfg *config.Config) {
	sections, sc, fields := config.SummarizeChange(prev, cfg)
	if len(sections) == 0 {
		return
	}
	a.log.Info("config change applied", append(fields, logx.Strs("sections", sections))...)
	_, _ = systemd.Reloading()
	defer a.notifyReady()

	a.logs.Apply(cfg.LogConfig())
	if prev != nil && cfg.Storage != nil && (prev.Storage == nil || *prev.Storage != *cfg.Storage) {
		a.log.Warn("storage changes take effect after restart")
	}

	wcfg, schedules, err := mapWatch(cfg)
	if err != nil {
		a.log.Error("watch config rejected", logx.Err(err))
		return
	}
	if err := a.watch.Apply(wcfg, schedules); err != nil {
		a.log.Error("watch reload failed", logx.Err(err))
		return
	}

	a.mu.Lock()
	was := a.enabled
	a.enabled = cfg.Watch.Enabled
	a.mu.Unlock()
	switch {
	case cfg.Watch.Enabled && !was:
		a.watch.Start(ctx)
	case !cfg.Watch.Enabled && was:
		a.watch.Stop(ctx)
	}
	if !sc.Empty() {
		a.log.Debug("schedules re-registered", logx.Int("jobs", len(a.watch.Snapshot())))
	}
}

// Stop halts the daemon and releases the store and log file.
func (a *App) Stop(ctx context.Context) error {
	_, _ = systemd.Stopping()
	if a.cancel != nil {
		a.cancel()
	}
	a.watch.Stop(ctx)
	a.wg.Wait()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("store close failed", logx.Err(err))
		}
	}
	a.log.Info("stopped")
	return a.logs.Close()
}
