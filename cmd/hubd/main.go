// Command hubd is the hub's composition root: it builds the
// repositories, event bus, services, automation engine, history
// recorder, and integration host, wires them explicitly with no
// globals or DI container, and serves the REST/SSE adapter until
// signaled to shut down.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthhub/hub/internal/automation"
	"github.com/hearthhub/hub/internal/config"
	"github.com/hearthhub/hub/internal/eventbus"
	"github.com/hearthhub/hub/internal/history"
	"github.com/hearthhub/hub/internal/httpapi"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/integration"
	"github.com/hearthhub/hub/internal/repo/memstore"
	"github.com/hearthhub/hub/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := buildLogger(cfg)
	log.Info("starting hub", "http_addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("hub exited with error", "error", err)
		os.Exit(1)
	}
}

func buildLogger(cfg config.HubConfig) hublog.Logger {
	if cfg.LogDriver == "zap" {
		zapLogger, err := hublog.NewZap()
		if err == nil {
			return zapLogger
		}
		slog.Warn("falling back to slog logger", "error", err)
	}
	return hublog.NewSlog(slog.LevelInfo)
}

func run(ctx context.Context, cfg config.HubConfig, log hublog.Logger) error {
	bus := eventbus.New(cfg.BusRingCapacity)

	areaRepo := memstore.NewAreaRepo()
	deviceRepo := memstore.NewDeviceRepo()
	entityRepo := memstore.NewEntityRepo(deviceRepo)
	automationRepo := memstore.NewAutomationRepo()
	eventStore := memstore.NewEventStore()
	historyRepo := memstore.NewEntityHistoryRepo()

	areaSvc := service.NewAreaService(areaRepo)
	deviceSvc := service.NewDeviceService(deviceRepo)
	entitySvc := service.NewEntityService(entityRepo, bus)
	automationSvc := service.NewAutomationService(automationRepo)

	// The event store records every published event for replay/query
	// even though the bus itself does not persist.
	go recordEvents(ctx, bus, eventStore, log)

	engine := automation.NewEngine(automationRepo, entityRepo, bus, log)
	recorder := history.NewRecorder(entityRepo, historyRepo, bus, log)

	go engine.Run(ctx)
	go recorder.Run(ctx)

	retention, err := history.NewRetentionScheduler(historyRepo, cfg.RetentionWindow.Std(), cfg.RetentionCron, log)
	if err != nil {
		return err
	}
	retention.Start()
	defer retention.Stop()

	// Hot-reload the two runtime-adjustable knobs when the config file
	// changes; everything else stays as wired at start.
	if cfg.Source != "" {
		watcher, err := config.NewWatcher(cfg.Source, cfg, log)
		if err != nil {
			return err
		}
		go watcher.Run(ctx.Done(), func(next config.HubConfig) {
			retention.SetWindow(next.RetentionWindow.Std())
			bus.SetCapacity(next.BusRingCapacity)
		})
	}

	host := integration.NewHost(deviceRepo, entityRepo, bus, log)
	host.Register(integration.NewVirtual(defaultVirtualSpecs()...))
	if err := host.Setup(ctx); err != nil {
		return err
	}
	defer host.Teardown(context.Background())

	srv := httpapi.NewServer(httpapi.Deps{
		Entities:    entitySvc,
		Devices:     deviceSvc,
		Areas:       areaSvc,
		Automations: automationSvc,
		History:     historyRepo,
		Events:      eventStore,
		Bus:         bus,
		Host:        host,
		Log:         log,
	})

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: srv}
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// recordEvents subscribes to the bus purely to append every event to
// the durable EventStore, independent of the automation
// engine and history recorder subscribers.
func recordEvents(ctx context.Context, bus *eventbus.Bus, store *memstore.EventStore, log hublog.Logger) {
	sub := bus.Subscribe()
	defer sub.Close()
	for {
		env, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if err := store.Store(ctx, env.Event); err != nil {
			log.Error("store event", "error", err)
		}
	}
}

func defaultVirtualSpecs() []integration.VirtualSpec {
	return []integration.VirtualSpec{
		{
			UniqueID:     "desk-lamp-1",
			Name:         "Desk Lamp",
			Kind:         integration.VirtualLight,
			EntitySlug:   "light.desk",
			FriendlyName: "Desk Lamp",
		},
		{
			UniqueID:     "kitchen-sensor-1",
			Name:         "Kitchen Temperature Sensor",
			Kind:         integration.VirtualSensor,
			EntitySlug:   "sensor.temp_kitchen",
			FriendlyName: "Kitchen Temperature",
		},
	}
}
