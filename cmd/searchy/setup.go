package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/urfave/cli/v3"

	"searchy/internal/config"
	"searchy/internal/domain"
	"searchy/internal/eventbus"
	"searchy/internal/images"
	"searchy/internal/search"
	"searchy/internal/telemetry"
)

// app holds everything a command needs once flags and config are resolved
type app struct {
	cfg     *config.Config
	cfgPath string
	bus     eventbus.EventBus
	backend search.Backend
	images  *images.CachingProvider
	logFile *os.File

	stopTracing func(context.Context) error
}

func (a *app) Close() {
	if a.stopTracing != nil {
		if err := a.stopTracing(context.Background()); err != nil {
			log.Printf("Could not flush traces: %v", err)
		}
	}
	a.bus.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// setup loads the env file and configuration, applies flag overrides, points
// the log at a file and builds the bus, backend and image provider
func setup(cmd *cli.Command) (*app, error) {
	if err := config.LoadEnvFile(cmd.String("env")); err != nil {
		return nil, err
	}

	bus := eventbus.New()
	a := &app{bus: bus}

	svc := config.NewConfigService(bus)
	if path := cmd.String("config"); path != "" {
		svc = config.NewConfigServiceAt(path, bus)
	}
	a.cfgPath = svc.Path()

	cfg, err := svc.Load()
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("load config %s: %w", svc.Path(), err)
	}
	if cmd.IsSet("backend") {
		cfg.Search.Backend = cmd.String("backend")
	}
	if cmd.IsSet("debounce") {
		cfg.Search.Debounce = cmd.Duration("debounce")
	}
	if cmd.IsSet("log-file") {
		cfg.Log.File = cmd.String("log-file")
	}
	if cmd.Bool("trace") {
		cfg.Log.Trace = true
	}
	if cmd.Bool("no-transition") {
		cfg.Transition.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		bus.Close()
		return nil, err
	}
	a.cfg = cfg

	if cfg.Log.File != "" {
		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Could not open log file: %v", err)
		} else {
			a.logFile = logFile
			log.SetOutput(logFile)
		}
	}
	subscribeLogging(bus)
	if cfg.Log.Trace {
		a.stopTracing = telemetry.Install(nil)
	}

	backend, err := search.FromConfig(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.backend = backend

	fetcher := images.RoutingFetcher{
		Generated: images.GeneratedFetcher{},
		Remote:    images.HTTPFetcher{Client: &http.Client{Timeout: cfg.Images.Timeout}},
	}
	provider, err := images.NewCachingProvider(fetcher, cfg.Images.CacheSize, cfg.Images.Timeout)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.images = provider

	log.Printf("Searchy: backend=%s debounce=%s config=%s", cfg.Search.Backend, cfg.Search.Debounce, a.cfgPath)
	return a, nil
}

// subscribeLogging records the events worth finding in the log afterwards
func subscribeLogging(bus eventbus.EventBus) {
	bus.Subscribe(eventbus.EventSearchFailed, func(e eventbus.DomainEvent) {
		if ev, ok := e.(domain.SearchFailedEvent); ok {
			log.Printf("Event: search #%d %q failed: %v", ev.Query.Seq, ev.Query.Text, ev.Err)
		}
	})
	bus.Subscribe(eventbus.EventImageFetchFailed, func(e eventbus.DomainEvent) {
		if ev, ok := e.(domain.ImageFetchFailedEvent); ok {
			log.Printf("Event: artwork %s failed: %v", ev.ImageID, ev.Err)
		}
	})
	bus.Subscribe(eventbus.EventTransitionFinished, func(e eventbus.DomainEvent) {
		if ev, ok := e.(domain.TransitionFinishedEvent); ok {
			log.Printf("Event: %s transition %s %s (degraded=%v)", ev.Direction, ev.ID, ev.State, ev.Degraded)
		}
	})
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if ev, ok := e.(domain.ConfigSavedEvent); ok {
			log.Printf("Event: wrote default config to %s", ev.Path)
		}
	})
}
