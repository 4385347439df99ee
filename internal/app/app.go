// Package app wires every collaborator from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AngelCh415/revpipe/internal/config"
	"github.com/AngelCh415/revpipe/internal/design"
	"github.com/AngelCh415/revpipe/internal/events"
	"github.com/AngelCh415/revpipe/internal/generate"
	"github.com/AngelCh415/revpipe/internal/metrics"
	"github.com/AngelCh415/revpipe/internal/monetize"
	"github.com/AngelCh415/revpipe/internal/pipeline"
	"github.com/AngelCh415/revpipe/internal/profiles"
	"github.com/AngelCh415/revpipe/internal/publish"
	"github.com/AngelCh415/revpipe/internal/seo"
	"github.com/AngelCh415/revpipe/internal/store"
	"github.com/AngelCh415/revpipe/internal/telemetry"
	"github.com/AngelCh415/revpipe/internal/trends"
)

const serviceName = "revpipe"

type Runtime struct {
	Config       config.Config
	Log          *slog.Logger
	Profiles     *profiles.Table
	Store        store.Store
	Publisher    *publish.VercelPublisher
	Orchestrator *pipeline.Orchestrator
	Jobs         *pipeline.Jobs
	Automation   *pipeline.Automation
	Trends       *trends.Static
	Collectors   *metrics.Collectors
	Tracker      *metrics.Tracker

	closers []func(context.Context) error
}

// New builds the runtime. On error every resource opened so far is closed.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *Runtime, err error) {
	rt := &Runtime{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
		}
	}()

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	rt.closers = append(rt.closers, shutdown)

	if cfg.ProfilesPath != "" {
		if rt.Profiles, err = profiles.Load(cfg.ProfilesPath); err != nil {
			return nil, err
		}
	} else {
		rt.Profiles = profiles.Embedded()
	}

	httpClient := generate.NewHTTPClient(cfg.HTTPTimeout)
	gen, err := generator(cfg, httpClient, log)
	if err != nil {
		return nil, err
	}

	if rt.Store, err = store.Open(ctx, cfg.StoreDriver, cfg.SQLitePath, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	rt.closers = append(rt.closers, func(context.Context) error { return rt.Store.Close() })

	var registry publish.Registry = publish.NewMemoryRegistry()
	if cfg.RedisURL != "" {
		rdb, err := publish.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		rt.closers = append(rt.closers, func(context.Context) error { return rdb.Close() })
		registry = publish.NewRedisRegistry(rdb)
	}
	rt.Publisher = publish.NewVercel(publish.VercelConfig{Token: cfg.VercelToken, APIURL: cfg.VercelAPIURL}, httpClient, registry, log)

	var emitter events.Emitter = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := events.NewKafkaEmitter(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		emitter = k
		rt.closers = append(rt.closers, func(context.Context) error { return k.Close() })
	}

	throttle, err := pipeline.NewThrottle(cfg.ThrottleMode, cfg.ThrottleDelay)
	if err != nil {
		return nil, err
	}

	rt.Collectors = metrics.NewCollectors()
	rt.Tracker = metrics.NewTracker()
	rt.Trends = trends.NewStatic()
	rt.Orchestrator = pipeline.New(pipeline.Deps{
		Profiles:  rt.Profiles,
		Generator: gen,
		Formatter: seo.NewFormatter(),
		Monetizer: monetize.NewEngine(cfg.AssumedViews),
		Renderer:  design.NewRenderer(),
		Store:     rt.Store,
		Publisher: rt.Publisher,
		Events:    emitter,
		Observers: []pipeline.Observer{rt.Collectors, rt.Tracker},
		Throttle:  throttle,
		Log:       log,
	})
	rt.Jobs = pipeline.NewJobs(rt.Orchestrator, log)
	rt.Jobs.SetRetention(cfg.JobRetention)
	rt.Automation = pipeline.NewAutomation(rt.Jobs, rt.Trends, rt.Profiles, cfg.AutomationInterval, log)
	return rt, nil
}

func generator(cfg config.Config, c generate.HTTPClient, log *slog.Logger) (generate.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, using simulated content")
		return generate.NewSimulator(uint64(time.Now().UnixNano())), nil
	}
	return generate.NewGemini(generate.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	}, c)
}

// Close stops automation and jobs, then releases resources in reverse
// order of acquisition.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Automation != nil {
		rt.Automation.Stop()
	}
	if rt.Jobs != nil {
		if err := rt.Jobs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("jobs: %w", err))
		}
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
