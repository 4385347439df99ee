package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/profiles"
	"github.com/AngelCh415/revpipe/internal/ranking"
)

const (
	DefaultAutomationInterval = 24 * time.Hour
	automationCountries       = 3
)

var ErrAutomationRunning = errors.New("automation already running")

// Submitter accepts background runs; *Jobs implements it.
type Submitter interface {
	Submit(req Request, estimatedRevenue float64) (Job, error)
}

// KeywordSource supplies the keywords of an automated run.
type KeywordSource interface {
	Keywords(n int) []string
}

// Automation submits one run per interval over the trending keywords and
// the top ranked countries.
type Automation struct {
	jobs     Submitter
	keywords KeywordSource
	profiles *profiles.Table
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAutomation(jobs Submitter, keywords KeywordSource, t *profiles.Table, interval time.Duration, log *slog.Logger) *Automation {
	if interval <= 0 {
		interval = DefaultAutomationInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Automation{jobs: jobs, keywords: keywords, profiles: t, interval: interval, log: log}
}

// Request is the run submitted on each tick.
func (a *Automation) Request() Request {
	ranked := ranking.Rank(a.profiles)
	if len(ranked) > automationCountries {
		ranked = ranked[:automationCountries]
	}
	return Request{
		Keywords:          a.keywords.Keywords(0),
		TargetCountries:   ranked,
		ContentTypes:      []string{"guide", "review"},
		MonetizationLevel: models.LevelHigh,
		AutoPublish:       true,
		SEOOptimization:   true,
	}
}

func (a *Automation) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return ErrAutomationRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.loop(ctx, a.done)
	a.log.Info("automation started", slog.Duration("interval", a.interval))
	return nil
}

// Stop halts the scheduler. Jobs already submitted keep running.
func (a *Automation) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.log.Info("automation stopped")
}

func (a *Automation) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

func (a *Automation) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		req := a.Request()
		est := ranking.EstimatedPotential(a.profiles, req.TargetCountries)
		if job, err := a.jobs.Submit(req, est); err != nil {
			a.log.Error("automation submit failed", slog.String("err", err.Error()))
		} else {
			a.log.Info("automation cycle submitted",
				slog.String("job_id", job.ID),
				slog.Int("keywords", len(req.Keywords)),
				slog.Int("countries", len(req.TargetCountries)))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
