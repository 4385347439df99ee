// Package pipeline walks the country × keyword × content-type matrix and
// drives every unit through generation, SEO shaping, monetization, design
// rendering, persistence and optional publishing.
//
// Units are processed one at a time per run. A failing unit is recorded and
// skipped; it never stops the country or the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AngelCh415/revpipe/internal/design"
	"github.com/AngelCh415/revpipe/internal/events"
	"github.com/AngelCh415/revpipe/internal/generate"
	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/monetize"
	"github.com/AngelCh415/revpipe/internal/profiles"
	"github.com/AngelCh415/revpipe/internal/ranking"
	"github.com/AngelCh415/revpipe/internal/telemetry"
)

type Formatter interface {
	Format(c models.GeneratedContent, country string, p models.CountryProfile) (models.GeneratedContent, error)
}

type Renderer interface {
	Render(c models.GeneratedContent, cfg models.DesignConfig) (string, error)
}

type Saver interface {
	Save(ctx context.Context, rec models.ContentRecord) error
}

type Publisher interface {
	Publish(ctx context.Context, html, country string) models.Deployment
}

// Observer sees every finished unit, successful or not.
type Observer interface {
	ObserveUnit(r models.UnitResult)
}

type Deps struct {
	Profiles  *profiles.Table
	Generator generate.Generator
	Formatter Formatter
	Monetizer *monetize.Engine
	Renderer  Renderer
	Store     Saver
	Publisher Publisher
	Events    events.Emitter
	Observers []Observer
	Throttle  Throttle
	Log       *slog.Logger
}

type Request struct {
	Keywords          []string                 `json:"keywords"`
	TargetCountries   []string                 `json:"target_countries"`
	ContentTypes      []string                 `json:"content_types"`
	MonetizationLevel models.MonetizationLevel `json:"monetization_level"`
	AutoPublish       bool                     `json:"auto_publish"`
	SEOOptimization   bool                     `json:"seo_optimization"`
}

// DefaultRequest is the request an API caller gets for every field it omits.
// Keywords have no default.
func DefaultRequest() Request {
	return Request{
		TargetCountries:   []string{"USA", "Germany", "UK", "Canada", "Singapore"},
		ContentTypes:      []string{"review", "guide", "comparison", "news"},
		MonetizationLevel: models.LevelHigh,
		AutoPublish:       true,
		SEOOptimization:   true,
	}
}

func (r Request) Validate() error {
	if r.MonetizationLevel != "" && !r.MonetizationLevel.Valid() {
		return fmt.Errorf("%w: monetization_level %q", ErrInvalidRequest, r.MonetizationLevel)
	}
	return nil
}

// Report folds the unit results of one run.
type Report struct {
	RunID string `json:"run_id"`
	models.Summary
	Failed     int                 `json:"failed"`
	Canceled   bool                `json:"canceled"`
	Results    []models.UnitResult `json:"results"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

func (r *Report) add(res models.UnitResult) {
	r.Results = append(r.Results, res)
	if !res.OK() {
		r.Failed++
		return
	}
	r.TotalGenerated++
	r.PerCountryCounts[res.Unit.Country]++
}

type Orchestrator struct {
	d      Deps
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

func New(d Deps) *Orchestrator {
	if d.Monetizer == nil {
		d.Monetizer = monetize.NewEngine(0)
	}
	if d.Throttle == nil {
		d.Throttle = FixedDelay{Delay: DefaultDelay}
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Orchestrator{d: d, tracer: telemetry.Tracer(), now: time.Now, newID: uuid.NewString}
}

type pair struct{ keyword, contentType string }

func pairs(keywords, types []string) []pair {
	out := make([]pair, 0, len(keywords)*len(types))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		for _, t := range types {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			out = append(out, pair{k, t})
		}
	}
	return out
}

// Run processes every unit of req. The returned error is non-nil only for an
// invalid request or when ctx ends the run early; in the latter case the
// report still holds everything finished before the stop.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Report, error) {
	rep := Report{
		RunID:     o.newID(),
		Summary:   models.Summary{PerCountryCounts: map[string]int{}, Countries: []string{}},
		Results:   []models.UnitResult{},
		StartedAt: o.now().UTC(),
	}
	if err := req.Validate(); err != nil {
		return rep, err
	}
	level := req.MonetizationLevel
	if level == "" {
		level = models.LevelHigh
	}

	countries := ranking.FilterAndOrder(ranking.Rank(o.d.Profiles), req.TargetCountries)
	work := pairs(req.Keywords, req.ContentTypes)
	log := o.d.Log.With(slog.String("run_id", rep.RunID))
	log.Info("run started",
		slog.Int("keywords", len(req.Keywords)),
		slog.Int("countries", len(countries)),
		slog.Int("units", len(countries)*len(work)))

	var runErr error
	if len(work) > 0 {
	countryLoop:
		for _, country := range countries {
			profile, _ := o.d.Profiles.Get(country)
			cfg := design.Config(country, profile)
			rep.Countries = append(rep.Countries, country)
			rep.PerCountryCounts[country] = 0
			log.Info("country started", slog.String("country", country), slog.Int("units", len(work)))

			for i, w := range work {
				if i > 0 {
					if err := o.d.Throttle.Wait(ctx); err != nil {
						runErr = err
						break countryLoop
					}
				}
				if err := ctx.Err(); err != nil {
					runErr = err
					break countryLoop
				}
				u := models.ContentUnit{Keyword: w.keyword, Country: country, ContentType: w.contentType, MonetizationLevel: level}
				// in-flight units finish even if the run is canceled meanwhile
				res := o.processUnit(context.WithoutCancel(ctx), u, profile, cfg, req)
				rep.add(res)
				o.finish(ctx, log, rep.RunID, res)
			}
		}
	}

	rep.Canceled = runErr != nil
	rep.FinishedAt = o.now().UTC()
	summary := rep.Summary
	o.emit(context.WithoutCancel(ctx), log, events.Event{Type: events.TypeRunCompleted, RunID: rep.RunID, Summary: &summary, OccurredAt: rep.FinishedAt})
	log.Info("run completed",
		slog.Int("total_generated", rep.TotalGenerated),
		slog.Int("failed", rep.Failed),
		slog.Bool("canceled", rep.Canceled),
		slog.Duration("elapsed", rep.FinishedAt.Sub(rep.StartedAt)))
	return rep, runErr
}

func (o *Orchestrator) processUnit(ctx context.Context, u models.ContentUnit, p models.CountryProfile, cfg models.DesignConfig, req Request) (res models.UnitResult) {
	start := o.now()
	res.Unit = u
	ctx, span := o.tracer.Start(ctx, "pipeline.unit", trace.WithAttributes(
		attribute.String("country", u.Country),
		attribute.String("keyword", u.Keyword),
		attribute.String("content_type", u.ContentType),
	))
	defer func() {
		res.Duration = o.now().Sub(start)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Stage)
		}
		span.End()
	}()

	fail := func(stage string, err error) models.UnitResult {
		res.Stage = stage
		res.Err = &StageError{Stage: stage, Err: err}
		res.Error = res.Err.Error()
		return res
	}

	var content models.GeneratedContent
	err := o.stage(ctx, StageGenerate, func(ctx context.Context) error {
		var err error
		content, err = o.d.Generator.Generate(ctx, u, p)
		return err
	})
	if err != nil {
		return fail(StageGenerate, err)
	}
	// generators that skip detection still get spots for their body
	if content.Spots == nil {
		content.Spots = monetize.Detect(content.Body)
	}
	if content.Metadata.Keyword == "" {
		content.Metadata.Keyword = u.Keyword
	}

	if req.SEOOptimization && o.d.Formatter != nil {
		_ = o.stage(ctx, StageFormat, func(context.Context) error {
			formatted, err := o.d.Formatter.Format(content, u.Country, p)
			if err != nil {
				o.d.Log.Warn("seo formatting skipped",
					slog.String("country", u.Country),
					slog.String("keyword", u.Keyword),
					slog.String("err", (&StageError{Stage: StageFormat, Err: err}).Error()))
				return err
			}
			content = formatted
			return nil
		})
	}

	_ = o.stage(ctx, StageMonetize, func(context.Context) error {
		content = o.d.Monetizer.Apply(content, p)
		return nil
	})
	res.Prediction = content.Prediction

	var html string
	err = o.stage(ctx, StageRender, func(context.Context) error {
		var err error
		html, err = o.d.Renderer.Render(content, cfg)
		return err
	})
	if err != nil {
		return fail(StageRender, err)
	}

	rec := models.ContentRecord{ID: o.newID(), Unit: u, Content: content, HTML: html, CreatedAt: o.now().UTC()}
	err = o.stage(ctx, StagePersist, func(ctx context.Context) error {
		return o.d.Store.Save(ctx, rec)
	})
	if err != nil {
		return fail(StagePersist, err)
	}
	res.RecordID = rec.ID

	if req.AutoPublish && o.d.Publisher != nil {
		_ = o.stage(ctx, StagePublish, func(ctx context.Context) error {
			d := o.d.Publisher.Publish(ctx, html, u.Country)
			res.Deployment = &d
			if d.Status == models.DeployFailed {
				o.d.Log.Warn("publish failed",
					slog.String("country", u.Country),
					slog.String("keyword", u.Keyword),
					slog.String("err", d.Error))
				return &StageError{Stage: StagePublish, Err: errors.New(d.Error)}
			}
			return nil
		})
	}
	return res
}

func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "pipeline.stage."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
		return err
	}
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, log *slog.Logger, runID string, res models.UnitResult) {
	for _, ob := range o.d.Observers {
		ob.ObserveUnit(res)
	}
	unit := res.Unit
	ev := events.Event{RunID: runID, Unit: &unit, OccurredAt: o.now().UTC()}
	attrs := []any{
		slog.String("country", unit.Country),
		slog.String("keyword", unit.Keyword),
		slog.String("content_type", unit.ContentType),
		slog.Duration("duration", res.Duration),
	}
	if res.OK() {
		ev.Type = events.TypeUnitCompleted
		ev.RecordID = res.RecordID
		ev.Prediction = res.Prediction
		log.Info("unit completed", append(attrs, slog.String("record_id", res.RecordID))...)
	} else {
		ev.Type = events.TypeUnitFailed
		ev.Stage = res.Stage
		ev.Error = res.Err.Error()
		log.Error("unit failed", append(attrs, slog.String("stage", res.Stage), slog.String("err", res.Err.Error()))...)
	}
	o.emit(context.WithoutCancel(ctx), log, ev)
}

func (o *Orchestrator) emit(ctx context.Context, log *slog.Logger, ev events.Event) {
	if err := o.d.Events.Emit(ctx, ev); err != nil {
		log.Warn("event emit failed", slog.String("type", ev.Type), slog.String("err", err.Error()))
	}
}
