package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/revpipe/internal/metrics"
	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/monetize"
	"github.com/AngelCh415/revpipe/internal/pipeline"
	"github.com/AngelCh415/revpipe/internal/profiles"
	"github.com/AngelCh415/revpipe/internal/ranking"
	"github.com/AngelCh415/revpipe/internal/trends"
	"github.com/AngelCh415/revpipe/internal/utils"
)

type StatusSource interface {
	Status(ctx context.Context) (models.StoreStatus, error)
}

type SiteSource interface {
	Sites(ctx context.Context) (map[string]models.Deployment, error)
}

type Deps struct {
	Profiles   *profiles.Table
	Jobs       *pipeline.Jobs
	Automation *pipeline.Automation
	Store      StatusSource
	Sites      SiteSource
	Trends     *trends.Static
	Tracker    *metrics.Tracker
	Collectors *metrics.Collectors
}

type api struct{ d Deps }

func NewRouter(log *slog.Logger, d Deps) http.Handler {
	a := &api{d: d}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })

	mux.Route("/api", func(r chi.Router) {
		r.Post("/generate-content", a.generateContent)
		r.Get("/jobs/{id}", a.getJob)
		r.Delete("/jobs/{id}", a.cancelJob)
		r.Get("/status", a.status)
		r.Get("/sites", a.sites)
		r.Get("/countries/top", a.topCountries)
		r.Get("/revenue/insights", a.insights)
		r.Post("/keyword-strategy", a.keywordStrategy)
		r.Get("/trending-topics", a.trendingTopics)
		r.Get("/revenue-analytics", a.revenueAnalytics)
		r.Post("/automation/start", a.startAutomation)
		r.Post("/automation/stop", a.stopAutomation)
	})

	if d.Collectors != nil {
		mux.Handle("/metrics", d.Collectors.Handler())
	}
	return mux
}

func (a *api) generateContent(w http.ResponseWriter, r *http.Request) {
	// omitted fields keep their defaults; explicit empty lists stay empty
	req := pipeline.DefaultRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", 400)
		return
	}
	est := ranking.EstimatedPotential(a.d.Profiles, req.TargetCountries)
	job, err := a.d.Jobs.Submit(req, est)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidRequest) {
			http.Error(w, err.Error(), 400)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSONCode(w, 202, map[string]any{
		"message":           "content generation started",
		"job_id":            job.ID,
		"estimated_revenue": est,
		"countries":         req.TargetCountries,
	})
}

func (a *api) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.d.Jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), 404)
		return
	}
	writeJSON(w, job)
}

func (a *api) cancelJob(w http.ResponseWriter, r *http.Request) {
	if err := a.d.Jobs.Cancel(chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), 404)
		return
	}
	writeJSONCode(w, 202, map[string]any{"canceled": true})
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	st, err := a.d.Store.Status(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 502)
		return
	}
	writeJSON(w, map[string]any{
		"total_posts":            st.TotalPosts,
		"per_country_counts":     st.PerCountryCounts,
		"total_revenue":          a.d.Tracker.TotalRevenue(),
		"active_countries":       a.d.Profiles.Len(),
		"automation_running":     a.d.Automation.Running(),
		"running_jobs":           a.d.Jobs.Running(),
		"top_performing_country": a.d.Tracker.TopCountry(),
	})
}

func (a *api) sites(w http.ResponseWriter, r *http.Request) {
	if a.d.Sites == nil {
		writeJSON(w, map[string]any{"deployed_sites": map[string]models.Deployment{}})
		return
	}
	sites, err := a.d.Sites.Sites(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 502)
		return
	}
	writeJSON(w, map[string]any{"deployed_sites": sites})
}

func (a *api) topCountries(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", 400)
			return
		}
		limit = n
	}
	writeJSON(w, map[string]any{"top_countries": ranking.Top(a.d.Profiles, limit)})
}

func (a *api) insights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ranking.Insights(a.d.Profiles))
}

type strategyRequest struct {
	Keyword   string   `json:"keyword"`
	Countries []string `json:"countries"`
}

func (a *api) keywordStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", 400)
		return
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" || len(req.Countries) == 0 {
		http.Error(w, "keyword and countries are required", 400)
		return
	}
	writeJSON(w, map[string]any{
		"keyword":    req.Keyword,
		"strategies": monetize.Strategies(a.d.Profiles, req.Keyword, req.Countries),
	})
}

func (a *api) trendingTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"trending_topics": a.d.Trends.Top(trends.MaxTopics)})
}

func (a *api) revenueAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.d.Tracker.Query(r.URL.Query()))
}

func (a *api) startAutomation(w http.ResponseWriter, r *http.Request) {
	if err := a.d.Automation.Start(); err != nil {
		http.Error(w, err.Error(), 409)
		return
	}
	writeJSONCode(w, 202, map[string]any{"automation_running": true})
}

func (a *api) stopAutomation(w http.ResponseWriter, r *http.Request) {
	a.d.Automation.Stop()
	writeJSON(w, map[string]any{"automation_running": false})
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONCode(w, 200, v) }

func writeJSONCode(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
