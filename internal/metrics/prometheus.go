package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/revpipe/internal/models"
)

type Collectors struct {
	reg              *prometheus.Registry
	units            *prometheus.CounterVec
	stageFailures    *prometheus.CounterVec
	unitDuration     *prometheus.HistogramVec
	predictedRevenue *prometheus.GaugeVec
}

func NewCollectors() *Collectors {
	c := &Collectors{
		reg: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revpipe",
			Name:      "units_total",
			Help:      "Processed content units by country and outcome.",
		}, []string{"country", "outcome"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revpipe",
			Name:      "stage_failures_total",
			Help:      "Unit failures by pipeline stage.",
		}, []string{"stage"}),
		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "revpipe",
			Name:      "unit_duration_seconds",
			Help:      "Wall time of one unit through the stage chain.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"country"}),
		predictedRevenue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "revpipe",
			Name:      "predicted_monthly_revenue",
			Help:      "Latest model-estimated monthly revenue per country.",
		}, []string{"country"}),
	}
	c.reg.MustRegister(
		c.units, c.stageFailures, c.unitDuration, c.predictedRevenue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collectors) ObserveUnit(r models.UnitResult) {
	country := r.Unit.Country
	c.unitDuration.WithLabelValues(country).Observe(r.Duration.Seconds())
	if !r.OK() {
		c.units.WithLabelValues(country, "failed").Inc()
		c.stageFailures.WithLabelValues(r.Stage).Inc()
		return
	}
	c.units.WithLabelValues(country, "ok").Inc()
	if r.Prediction != nil {
		c.predictedRevenue.WithLabelValues(country).Set(r.Prediction.TotalMonthlyRevenue)
	}
}

func (c *Collectors) Registry() *prometheus.Registry { return c.reg }

func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
