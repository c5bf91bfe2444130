// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_processed_total",
			Help: "Total number of jobs processed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ProductsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_evaluated_total",
			Help: "Total number of products run through the eligibility gate",
		},
		[]string{"category"},
	)

	ProductsEligible = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_eligible_total",
			Help: "Total number of products that passed eligibility",
		},
		[]string{"category"},
	)

	MatchScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of match scores for eligible products",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"category"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Catalog cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	ReferralClicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_clicks_total",
			Help: "Total number of recorded outbound referral clicks",
		},
		[]string{"lender"},
	)
)
