// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loanmatch-workers/internal/common/camunda"
	"loanmatch-workers/internal/common/config"
	"loanmatch-workers/internal/common/database"
	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/common/observability"

	// Catalog Workers (3)
	fap "loanmatch-workers/internal/workers/catalog/fetch-active-products"
	rce "loanmatch-workers/internal/workers/catalog/record-click-event"
	sp "loanmatch-workers/internal/workers/catalog/search-products"

	// Evaluation Worker (1)
	ep "loanmatch-workers/internal/workers/evaluation/evaluate-products"

	// Lead Workers (5)
	bru "loanmatch-workers/internal/workers/lead/build-referral-url"
	csr "loanmatch-workers/internal/workers/lead/create-submission-record"
	rr "loanmatch-workers/internal/workers/lead/replace-recommendations"
	sln "loanmatch-workers/internal/workers/lead/send-lead-notification"
	vlp "loanmatch-workers/internal/workers/lead/validate-lead-profile"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("worker-manager", os.Getenv("JAEGER_COLLECTOR_ENDPOINT"))
	if err != nil {
		zapLog.Warn("tracing init failed, continuing without traces", zap.Error(err))
	} else {
		defer tracing.Shutdown()
	}

	ctx := context.Background()

	// --- Init Camunda Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Camunda client initialization")

	if err != nil {
		zapLog.Fatal("camunda client failed after retries", zap.Error(err))
	}
	zapLog.Info("Camunda client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Register ALL 9 Workers ---
	var workers []*camunda.CamundaWorker

	register := func(taskType string, handlerFunc camunda.HandlerFunc) {
		wcfg := cfg.Workers[taskType]
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		w := camunda.NewWorker(
			camundaClient,
			taskType,
			wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond,
			handlerFunc,
			obs,
			zapLog,
		)
		workers = append(workers, w)
	}

	// --- 1. Lead Intake Workers ---
	if cfg.Workers[vlp.TaskType].Enabled {
		handler, err := vlp.NewHandler(
			&vlp.Config{
				Timeout: time.Duration(cfg.Workers[vlp.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create validate-lead-profile handler", zap.Error(err))
		}
		register(vlp.TaskType, handler.Handle)
	}

	if cfg.Workers[csr.TaskType].Enabled {
		handler := csr.NewHandler(
			&csr.Config{
				Timeout: time.Duration(cfg.Workers[csr.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		register(csr.TaskType, handler.Handle)
	}

	if cfg.Workers[rr.TaskType].Enabled {
		handler := rr.NewHandler(
			&rr.Config{
				Timeout: time.Duration(cfg.Workers[rr.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		register(rr.TaskType, handler.Handle)
	}

	if cfg.Workers[bru.TaskType].Enabled {
		handler := bru.NewHandler(
			&bru.Config{
				SubmissionParam: cfg.Referral.SubmissionParam,
				ProductParam:    cfg.Referral.ProductParam,
				DefaultUTM:      cfg.Referral.DefaultUTM,
				Timeout:         time.Duration(cfg.Workers[bru.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		register(bru.TaskType, handler.Handle)
	}

	if cfg.Workers[sln.TaskType].Enabled {
		handler, err := sln.NewHandler(
			&sln.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				OpsEmail:     cfg.Notifications.Email.OpsEmail,
				OpsPhone:     cfg.Notifications.SMS.OpsPhone,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[sln.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-lead-notification handler", zap.Error(err))
		}
		register(sln.TaskType, handler.Handle)
	}

	// --- 2. Catalog Workers ---
	if cfg.Workers[fap.TaskType].Enabled {
		handler := fap.NewHandler(
			&fap.Config{
				CacheKey: cfg.Catalog.CacheKey,
				CacheTTL: time.Duration(cfg.Catalog.CacheTTL) * time.Second,
				Timeout:  time.Duration(cfg.Workers[fap.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, log,
		)
		register(fap.TaskType, handler.Handle)
	}

	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Index:   cfg.Catalog.SearchIndex,
				MaxHits: cfg.Catalog.MaxSearchHits,
				Timeout: time.Duration(cfg.Workers[sp.TaskType].Timeout) * time.Millisecond,
			},
			esClient.Client, log,
		)
		register(sp.TaskType, handler.Handle)
	}

	if cfg.Workers[rce.TaskType].Enabled {
		handler := rce.NewHandler(
			&rce.Config{
				Timeout: time.Duration(cfg.Workers[rce.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		register(rce.TaskType, handler.Handle)
	}

	// --- 3. Evaluation Worker ---
	if cfg.Workers[ep.TaskType].Enabled {
		handler := ep.NewHandler(
			&ep.Config{
				Timeout: time.Duration(cfg.Workers[ep.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		register(ep.TaskType, handler.Handle)
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Camunda client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
