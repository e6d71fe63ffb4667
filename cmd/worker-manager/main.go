// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"crew-workers/internal/common/aws"
	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/config"
	"crew-workers/internal/common/database"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/crew/availability"
	"crew-workers/internal/crew/balancing"
	"crew-workers/internal/crew/cache"
	"crew-workers/internal/crew/directory"
	"crew-workers/internal/crew/notify"
	"crew-workers/internal/crew/planner"
	"crew-workers/internal/crew/scoring"
	"crew-workers/internal/crew/workload"

	autoassign "crew-workers/internal/workers/crew/crew-auto-assign"
	balance "crew-workers/internal/workers/crew/crew-balance-workload"
	calcworkload "crew-workers/internal/workers/crew/crew-calculate-workload"
	confirm "crew-workers/internal/workers/crew/crew-confirm-assignment"
	manualassign "crew-workers/internal/workers/crew/crew-manual-assign"
	overloaded "crew-workers/internal/workers/crew/crew-overloaded-report"
	suggest "crew-workers/internal/workers/crew/crew-suggest"
	distribution "crew-workers/internal/workers/crew/crew-workload-distribution"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting crew worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	backends := map[string]database.Pinger{"postgres": pg}

	var crewCache *cache.Cache
	if cfg.Crew.CacheTTL > 0 {
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		backends["redis"] = rdb
		crewCache = cache.New(rdb.Client, cfg.Crew.CacheTTLDuration(), log)
		zapLog.Info("Redis cache enabled", zap.Duration("ttl", cfg.Crew.CacheTTLDuration()))
	}

	// --- Crew core ---
	policy := workload.Policy{
		OverloadThreshold:     cfg.Crew.Policy.OverloadThreshold,
		UnderutilizationRatio: cfg.Crew.Policy.UnderutilizationRatio,
		StandardWeekHours:     cfg.Crew.Policy.StandardWeekHours,
	}
	var ledgerOpts []workload.Option
	var assignmentOpts []assignment.Option
	if crewCache != nil {
		ledgerOpts = append(ledgerOpts, workload.WithInvalidator(crewCache))
		assignmentOpts = append(assignmentOpts, assignment.WithInvalidator(crewCache, workload.WeekStart))
	}
	ledger := workload.NewLedger(workload.NewPostgresStore(pg.DB), policy, log, ledgerOpts...)
	assignments := assignment.NewService(assignment.NewPostgresStore(pg.DB), log, assignmentOpts...)

	crewDirectory := directory.NewPostgres(pg.DB)
	var pool planner.CandidatePool = crewDirectory
	if cfg.Crew.CandidateSource == config.CandidateSourceElasticsearch {
		es, err := database.NewElasticsearch(ctx, cfg.Database.Elasticsearch, nil)
		if err != nil {
			zapLog.Fatal("elasticsearch connection failed", zap.Error(err))
		}
		backends["elasticsearch"] = es
		pool = directory.NewSearchPool(es.Client, cfg.Crew.CandidateIndex, directory.DefaultPoolSize)
		zapLog.Info("Candidate pool served from Elasticsearch", zap.String("index", cfg.Crew.CandidateIndex))
	}

	gate := availability.NewGate(crewDirectory, ledger)
	scorer := scoring.NewScorer(gate, ledger, scoring.DefaultWeights())
	reporter := balancing.NewReporter(ledger, crewDirectory, log)

	plannerOpts := []planner.Option{planner.WithScoringWorkers(cfg.Crew.ScoringWorkers)}
	var reportSender balance.ReportSender
	if cfg.Notifications.SNS.Enabled || cfg.Notifications.SES.Enabled {
		clients, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws clients failed", zap.Error(err))
		}
		var snsClient notify.SNSService
		var sesClient notify.SESService
		if cfg.Notifications.SNS.Enabled {
			snsClient = clients.SNS
		}
		if cfg.Notifications.SES.Enabled {
			sesClient = clients.SES
		}
		notifier := notify.New(snsClient, sesClient, notify.Config{
			TopicARN:         cfg.Notifications.SNS.TopicARN,
			FromEmail:        cfg.Notifications.SES.FromEmail,
			ReportRecipients: cfg.Notifications.SES.ReportRecipients,
		})
		plannerOpts = append(plannerOpts, planner.WithNotifier(notifier))
		reportSender = notifier
		zapLog.Info("Notifications enabled",
			zap.Bool("sns", cfg.Notifications.SNS.Enabled),
			zap.Bool("ses", cfg.Notifications.SES.Enabled),
		)
	}
	crewPlanner := planner.New(pool, scorer, assignments, ledger, log, plannerOpts...)

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		ConnectRetries:         cfg.Camunda.ConnectRetries,
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe connection failed", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")
	backends["zeebe"] = probe(zeebe.HealthCheck)

	registry := camunda.NewRegistry(zeebe.GetClient(), log)
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- Register crew workers ---
	registry.Start(suggest.TaskType, config.GetWorkerConfig(cfg, suggest.TaskType),
		suggest.NewHandler(&suggest.Config{Timeout: timeout(suggest.TaskType)}, crewPlanner, crewCache, log, obs).Handle)

	registry.Start(autoassign.TaskType, config.GetWorkerConfig(cfg, autoassign.TaskType),
		autoassign.NewHandler(&autoassign.Config{Timeout: timeout(autoassign.TaskType)}, crewPlanner, log, obs).Handle)

	registry.Start(manualassign.TaskType, config.GetWorkerConfig(cfg, manualassign.TaskType),
		manualassign.NewHandler(&manualassign.Config{Timeout: timeout(manualassign.TaskType)}, crewPlanner, log, obs).Handle)

	registry.Start(confirm.TaskType, config.GetWorkerConfig(cfg, confirm.TaskType),
		confirm.NewHandler(&confirm.Config{Timeout: timeout(confirm.TaskType)}, assignments, log, obs).Handle)

	registry.Start(calcworkload.TaskType, config.GetWorkerConfig(cfg, calcworkload.TaskType),
		calcworkload.NewHandler(&calcworkload.Config{Timeout: timeout(calcworkload.TaskType)}, ledger, log, obs).Handle)

	registry.Start(balance.TaskType, config.GetWorkerConfig(cfg, balance.TaskType),
		balance.NewHandler(&balance.Config{Timeout: timeout(balance.TaskType)}, reporter, reportSender, crewCache, log, obs).Handle)

	registry.Start(overloaded.TaskType, config.GetWorkerConfig(cfg, overloaded.TaskType),
		overloaded.NewHandler(&overloaded.Config{Timeout: timeout(overloaded.TaskType)}, reporter, log, obs).Handle)

	registry.Start(distribution.TaskType, config.GetWorkerConfig(cfg, distribution.TaskType),
		distribution.NewHandler(&distribution.Config{Timeout: timeout(distribution.TaskType)}, ledger, log, obs).Handle)

	zapLog.Info("Crew workers registered", zap.Strings("running", registry.Running()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if failed := database.CheckAll(r.Context(), backends); len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", failed)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

// probe adapts a health-check method to database.Pinger.
type probe func(ctx context.Context) error

func (p probe) Ping(ctx context.Context) error { return p(ctx) }

func writeStatus(w http.ResponseWriter, code int, status string, failed map[string]string) {
	body := map[string]interface{}{"status": status}
	if len(failed) > 0 {
		body["failed"] = failed
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
