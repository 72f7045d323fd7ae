// Package main provides the live odds scan daemon.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/tennis-edge/internal/config"
	"github.com/yourusername/tennis-edge/internal/database"
	"github.com/yourusername/tennis-edge/internal/dataset"
	"github.com/yourusername/tennis-edge/internal/datasource"
	"github.com/yourusername/tennis-edge/internal/health"
	"github.com/yourusername/tennis-edge/internal/logger"
	"github.com/yourusername/tennis-edge/internal/metrics"
	"github.com/yourusername/tennis-edge/internal/model"
	"github.com/yourusername/tennis-edge/internal/notify"
	"github.com/yourusername/tennis-edge/internal/report"
	"github.com/yourusername/tennis-edge/internal/repository"
	"github.com/yourusername/tennis-edge/internal/scheduler"
	"github.com/yourusername/tennis-edge/internal/service"
	"github.com/yourusername/tennis-edge/internal/staking"
)

// Default sport keys scanned each cycle.
var defaultSportKeys = []string{"tennis_atp", "tennis_wta"}

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		once       = flag.Bool("once", false, "Run a single scan cycle and exit")
		sports     = flag.String("sports", "", "Comma-separated sport keys to scan")
	)
	flag.Parse()

	boot := logrus.New()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		boot.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		if err := config.LoadSecretsFromAWS(cfg, os.Getenv("AWS_REGION"), os.Getenv("AWS_SECRET_NAME")); err != nil {
			boot.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		boot.Fatalf("Invalid configuration: %v", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, cleanup := buildScanService(ctx, cfg, log)
	defer cleanup()

	params := buildScanParams(cfg, *sports)

	scan := func(ctx context.Context) error {
		picks, err := svc.Scan(ctx, params)
		if err != nil {
			return err
		}
		if len(picks) > 0 {
			path := filepath.Join(cfg.Backtest.OutputDir, "picks.md")
			if err := report.WritePicksMarkdown(picks, time.Now().UTC(), path); err != nil {
				log.WithError(err).Warn("Failed to write picks report")
			}
		}
		return nil
	}

	if *once {
		if err := scan(ctx); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		return
	}

	runDaemon(ctx, cancel, cfg, scan, log)
}

func buildScanService(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*service.ScanService, func()) {
	odds := datasource.NewOddsClient(datasource.OddsClientConfig{
		BaseURL:        cfg.Scan.APIURL,
		APIKey:         cfg.Scan.APIKey,
		Regions:        splitList(cfg.Scan.Regions),
		LookaheadHours: cfg.Scan.LookaheadHours,
		CacheTTL:       time.Duration(cfg.Scan.CacheTTLSeconds) * time.Second,
		HTTP: datasource.HTTPClientConfig{
			Timeout:           time.Duration(cfg.Scan.TimeoutSeconds) * time.Second,
			MaxRetries:        cfg.Scan.MaxRetries,
			RetryWaitMin:      100 * time.Millisecond,
			RetryWaitMax:      10 * time.Second,
			RateLimit:         cfg.Scan.RateLimit,
			CircuitBreakerMax: cfg.Scan.CircuitBreakerFailures,
		},
	}, log)

	var stream *datasource.StreamClient
	if cfg.Scan.StreamURL != "" {
		stream = datasource.NewStreamClient(cfg.Scan.StreamURL, cfg.Scan.APIKey, log)
		stream.AddHandler(func(update datasource.PriceUpdate) error {
			odds.ApplyPriceUpdate(update)
			return nil
		})
		if err := stream.Connect(ctx); err != nil {
			log.WithError(err).Warn("Price stream unavailable, scans will poll only")
			stream = nil
		}
	}

	sizer := staking.NewStakeSizer(cfg.Staking, log)

	var budget *staking.DailyBudget
	if cfg.Staking.DailyBudgetFraction > 0 {
		budget = staking.NewDailyBudget(cfg.Staking.DailyBudgetFraction, log)
	}

	var db *database.DB
	var pickRepo repository.PickRepository
	if cfg.Database.Enabled {
		var err error
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		pickRepo = repository.NewPostgresPickRepository(db)
	}

	var notifier *notify.TelegramNotifier
	if cfg.Notify.Enabled {
		var err error
		notifier, err = notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.ChatID, log)
		if err != nil {
			log.Fatalf("Failed to initialize telegram notifier: %v", err)
		}
	}

	elo := model.NewElo(cfg.Model.EloK)

	svc := service.NewScanService(odds, stream, sizer, budget, elo, pickRepo, notifier, log)

	cleanup := func() {
		if stream != nil {
			stream.Close()
		}
		odds.Close()
		if notifier != nil {
			notifier.Stop()
		}
		if db != nil {
			db.Close()
		}
	}
	return svc, cleanup
}

func buildScanParams(cfg *config.Config, sports string) service.ScanParams {
	keys := splitList(sports)
	if len(keys) == 0 {
		keys = defaultSportKeys
	}
	method, err := dataset.ParseDevigMethod(cfg.Backtest.DevigMethod)
	if err != nil {
		method = dataset.DevigShin
	}
	return service.ScanParams{
		SportKeys:   keys,
		MinEdge:     cfg.Scan.MinEdge,
		TopPicks:    cfg.Scan.TopPicks,
		DevigMethod: method,
		BlendWeight: cfg.Model.BlendWeight,
		Bankroll:    cfg.Staking.InitialBankroll,
	}
}

func runDaemon(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, scan scheduler.ScanFunc, log *logrus.Logger) {
	srv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        cfg.Metrics.Port,
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	})
	if cfg.Metrics.Enabled {
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("Failed to start health server: %v", err)
		}
	}

	sched := scheduler.NewScheduler(log)
	schedule := cfg.Scan.Schedule
	if schedule == "" {
		schedule = "@every 15m"
	}
	if err := sched.ScheduleScan(schedule, scan); err != nil {
		log.Fatalf("Failed to schedule scan: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	srv.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("Shutting down")

	srv.SetReady(false)
	if err := sched.Stop(); err != nil {
		log.WithError(err).Warn("Scheduler stop error")
	}
	cancel()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
