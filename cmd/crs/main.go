package main

import (
	"context"
	"errors"
	"flag"
	"hash/fnv"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RelativeStrength/internal/collector"
	"RelativeStrength/internal/config"
	"RelativeStrength/internal/model"
	"RelativeStrength/internal/notifier"
	"RelativeStrength/internal/report"
	"RelativeStrength/internal/scanner"
	"RelativeStrength/internal/scheduler"
	"RelativeStrength/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := flag.String("config", "", "path to config.yaml (default $CONFIG_PATH or configs/config.yaml)")
	daemon := flag.Bool("daemon", false, "run the scheduler, Telegram bot and HTTP API until interrupted")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	verbose := flag.Bool("verbose", false, "print the banner and rejected symbols")
	demo := flag.Bool("demo", false, "use generated prices instead of a market data provider")
	noColor := flag.Bool("no-color", false, "disable colored output")
	once := flag.Bool("once", true, "run a single scan and print the result; ignored with -daemon")
	flag.Parse()

	daemonMode, err := selectMode(*once, *daemon)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	path := *cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *demo {
		cfg.DataSource.Provider = "mock"
	}
	validate := cfg.Validate
	if daemonMode {
		validate = cfg.ValidateDaemon
	}
	if err := validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	var fetcher collector.Fetcher
	if *demo {
		fetcher = demoFetcher()
	} else {
		fetcher, err = collector.NewFetcher(collector.SourceOptions{
			Provider:  cfg.DataSource.Provider,
			BaseURL:   cfg.DataSource.BaseURL,
			APIKey:    cfg.DataSource.APIKey,
			APISecret: cfg.DataSource.APISecret,
			Proxy:     cfg.Proxy,
			Timeout:   cfg.DataSource.Timeout,
		})
		if err != nil {
			log.Fatalf("[FATAL] init data source: %v", err)
		}
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	sc := scanner.NewFromConfig(cfg, fetcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if daemonMode {
		runDaemon(ctx, cfg, sc)
		return
	}

	printer := report.NewPrinter(os.Stdout, *verbose, *asJSON, *noColor)
	now := time.Now()
	if *verbose && !*asJSON {
		start, _, err := cfg.ScanRange(now)
		if err != nil {
			log.Fatalf("[FATAL] scan range: %v", err)
		}
		printer.Banner(report.BannerOptions{
			Symbols:          cfg.Scan.Symbols,
			Base:             cfg.Scan.Base,
			SMALength:        cfg.Scan.SMALength,
			UptrendSMALength: cfg.Scan.UptrendSMALength,
			CRSTrendLookback: cfg.Scan.CRSTrendLookback,
			Start:            start.Format("2006-01-02"),
		})
	}

	rep, err := sc.Run(ctx, now)
	if err != nil {
		log.Fatalf("[FATAL] scan: %v", err)
	}
	if err := printer.Print(rep); err != nil {
		log.Fatalf("[FATAL] print report: %v", err)
	}
}

// selectMode reports whether to run as a daemon. Disabling -once requires -daemon.
func selectMode(once, daemon bool) (bool, error) {
	if daemon {
		return true, nil
	}
	if !once {
		return false, errors.New("-once=false requires -daemon")
	}
	return false, nil
}

func runDaemon(ctx context.Context, cfg *config.Config, sc *scanner.Scanner) {
	log.Println("[INFO] RelativeStrength daemon starting...")

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	sched := scheduler.NewScheduler(ctx, sc, tn, scheduler.NewTradingCalendar(cfg.Schedule.Exchange))
	sched.OnReport = func(r *model.Report) {
		log.Printf("[INFO] report ready: %d qualified of %d", len(r.Rankings), len(r.Evaluations))
	}
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if cfg.Server.Addr != "" {
		srv := server.New(cfg.Server.Addr, sc)
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.Printf("[ERROR] HTTP API: %v", err)
			}
		}()
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go func() {
			rep, err := sched.RunNow()
			if err != nil {
				log.Printf("[ERROR] startup scan: %v", err)
				return
			}
			if err := tn.SendWithRetry(ctx, notifier.FormatReport(rep), 3); err != nil {
				log.Printf("[ERROR] send notification: %v", err)
			}
		}()
	}

	log.Println("[INFO] RelativeStrength is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

// demoFetcher generates prices with a per-symbol drift derived from the symbol name.
func demoFetcher() *collector.MockFetcher {
	return &collector.MockFetcher{
		Func: func(symbol string, start, end time.Time) ([]model.OHLCV, error) {
			h := fnv.New32a()
			h.Write([]byte(symbol))
			drift := (float64(h.Sum32()%41) - 15) / 10000
			return collector.GenerateBars(50+float64(h.Sum32()%200), drift, start, end), nil
		},
	}
}
