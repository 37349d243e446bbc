package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tweetlens/internal/archive"
	"tweetlens/internal/config"
	"tweetlens/internal/llm"
	"tweetlens/internal/mail"
	"tweetlens/internal/metrics"
	"tweetlens/internal/payment"
	"tweetlens/internal/pipeline"
	"tweetlens/internal/report"
	"tweetlens/internal/scrape"
	"tweetlens/internal/server"
	"tweetlens/internal/store"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "analyze":
		cmdAnalyze()
	case "serve":
		cmdServe()
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println("Usage: tweetlens <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init      Create a config file at ./tweetlens.yaml")
	fmt.Println("  analyze   Process a tweet archive file and print the report as JSON")
	fmt.Println("  serve     Run the HTTP API")
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./tweetlens.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	fmt.Println("Config written to:", abs)
}

func cmdAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cfgPath := fs.String("config", "./tweetlens.yaml", "config path")
	file := fs.String("file", "", "archive file (window.YTD... .js or raw JSON array)")
	timeframe := fs.String("timeframe", "all", "all, month, 3months, 6months or year")
	paid := fs.Bool("paid", false, "skip the free-tier cap")
	_ = fs.Parse(os.Args[2:])
	if *file == "" {
		fmt.Println("error: -file is required")
		os.Exit(1)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		cfg = config.Default()
	}

	text, err := os.ReadFile(*file)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	records, err := archive.ParseArchive(string(text))
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	result, err := pipeline.Process(records, pipeline.Timeframe(*timeframe), *paid, pipeline.Config{
		FreeTierCap: cfg.FreeTier.Cap,
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	out := struct {
		Highlights        report.Highlights `json:"highlights"`
		ProcessedCount    int               `json:"processedCount"`
		RawCount          int               `json:"rawCountInTimeframe"`
		IsFreeTierLimited bool              `json:"isFreeTierLimited"`
		Result            any               `json:"result"`
	}{
		Highlights:        report.Derive(result),
		ProcessedCount:    result.ProcessedCount,
		RawCount:          result.RawCountInTimeframe,
		IsFreeTierLimited: result.IsFreeTierLimited,
		Result:            result,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./tweetlens.yaml", "config path")
	debug := fs.Bool("debug", false, "verbose logging")
	_ = fs.Parse(os.Args[2:])

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *cfgPath).Msg("config not loaded, using defaults")
		cfg = config.Default()
	}
	cfg.ResolveEnv()

	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.DBPath).Msg("cannot open session store")
	}
	defer db.Close()

	srv := &server.Server{
		Cfg:      cfg,
		Store:    db,
		Scraper:  scrape.NewHTTPClient(cfg.Scrape.BaseURL, cfg.Scrape.APIKey),
		Payments: payment.NewHTTPClient(cfg.Payment.BaseURL, cfg.Payment.APIKey),
		LLM:      llm.FromConfig(cfg.LLM),
	}
	if cfg.Mail.Enabled {
		srv.Mailer = mail.NewSMTPSender(cfg.Mail)
	}

	ttlHours := cfg.Storage.SessionTTLHours
	if ttlHours <= 0 {
		ttlHours = 72
	}
	ttl := time.Duration(ttlHours) * time.Hour
	purgeSpec := cfg.Storage.PurgeSpec
	if purgeSpec == "" {
		purgeSpec = "@hourly"
	}
	c := cron.New()
	if _, err := c.AddFunc(purgeSpec, func() {
		n, err := db.PurgeOlderThan(context.Background(), ttl)
		if err != nil {
			log.Error().Err(err).Msg("session purge failed")
			return
		}
		if n > 0 {
			log.Info().Int64("purged", n).Msg("expired sessions removed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", purgeSpec).Msg("invalid purge schedule")
	}
	c.Start()
	defer c.Stop()

	metrics.StartServer(cfg.Server.MetricsAddr)
	log.Info().Str("addr", cfg.Server.Addr).Msg("tweetlens listening")
	if err := srv.Router().Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
