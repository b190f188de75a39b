// Package main provides the agent command: fetch the CPU series and news,
// detect anomalies, narrate them and write the reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"madison/internal/config"
	"madison/internal/logger"
	"madison/internal/pipeline"
	"madison/internal/report"
)

const defaultConfigPath = "configs/agent.yaml"

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file (default "+defaultConfigPath+" when present)")
	sigma := flag.Float64("sigma", config.DefaultConfig().Agent.Analysis.SigmaMultiplier, "Anomaly threshold in standard deviations (overrides config)")
	csvURL := flag.String("csv-url", "", "NAB CPU CSV URL or local path (overrides config)")
	newsQuery := flag.String("news-query", "", "NewsAPI search query (overrides config)")
	output := flag.String("output", "", "Report output directory (overrides config)")
	interval := flag.Duration("interval", 0, "Re-run the analysis at this interval (e.g. 15m)")
	once := flag.Bool("once", false, "Run a single analysis even when -interval is set")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")

	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := applyOverrides(cfg, set, *sigma, *csvURL, *newsQuery, *output); err != nil {
		log.Fatalf("❌ Invalid flags: %v\n", err)
	}

	fmt.Printf("⚙️  %s\n", cfg)

	if *writeConfig != "" {
		if err := cfg.SaveConfig(*writeConfig); err != nil {
			log.Fatalf("❌ %v\n", err)
		}

		fmt.Printf("✅ Configuration written to: %s\n", *writeConfig)

		return
	}

	if err := cfg.LoadDotEnv(); err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	lg := logger.NewLoggerWithOptions(logger.Options{Level: cfg.Agent.Logging.Level, Format: cfg.Agent.Logging.Format})
	lg.Info("🚀 Starting Madison Transparency Agent", "sources", len(cfg.GetEnabledSources()), "sigma", cfg.Agent.Analysis.SigmaMultiplier)

	p, err := pipeline.FromConfig(cfg, lg)
	if err != nil {
		log.Fatalf("❌ Failed to build pipeline: %v\n", err)
	}

	a := &agent{
		pipeline: p,
		writer:   report.NewWriter(cfg.Agent.Output, lg),
		log:      lg,
		textfile: cfg.Agent.Output.MetricsTextfile,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 || *once {
		if err := a.run(ctx); err != nil {
			stop()
			os.Exit(1)
		}

		return
	}

	a.loop(ctx, *interval)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			fmt.Println("⚙️  Using built-in defaults")

			return config.DefaultConfig(), nil
		}

		path = defaultConfigPath
	}

	fmt.Printf("⚙️  Loading configuration from: %s\n", path)

	return config.LoadConfig(path)
}

func applyOverrides(cfg *config.Config, set map[string]bool, sigma float64, csvURL, newsQuery, output string) error {
	if set["sigma"] {
		cfg.Agent.Analysis.SigmaMultiplier = sigma
	}

	if csvURL != "" {
		src := cfg.SourceByType(config.SourceTypeCSV)
		if src == nil {
			return errors.New("no csv source configured to override")
		}

		src.URL, src.File, src.BackupURLs = csvURL, "", nil
		if _, err := os.Stat(csvURL); err == nil {
			src.URL, src.File = "", csvURL
		}

		src.Enabled = true
	}

	if newsQuery != "" {
		if src := cfg.SourceByType(config.SourceTypeNewsAPI); src != nil {
			src.Query = newsQuery
		}
	}

	if output != "" {
		cfg.Agent.Output.BasePath = output
	}

	return cfg.Validate()
}

type agent struct {
	pipeline *pipeline.Pipeline
	writer   *report.Writer
	log      *logger.Logger
	textfile string
	session  pipeline.Session
}

// run performs one analysis and renders it. On failure the previous result,
// if any, is shown again.
func (a *agent) run(ctx context.Context) error {
	defer a.writeMetrics()

	res, replayed, err := a.session.Run(ctx, a.pipeline)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoMetrics) {
			a.log.Error("❌ " + pipeline.NoMetricsHint)
		} else {
			a.log.Error("❌ Analysis failed", "error", err)
		}

		if replayed {
			a.log.Info("Showing results from last analysis.", "run_id", res.RunID)
			a.render(res)
		}

		return err
	}

	a.render(res)

	paths, err := a.writer.WriteAll(res.ReportInput())
	if err != nil {
		a.log.Error("❌ Failed to write reports", "error", err)

		return err
	}

	a.log.Info("✨ Analysis complete", "health", res.Health(), "reports", paths, "duration", res.Duration)

	return nil
}

func (a *agent) loop(ctx context.Context, every time.Duration) {
	a.log.Info("⏱️  Interval mode", "every", every)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		_ = a.run(ctx)

		select {
		case <-ctx.Done():
			a.log.Info("👋 Shutting down")

			return
		case <-ticker.C:
		}
	}
}

func (a *agent) render(res *pipeline.Result) {
	if err := report.RenderConsole(os.Stdout, res.ReportInput()); err != nil {
		a.log.Warn("console render failed", "error", err)
	}
}

func (a *agent) writeMetrics() {
	if err := a.pipeline.Metrics().WriteTextfile(a.textfile); err != nil {
		a.log.Warn("metrics textfile not written", "error", err)
	}
}
