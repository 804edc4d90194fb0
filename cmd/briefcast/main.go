package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"briefcast/internal/calendar"
	"briefcast/internal/config"
	"briefcast/internal/extract"
	"briefcast/internal/locate"
	"briefcast/internal/pipeline"
	web "briefcast/internal/server"
	"briefcast/internal/speech"
	"briefcast/internal/store"
	"briefcast/internal/summarize"
	"briefcast/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	configPath string
	port       string
)

var rootCmd = &cobra.Command{
	Use:   "briefcast",
	Short: "briefcast - newsletter harvester with a spoken daily brief",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the harvest worker and web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Setup Signal Handling (Ctrl+C)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		// Setup Manual 'q' input handling
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if scanner.Text() == "q" {
					fmt.Println(" 'q' pressed. Stopping...")
					cancel()
					return
				}
			}
		}()

		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			cancel()
		}()

		// Initialize Store (FULL MODE - Redis + Badger)
		st, err := store.NewHybridStore(cfg.RedisAddr, cfg.BadgerPath)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer st.Close()

		runner := buildRunner(cfg, st)
		w := worker.NewWorker(st, runner, logger)
		go w.Start(ctx)

		srv := web.NewServer(st, feedSlugs(cfg), logger)
		go func() {
			if err := srv.Start(port); err != nil {
				logger.Error("Dashboard stopped", zap.Error(err))
				cancel()
			}
		}()

		logger.Info("Server running.")
		fmt.Println("Press 'q' + Enter or Ctrl+C to stop.")

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("Dashboard shutdown", zap.Error(err))
		}

		logger.Info("Goodbye!")
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [feed]",
	Short: "Harvest one feed now (or all enabled feeds)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		st, err := store.NewHybridStore(cfg.RedisAddr, cfg.BadgerPath)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer st.Close()

		feeds := feedSlugs(cfg)
		if len(args) == 1 {
			feeds = args[:1]
		}

		runner := buildRunner(cfg, st)
		ctx := cmd.Context()
		for _, feed := range feeds {
			report, err := runner.RunFeed(ctx, feed)
			if err != nil {
				logger.Error("Harvest failed",
					zap.String("feed", feed),
					zap.Error(err))
				continue
			}
			logger.Info("Harvest finished",
				zap.String("feed", feed),
				zap.String("date", report.Date),
				zap.Int("stored", report.Stored),
				zap.Float64("elapsed_s", report.Elapsed))
		}
		return nil
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [feed]",
	Short: "Queue a feed for the worker to harvest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		// Initialize Store (CLIENT MODE - Redis Only)
		// Passing "" as the second argument ensures we don't try to open the BadgerDB file lock.
		st, err := store.NewHybridStore(cfg.RedisAddr, "")
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer st.Close()

		if err := st.EnqueueFeed(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}

		logger.Info("Harvest queued", zap.String("feed", args[0]))
		return nil
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate [feed]",
	Short: "Print the edition URL that would be harvested",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		url, err := buildLocator(cfg).Locate(args[0])
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	},
}

func buildLocator(cfg *config.Config) *locate.Locator {
	holidays := calendar.NewHolidayCache(cfg.HolidayBase, cfg.CountryCode, logger)
	resolver := calendar.NewResolver(holidays, cfg.CutoverHour, cfg.GetMaxLookback(), logger)
	return locate.NewLocator(resolver, locate.NewHTTPProber(), cfg.FeedBase,
		cfg.FallbackDates, cfg.GetMaxAttempts(), logger)
}

func buildRunner(cfg *config.Config, st store.Store) *pipeline.Runner {
	r := &pipeline.Runner{
		Locator:    buildLocator(cfg),
		Fetcher:    pipeline.NewHTTPFetcher(),
		Extractor:  extract.NewExtractor(cfg.GetMaxItems(), logger),
		Normalizer: extract.NewNormalizer(cfg.GetMaxItems(), cfg.Brand),
		Store:      st,
		Logger:     logger,
	}
	if cfg.LLMEnabled() {
		r.Summarizer = summarize.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLMKey(), cfg.LLM.Model, logger)
	}
	if cfg.ArchiveContent {
		r.Archiver = &pipeline.ReadabilityArchiver{}
	}
	if cfg.SpeechCommand != "" {
		r.Speaker = speech.NewCommandSynthesizer(cfg.SpeechCommand, cfg.AudioDir, logger)
	}
	return r
}

func feedSlugs(cfg *config.Config) []string {
	var slugs []string
	for _, f := range cfg.EnabledFeeds() {
		slugs = append(slugs, f.Slug)
	}
	return slugs
}

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: XDG config dir)")
	serveCmd.Flags().StringVar(&port, "port", "8080", "Dashboard HTTP port")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(locateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
