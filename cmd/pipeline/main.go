package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/models"
	"github.com/ternarybob/quaero/internal/services/config"
	"github.com/ternarybob/quaero/internal/services/embeddings"
	"github.com/ternarybob/quaero/internal/services/fixtures"
	"github.com/ternarybob/quaero/internal/services/imap"
	"github.com/ternarybob/quaero/internal/services/pipeline"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }
func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	fixtureDir  = flag.String("source", "", "Directory of message fixtures to run once (non-live mode)")
	liveInbox   = flag.Bool("live", false, "Run a single live-inbox fetch instead of the fixture directory")
	schedule    = flag.Bool("schedule", false, "Run the cron scheduler instead of a single pass")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (may be repeated; only the last one is loaded)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("quaero-pipeline version %s\n", common.GetVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("pipeline.toml"); err == nil {
			configFiles = append(configFiles, "pipeline.toml")
		}
	}

	var cfgPath string
	if len(configFiles) > 0 {
		cfgPath = configFiles[len(configFiles)-1]
	}

	appConfig, err := common.LoadFromFile(cfgPath)
	if err != nil {
		tmp := arbor.NewLogger()
		tmp.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.SetupLogger(appConfig)
	common.PrintBanner(appConfig, logger)
	defer common.PrintShutdownBanner(logger)

	pipelineCfg, err := config.NewService(config.Paths{
		LineFilter:          appConfig.Pipeline.LineFilter,
		SemanticTemplates:   appConfig.Pipeline.SemanticTemplates,
		KeywordsTech:        appConfig.Pipeline.KeywordsTech,
		IndexRules:          appConfig.Pipeline.IndexRules,
		ClassifierForeigner: appConfig.Pipeline.ClassifierForeigner,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load pipeline configuration")
	}

	provider := embeddings.NewOllamaProvider(
		appConfig.Embeddings.OllamaURL,
		appConfig.Embeddings.Model,
		appConfig.Embeddings.Dimension,
		logger,
	)

	svc, err := pipeline.New(pipelineCfg.Snapshot(), provider, appConfig.Splitter.MarkerPatterns, appConfig.Splitter.SkipLines, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("Shutdown signal received")
		cancel()
	}()

	reloadCh := make(chan os.Signal, 1)
	signal.Notify(reloadCh, syscall.SIGHUP)
	go func() {
		for range reloadCh {
			logger.Info().Msg("Reload signal received")
			if err := pipelineCfg.ReloadConfig(); err != nil {
				logger.Error().Err(err).Msg("Failed to reload pipeline configuration")
				continue
			}
			if err := svc.Reload(pipelineCfg.Snapshot()); err != nil {
				logger.Error().Err(err).Msg("Failed to apply reloaded pipeline configuration")
			}
		}
	}()

	switch {
	case *schedule:
		runScheduled(ctx, appConfig, svc, logger)
	case *liveInbox:
		runLiveOnce(ctx, appConfig, svc, logger)
	default:
		runFixturesOnce(ctx, *fixtureDir, svc, logger)
	}
}

func runFixturesOnce(ctx context.Context, dir string, svc *pipeline.Service, logger arbor.ILogger) {
	if dir == "" {
		dir = "fixtures"
	}

	source := fixtures.NewSource(dir, logger)
	msgs, err := source.FetchMessages(ctx)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", dir).Msg("Failed to load message fixtures")
	}

	run := svc.ProcessMessages(ctx, msgs)
	writeSummary(run, logger)
}

func runLiveOnce(ctx context.Context, appConfig *common.Config, svc *pipeline.Service, logger arbor.ILogger) {
	source := imap.NewService(appConfig.IMAP, logger)
	msgs, err := source.FetchMessages(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to fetch live inbox messages")
	}

	run := svc.ProcessMessages(ctx, msgs)
	writeSummary(run, logger)
}

func runScheduled(ctx context.Context, appConfig *common.Config, svc *pipeline.Service, logger arbor.ILogger) {
	source := imap.NewService(appConfig.IMAP, logger)
	scheduler := pipeline.NewScheduler(svc, source, logger)

	if err := common.ValidateSchedule(appConfig.Processing.Schedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", appConfig.Processing.Schedule).Msg("Invalid processing schedule")
	}

	if err := scheduler.Start(appConfig.Processing.Schedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	<-ctx.Done()
	scheduler.Stop()
}

func writeSummary(run models.RunResult, logger arbor.ILogger) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		logger.Error().Err(err).Msg("Failed to encode run result")
	}

	logger.Info().
		Int("messages", run.Summary.MessageCount).
		Int("blocks", run.Summary.BlockCount).
		Msg("Pipeline run complete")
}
