package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"leansync-jira/internal/common"
	"leansync-jira/internal/handlers"
	"leansync-jira/internal/interfaces"
	"leansync-jira/internal/mapping"
	"leansync-jira/internal/services"

	"github.com/ternarybob/arbor"
)

const serviceName = "leansync"

func main() {
	// Parse command line flags
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		mappingPath    = flag.String("mapping", "", "Path to mapping document (overrides sync.mapping_file)")
		mode           = flag.String("mode", "dev", "Environment mode: 'dev', 'development', 'prod', or 'production'")
		quiet          = flag.Bool("quiet", false, "Suppress banner output")
		version        = flag.Bool("version", false, "Show version information")
		help           = flag.Bool("help", false, "Show help message")
		validateConfig = flag.Bool("validate", false, "Validate configuration and mapping document, then exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s (build: %s)\n", serviceName, common.GetVersion(), common.GetBuild())
		os.Exit(0)
	}

	if *help {
		showHelp()
		os.Exit(0)
	}

	environment := parseMode(*mode)

	// Load configuration with priority: defaults -> TOML -> environment
	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	cfg.Service.Environment = environment
	if *mappingPath != "" {
		cfg.Sync.MappingFile = *mappingPath
	}

	if *validateConfig {
		if err := validateMapping(cfg.Sync.MappingFile); err != nil {
			common.PrintError(err.Error())
			os.Exit(1)
		}
		common.PrintSuccess("Configuration is valid")
		os.Exit(0)
	}

	if err := common.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger := common.GetLogger()

	logger.Info().
		Str("version", common.GetVersion()).
		Str("build", common.GetBuild()).
		Str("environment", environment).
		Msg("Starting LeanSync service")

	logger.Info().
		Str("config_path", *configPath).
		Str("mapping_file", cfg.Sync.MappingFile).
		Msg("Configuration loaded")

	logger.Info().Msg("Initializing services...")

	storage, err := services.NewStorage(&cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storage.Close()

	wsHub := handlers.NewWebSocketHub(logger)
	updater := services.NewResourceUpdater(&cfg.Sync, logger)
	synchronizer := services.NewSynchronizer(&cfg.Sync, storage, updater, wsHub, logger)

	configurations, err := synchronizer.LoadStoredMapping()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load mapping document")
		os.Exit(1)
	}

	logger.Info().Int("configurations", configurations).Msg("Services initialized successfully")

	if !*quiet {
		common.PrintBanner(cfg, environment, common.GetLogFilePath(), configurations)
	}

	runServerMode(cfg, storage, synchronizer, wsHub, logger)

	if !*quiet {
		common.PrintShutdownBanner(serviceName)
	}
	logger.Info().Msg("LeanSync service shutdown complete")
}

func runServerMode(cfg *common.Config, storage interfaces.Storage, sync interfaces.SyncService, wsHub *handlers.WebSocketHub, logger arbor.ILogger) {
	logger.Info().Msg("Starting in server mode")

	webServer, err := services.NewWebServer(cfg, storage, sync, wsHub, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create web server")
		return
	}

	ctx := context.Background()
	if err := webServer.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start web server")
		return
	}

	logger.Info().
		Int("port", cfg.Service.Port).
		Msg("Web server started successfully")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Msg("Server running - press Ctrl+C to stop")

	<-sigChan
	logger.Info().Msg("Shutdown signal received")

	if err := webServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping web server")
	}

	logger.Info().Msg("Server mode shutdown complete")
}

// validateMapping checks the mapping document without touching storage
func validateMapping(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read mapping document %s: %w", path, err)
	}
	cfgs, err := mapping.Parse(data)
	if err != nil {
		return err
	}
	fmt.Printf("Mapping document %s: %d configurations\n", path, len(cfgs))
	return nil
}

func parseMode(mode string) string {
	mode = strings.ToLower(mode)
	switch mode {
	case "prod", "production":
		return "production"
	case "dev", "development":
		return "development"
	default:
		return "development"
	}
}

func showHelp() {
	fmt.Printf("%s v%s - Issue Field Synchronization Engine\n\n", serviceName, common.GetVersion())
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n\n", os.Args[0])
	fmt.Println("Flags:")
	fmt.Println("  -mode string        Environment mode: 'dev', 'development', 'prod', or 'production' (default \"dev\")")
	fmt.Println("  -config string      Configuration file path")
	fmt.Println("  -mapping string     Mapping document path (XML or YAML)")
	fmt.Println("  -quiet              Suppress banner output")
	fmt.Println("  -version            Show version information")
	fmt.Println("  -help               Show help message")
	fmt.Println("  -validate           Validate configuration and mapping document, then exit")
	fmt.Println("\nExamples:")
	fmt.Printf("  %s                                  # Run in server mode\n", os.Args[0])
	fmt.Printf("  %s -mode prod                       # Run server in production mode\n", os.Args[0])
	fmt.Printf("  %s -mapping leansync.xml -validate  # Check a mapping document\n", os.Args[0])
	fmt.Println("\nNote: a mapping document stored by PUT /mapping takes precedence over -mapping.")
}
