package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mikey/email-insights/internal/config"
	"github.com/mikey/email-insights/internal/core"
	"github.com/mikey/email-insights/internal/factory"
	"github.com/mikey/email-insights/internal/ingest"
	"github.com/mikey/email-insights/internal/logging"
	"go.uber.org/zap"
)

var (
	// Input flags
	inputDir  = flag.String("dir", "", "Directory of .eml files to ingest")
	inputFile = flag.String("file", "", "Single .eml file to ingest")
	userID    = flag.Int64("user", 1, "User ID to ingest messages for")
	rank      = flag.Bool("rank", false, "Run a full contact ranking pass after ingestion")

	// Store flags
	storeType  = flag.String("store", "", "Store backend (memory, sqlite, mysql)")
	sqlitePath = flag.String("sqlite-path", "", "Path to SQLite database file")
	mysqlDSN   = flag.String("mysql-dsn", "", "MySQL data source name")

	// Logging flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	paths, err := collectInput()
	if err != nil {
		logger.Fatal("No input to ingest", zap.Error(err))
	}
	logger.Info("Starting ingestion", zap.Int("messages", len(paths)), zap.Int64("user_id", *userID))

	// Create stores
	storeFactory := factory.NewStoreFactory(cfg, logger)
	stores, err := storeFactory.CreateStores()
	if err != nil {
		logger.Fatal("Failed to create stores", zap.Error(err))
	}

	// Create LLM client (optional, provider "none" disables it)
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	llmClient, err := factory.NewLLMFactory(cfg, logger, textProcessor).CreateLLMClient()
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Assemble the analytics service
	analyzer := factory.NewSentimentFactory().CreateAnalyzer()
	sentiment := core.NewSentimentScorer(analyzer, llmClient, logger)
	friendliness := core.NewFriendlinessScorer(stores.Emails, stores.Contacts, logger)
	ranking := core.NewRankingAggregator(stores.Contacts, friendliness, logger)
	selector := core.NewDataSelector(stores.Emails, stores.Contacts)
	composer := core.NewResponseComposer(llmClient, logger)
	analytics := core.NewAnalytics(stores.Emails, stores.Contacts, sentiment, friendliness, ranking, selector, composer, logger)

	ingester := ingest.NewIngester(stores.Emails, stores.Contacts, analytics, logger)

	ctx := context.Background()
	report, err := ingester.Run(ctx, *userID, paths)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	fmt.Printf("\n=== Ingestion Report ===\n")
	fmt.Printf("Emails ingested: %d\n", report.EmailsIngested)
	fmt.Printf("Contacts updated: %d\n", report.ContactsUpdated)
	fmt.Printf("Failures: %d\n", report.Failures)

	if *rank {
		rankings, err := analytics.RankContacts(ctx, *userID)
		if err != nil {
			logger.Fatal("Ranking pass failed", zap.Error(err))
		}
		fmt.Printf("\n=== Friendliness Ranking ===\n")
		for i, contact := range rankings.ByFriendliness {
			fmt.Printf("%2d. %-40s %.3f\n", i+1, contact.Email, contact.FriendlinessScore)
		}
	}

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
}

// collectInput resolves the flags into the list of message files
func collectInput() ([]string, error) {
	if *inputFile != "" {
		return []string{*inputFile}, nil
	}
	if *inputDir != "" {
		paths, err := ingest.CollectMessageFiles(*inputDir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no .eml files found in %s", *inputDir)
		}
		return paths, nil
	}
	return nil, fmt.Errorf("either -file or -dir is required")
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	if *storeType != "" {
		v.Set("store.type", *storeType)
	}
	if *sqlitePath != "" {
		v.Set("store.sqlite_path", *sqlitePath)
	}
	if *mysqlDSN != "" {
		v.Set("store.mysql_dsn", *mysqlDSN)
	}

	return config.NewFromViper(v)
}
