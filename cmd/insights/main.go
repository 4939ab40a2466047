package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/email-insights/internal/core"
	"github.com/mikey/email-insights/internal/di"
	"go.uber.org/zap"
)

var (
	query      = flag.String("query", "", "Free-text analytics query (positional args are joined if empty)")
	userID     = flag.Int64("user", 1, "User ID to query against")
	jsonOutput = flag.Bool("json", false, "Print the full result as JSON")
)

func main() {
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	analytics *core.Analytics,
	llmClient core.LLMClient,
) error {
	defer logger.Sync()

	q := strings.TrimSpace(*query)
	if q == "" {
		q = strings.TrimSpace(strings.Join(flag.Args(), " "))
	}
	if q == "" {
		return fmt.Errorf("no query given; use -query or positional arguments")
	}

	result, err := analytics.AnswerQuery(context.Background(), q, *userID)
	if err != nil {
		logger.Error("Query failed", zap.Error(err))
		return err
	}

	if *jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(encoded))
	} else {
		printResult(result)
	}

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	return nil
}

func printResult(result *core.QueryResult) {
	fmt.Printf("\n=== Query ===\n")
	fmt.Printf("%s\n", result.Query)

	fmt.Printf("\n=== Intent ===\n")
	fmt.Printf("Kind: %s\n", result.Intent.Kind)
	for key, value := range result.Intent.FilterMap() {
		fmt.Printf("%s: %s\n", key, value)
	}

	fmt.Printf("\n=== Answer ===\n")
	fmt.Printf("%s\n", result.Response)

	fmt.Printf("\n=== Data (%d records) ===\n", len(result.Data))
	encoded, err := json.MarshalIndent(result.Data, "", "  ")
	if err == nil {
		fmt.Println(string(encoded))
	}
}
