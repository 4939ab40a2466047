package di

import (
	"go.uber.org/dig"

	"github.com/mikey/email-insights/internal/config"
	"github.com/mikey/email-insights/internal/core"
	"github.com/mikey/email-insights/internal/factory"
	"github.com/mikey/email-insights/internal/logging"
	"github.com/mikey/email-insights/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSentimentFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register LLM client (nil when no provider is configured)
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register stores
	if err := container.Provide(func(f *factory.StoreFactory) (*factory.Stores, error) {
		return f.CreateStores()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *factory.Stores) core.EmailStore {
		return s.Emails
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *factory.Stores) core.ContactStore {
		return s.Contacts
	}); err != nil {
		return nil, err
	}

	// Register sentiment analyzer
	if err := container.Provide(func(f *factory.SentimentFactory) core.SentimentAnalyzer {
		return f.CreateAnalyzer()
	}); err != nil {
		return nil, err
	}

	// Register core components
	if err := container.Provide(core.NewSentimentScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewFriendlinessScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewRankingAggregator); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDataSelector); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewResponseComposer); err != nil {
		return nil, err
	}

	// Register analytics service
	if err := container.Provide(core.NewAnalytics); err != nil {
		return nil, err
	}

	return container, nil
}
