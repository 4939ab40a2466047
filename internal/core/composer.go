package core

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// summaryRecordLimit caps how many records are serialized into a
// summary request
const summaryRecordLimit = 10

// ResponseComposer turns a query, its intent and the selected data into
// a natural-language answer. With no language model configured, or on
// any failure from it, the deterministic template is returned instead;
// composition never fails.
type ResponseComposer struct {
	llm    LLMClient
	logger *zap.Logger
}

// NewResponseComposer creates a new response composer. llm may be nil.
func NewResponseComposer(llm LLMClient, logger *zap.Logger) *ResponseComposer {
	return &ResponseComposer{
		llm:    llm,
		logger: logger,
	}
}

// Compose builds the answer to a query
func (c *ResponseComposer) Compose(ctx context.Context, query string, intent Intent, data []any) string {
	fallback := fmt.Sprintf("Query processed: %s. Found %d results.", intent.Kind, len(data))
	if c.llm == nil {
		return fallback
	}

	serialized, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		c.logger.Warn("Failed to serialize query data, using fallback response", zap.Error(err))
		return fallback
	}

	reply, err := c.llm.Complete(ctx, []Message{
		{
			Role:    RoleSystem,
			Content: "You are a helpful email analytics assistant. Provide clear, concise responses based on the data provided.",
		},
		{
			Role: RoleUser,
			Content: fmt.Sprintf(
				"Query: %s\nIntent: %s\nData: %s\n\nPlease provide a natural language response to the query based on this data.",
				query, intent.Kind, serialized),
		},
	})
	if err != nil {
		c.logger.Warn("LLM response generation failed, using fallback response", zap.Error(err))
		return fallback
	}
	return reply
}

// Summarize produces a short natural-language summary of arbitrary
// records, with the same degrade-to-template rule as Compose
func (c *ResponseComposer) Summarize(ctx context.Context, data []any) string {
	fallback := fmt.Sprintf("Summary unavailable: %d records analyzed.", len(data))
	if c.llm == nil {
		return fallback
	}

	sample := data
	if len(sample) > summaryRecordLimit {
		sample = sample[:summaryRecordLimit]
	}
	serialized, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		c.logger.Warn("Failed to serialize summary data, using fallback summary", zap.Error(err))
		return fallback
	}

	reply, err := c.llm.Complete(ctx, []Message{
		{
			Role:    RoleSystem,
			Content: "You are a helpful assistant that summarizes email analytics data. Provide concise, insightful summaries.",
		},
		{
			Role:    RoleUser,
			Content: fmt.Sprintf("Summarize this data:\n%s", serialized),
		},
	})
	if err != nil {
		c.logger.Warn("LLM summary generation failed, using fallback summary", zap.Error(err))
		return fallback
	}
	return reply
}
