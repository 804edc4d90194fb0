package summarize

import (
	"context"
	"fmt"
	"strings"

	"briefcast/internal/model"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const (
	maxBatchItems   = 15
	maxPromptLength = 8000
)

// OpenAIClient talks to any OpenAI-compatible chat endpoint. In the default
// deployment that is a local Ollama server, so no text leaves the machine.
type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
	logger    *zap.Logger
}

func NewOpenAIClient(baseURL, apiKey, modelName string, logger *zap.Logger) *OpenAIClient {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &OpenAIClient{
		client:    &client,
		model:     openai.ChatModel(modelName),
		modelName: modelName,
		logger:    logger,
	}
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	if len(prompt) > maxPromptLength {
		c.logger.Warn("Prompt too long, truncating",
			zap.Int("length", len(prompt)))
		prompt = prompt[:maxPromptLength] + "..."
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.3),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Categorize tags each item with up to three category labels in a single
// batched prompt. A parse miss on any line falls back to the default
// category rather than failing the batch.
func (c *OpenAIClient) Categorize(ctx context.Context, items []model.Item) ([]model.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if len(items) > maxBatchItems {
		c.logger.Warn("Too many items for one batch, truncating",
			zap.Int("items", len(items)),
			zap.Int("max", maxBatchItems))
		items = items[:maxBatchItems]
	}

	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "#%d. %s\n", i+1, truncate(item.Title, 80))
		if item.Summary != "" {
			fmt.Fprintf(&sb, "    %s\n", truncate(item.Summary, 100))
		}
	}

	prompt := fmt.Sprintf(`Categorize these %d tech articles.

%s
Categories: AI, Tech, Data, Security, DevOps, Mobile, Web3, Blockchain, Product, Dev, Design, Business

Exact response format:
#1: Tech, AI
#2: Product, Design
...

Response:`, len(items), sb.String())

	result, err := c.complete(ctx, prompt, 150)
	if err != nil {
		c.logger.Error("Categorization failed, applying default category", zap.Error(err))
		for i := range items {
			items[i].Categories = []string{defaultCategory}
		}
		return items, nil
	}

	categories := parseCategoryLines(result, len(items))
	for i := range items {
		items[i].Categories = categories[i]
	}
	return items, nil
}

// parseCategoryLines extracts "#N: cat, cat" assignments from the model
// response, filtering to the closed vocabulary and defaulting on misses.
func parseCategoryLines(result string, n int) [][]string {
	lines := strings.Split(strings.TrimSpace(result), "\n")
	out := make([][]string, n)

	for i := 0; i < n; i++ {
		prefix := fmt.Sprintf("#%d:", i+1)
		var tags []string
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			for _, cat := range strings.Split(strings.TrimPrefix(line, prefix), ",") {
				cat = strings.TrimSpace(cat)
				if validCategories[cat] {
					tags = append(tags, cat)
				}
			}
			break
		}
		if len(tags) == 0 {
			tags = []string{defaultCategory}
		}
		if len(tags) > 3 {
			tags = tags[:3]
		}
		out[i] = tags
	}

	return out
}

// Synthesize produces one executive digest for the batch. On LLM failure a
// minimal static digest is returned instead of an error: a missing synthesis
// should never fail a harvest run.
func (c *OpenAIClient) Synthesize(ctx context.Context, items []model.Item) (string, error) {
	if len(items) == 0 {
		return "No articles to synthesize.", nil
	}
	if len(items) > maxBatchItems {
		items = items[:maxBatchItems]
	}

	var sb strings.Builder
	count := len(items)
	if count > 10 {
		count = 10
	}
	for i, item := range items[:count] {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, truncate(item.Title, 60))
		if item.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", truncate(item.Summary, 80))
		}
		if len(item.Categories) > 0 {
			tags := item.Categories
			if len(tags) > 2 {
				tags = tags[:2]
			}
			fmt.Fprintf(&sb, "   [%s]\n", strings.Join(tags, ", "))
		}
	}

	prompt := fmt.Sprintf(`Executive tech digest of the day (%d articles):

%s
Write a digest in 3 short parts:

TRENDS (2-3 bullet points):
INSIGHTS (1 paragraph):
ACTIONS (2 recommendations):

200 words max.`, len(items), sb.String())

	synthesis, err := c.complete(ctx, prompt, 300)
	if err != nil || len(synthesis) < 50 {
		if err != nil {
			c.logger.Error("Synthesis failed, using static digest", zap.Error(err))
		}
		return fallbackDigest(len(items)), nil
	}

	return synthesis, nil
}

func fallbackDigest(n int) string {
	return fmt.Sprintf(`TRENDS: %d tech articles collected today
INSIGHTS: automated harvest completed, synthesis unavailable
ACTIONS: 1) review the item list directly 2) check the summarization endpoint`, n)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
