package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/rag/llm"
	"github.com/akonduru/reviewrag/pkg/logx"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var (
	logger       *logx.Logger
	geminiClient *llmClient
	once         sync.Once
)

// GetGeminiClient returns the process-wide completion provider, or nil if the
// client could not be created.
func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, geminiClient)
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, grounding []string) (string, error) {
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.SystemInstruction},
		},
	}

	userPrompt := fmt.Sprintf("Review excerpts:\n%s\n\nUser Question: %s", strings.Join(grounding, "\n"), userQuery)

	temperature := config.ModelTemperature
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: systemInstruction,
			Temperature:       &temperature,
		},
	)
	if err != nil {
		logger.Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", review.ErrGenerationFailed, err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: model returned empty completion", review.ErrGenerationFailed)
	}
	return text, nil
}
