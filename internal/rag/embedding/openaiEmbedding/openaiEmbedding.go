package openaiEmbedding

import (
	"context"
	"errors"
	"sync"

	"github.com/akonduru/reviewrag/internal/customHttpClient"
	"github.com/akonduru/reviewrag/internal/rag/embedding"
	"github.com/akonduru/reviewrag/pkg/logx"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	logger          *logx.Logger
	once            sync.Once
	embeddingClient *client
)

type client struct {
	openAi    openai.Client
	model     openai.EmbeddingModel
	dimension int32
}

// GetOpenAIEmbeddingClient returns the process-wide OpenAI embedder, or nil
// when no API key is configured.
func GetOpenAIEmbeddingClient(modelName string, apikey string, dimension int32) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OPENAI_API_KEY is empty, openai embedder unavailable")
			return
		}
		embeddingClient = &client{
			openAi:    openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(customHttpClient.NewPooledClient())),
			model:     openai.EmbeddingModel(modelName),
			dimension: dimension,
		}
		logger.Info("OpenAI embedding client created", "model", modelName, "dimension", dimension)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) Dimension() int {
	return int(c.dimension)
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	res, err := c.openAi.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Model:          c.model,
		Dimensions:     openai.Int(int64(c.dimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		logger.Error("Error getting embeddings from OpenAI", "error", err, "batch", len(chunks))
		return nil, classify(err)
	}

	vectors := make([][]float32, 0, len(res.Data))
	for _, d := range res.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return embedding.ClassifyHTTP(apiErr.StatusCode, err)
	}
	return err
}
