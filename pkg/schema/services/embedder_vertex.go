package services

import (
	"context"
	"fmt"
	"time"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ayah-search-api/pkg/schema/config"
)

const (
	vertexBatchLimit     = 100
	vertexMaxAttempts    = 3
	vertexRetryBaseDelay = 1 * time.Second

	// vertexRetryBudget bounds one chunk's whole retry sequence, calls and
	// backoff waits included.
	vertexRetryBudget = 10 * time.Second
)

// VertexEmbedder implements Embedder using Google Cloud Vertex AI.
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	endpoint  string
	model     string
	dimension int
}

// NewVertexEmbedder creates a new Vertex AI embedder.
func NewVertexEmbedder(ctx context.Context, cfg *config.Config, model string, dimension int) (*VertexEmbedder, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for Vertex AI embeddings")
	}

	clientEndpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", cfg.GCPLocation)
	client, err := aiplatform.NewPredictionClient(ctx, option.WithEndpoint(clientEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		cfg.GCPProjectID, cfg.GCPLocation, model)

	return &VertexEmbedder{
		client:    client,
		endpoint:  endpoint,
		model:     model,
		dimension: dimension,
	}, nil
}

// Close closes the Vertex AI client.
func (e *VertexEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Model returns the model identifier.
func (e *VertexEmbedder) Model() string { return e.model }

// Dimension returns the configured vector dimension.
func (e *VertexEmbedder) Dimension() int { return e.dimension }

// EmbedBatch generates embeddings for multiple texts. Inputs beyond the
// provider batch limit are chunked internally. A failed call fails every
// text of that chunk uniformly with ErrProviderUnavailable.
func (e *VertexEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([]EmbedResult, error) {
	if len(texts) == 0 {
		return []EmbedResult{}, nil
	}

	results := make([]EmbedResult, 0, len(texts))
	for i := 0; i < len(texts); i += vertexBatchLimit {
		end := i + vertexBatchLimit
		if end > len(texts) {
			end = len(texts)
		}
		results = append(results, e.embedChunk(ctx, texts[i:end], taskType)...)
	}
	return results, nil
}

func (e *VertexEmbedder) embedChunk(ctx context.Context, texts []string, taskType TaskType) []EmbedResult {
	opCtx, cancel := context.WithTimeout(ctx, vertexRetryBudget)
	defer cancel()

	var embeddings [][]float32
	err := retryWithBackoff(opCtx, func() error {
		var callErr error
		embeddings, callErr = e.predict(opCtx, texts, taskType)
		return callErr
	}, vertexMaxAttempts, vertexRetryBaseDelay)

	if err != nil {
		return uniformFailure(len(texts), fmt.Errorf("%w: %v", ErrProviderUnavailable, err))
	}
	if len(embeddings) != len(texts) {
		return uniformFailure(len(texts), fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrProviderUnavailable, len(embeddings), len(texts)))
	}

	results := make([]EmbedResult, len(texts))
	for i := range texts {
		results[i] = EmbedResult{Embedding: embeddings[i]}
	}
	return results
}

func (e *VertexEmbedder) predict(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	instances := make([]*structpb.Value, len(texts))
	for i, text := range texts {
		instance, err := structpb.NewStruct(map[string]interface{}{
			"content":   text,
			"task_type": string(taskType),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create instance: %w", err)
		}
		instances[i] = structpb.NewStructValue(instance)
	}

	req := &aiplatformpb.PredictRequest{
		Endpoint:  e.endpoint,
		Instances: instances,
	}

	resp, err := e.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vertex AI prediction failed: %w", err)
	}

	embeddings := make([][]float32, len(resp.Predictions))
	for i, prediction := range resp.Predictions {
		values, err := predictionValues(prediction)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		embedding := make([]float32, len(values))
		for j, v := range values {
			embedding[j] = float32(v.GetNumberValue())
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

func predictionValues(prediction *structpb.Value) ([]*structpb.Value, error) {
	predStruct := prediction.GetStructValue()
	if predStruct == nil {
		return nil, fmt.Errorf("unexpected prediction format")
	}

	embeddingsField := predStruct.Fields["embeddings"]
	if embeddingsField == nil {
		return nil, fmt.Errorf("no embeddings field in prediction")
	}

	embStruct := embeddingsField.GetStructValue()
	if embStruct == nil {
		return nil, fmt.Errorf("unexpected embeddings format")
	}

	valuesField := embStruct.Fields["values"]
	if valuesField == nil {
		return nil, fmt.Errorf("no values field in embeddings")
	}

	valuesList := valuesField.GetListValue()
	if valuesList == nil {
		return nil, fmt.Errorf("unexpected values format")
	}
	return valuesList.Values, nil
}
