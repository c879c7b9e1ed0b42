package docai

import (
	"context"
	"fmt"

	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

// GeminiClient talks to the Gemini API for document extraction and
// transaction categorization.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	rules  Rules
	logger logging.Logger
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a client for the given model name.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, rules Rules, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(modelName),
		rules:  rules,
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// ExtractStatement sends a document to the model and returns the extracted
// statement text, one transaction per line.
func (g *GeminiClient) ExtractStatement(ctx context.Context, data []byte, mimeType string) (string, error) {
	g.logger.Debug("Sending document for extraction",
		logging.Field{Key: "mime_type", Value: mimeType},
		logging.Field{Key: "bytes", Value: len(data)})

	resp, err := g.model.GenerateContent(ctx,
		genai.Text(ExtractionPrompt()),
		genai.Blob{MIMEType: mimeType, Data: data})
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return text, nil
}

// CategorizeChunk sends one chunk of transactions for categorization and
// decodes the model's JSON response into a validated ChunkResult.
func (g *GeminiClient) CategorizeChunk(ctx context.Context, transactions []models.Transaction, housingReference decimal.Decimal) (models.ChunkResult, error) {
	prompt, err := CategorizationPrompt(transactions, housingReference, g.rules)
	if err != nil {
		return models.ChunkResult{}, err
	}

	g.logger.Debug("Sending chunk for categorization",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.ChunkResult{}, fmt.Errorf("categorization request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return models.ChunkResult{}, err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return models.ChunkResult{}, err
	}

	return DecodeChunkResult(raw)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
