package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prepflow/internal/logging"
	"prepflow/internal/metrics"
	"prepflow/internal/models"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel           = "gemini-2.0-flash-001"
	DefaultInitialInterval = time.Second
	DefaultMaxInterval     = 10 * time.Second
	DefaultMaxElapsed      = 60 * time.Second
)

// FeedbackGenerator scores an interview transcript.
type FeedbackGenerator interface {
	Generate(ctx context.Context, transcript []models.TranscriptMessage) (*Assessment, error)
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	Categories []Category

	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration

	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

type GeminiGenerator struct {
	client     *genai.Client
	model      string
	categories []Category
	config     *genai.GenerateContentConfig
	newBackoff func() backoff.BackOff
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	// Zero means "no delay" and "retry forever" to backoff; neither is wanted.
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultMaxInterval
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = DefaultMaxElapsed
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:     client,
		model:      cfg.Model,
		categories: cfg.Categories,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.2),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    FeedbackSchema(cfg.Categories),
		},
		newBackoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(cfg.InitialInterval),
				backoff.WithMaxInterval(cfg.MaxInterval),
				backoff.WithMaxElapsedTime(cfg.MaxElapsed),
			)
		},
	}, nil
}

// Generate calls the model, retrying transport failures and malformed output
// with exponential backoff until the elapsed budget or ctx runs out.
func (g *GeminiGenerator) Generate(ctx context.Context, transcript []models.TranscriptMessage) (*Assessment, error) {
	if len(transcript) == 0 {
		return nil, errors.New("gemini: empty transcript")
	}
	lg := logging.FromContext(ctx)
	prompt := BuildPrompt(transcript, g.categories)

	op := func() (*Assessment, error) {
		start := time.Now()
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
		metrics.ObserveAI("generate_feedback", time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("generate content: %w", err)
		}
		text := resp.Text()
		if text == "" {
			return nil, errors.New("generate content: empty response")
		}
		return ParseAssessment(text, g.categories)
	}

	notify := func(err error, wait time.Duration) {
		lg.Warn("gemini attempt failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	}

	assessment, err := backoff.RetryNotifyWithData(op, backoff.WithContext(g.newBackoff(), ctx), notify)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return assessment, nil
}
