package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "realorai",
		Subsystem: "ai",
		Name:      "image_generation_duration_seconds",
		Help:      "Duration of AI image generation requests",
	}, []string{"model"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "realorai",
		Subsystem: "ai",
		Name:      "image_generation_failures_total",
		Help:      "Number of AI image generation failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI image generator.
type OpenAIConfig struct {
	APIKey string
	Model  string
	Size   string
	Logger zerolog.Logger
}

// OpenAIGenerator produces contest images from text prompts using the OpenAI
// image API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = openai.CreateImageModelDallE3
	}

	if cfg.Size == "" {
		cfg.Size = openai.CreateImageSize1024x1024
	}

	return &OpenAIGenerator{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		tracer: otel.Tracer("realorai/ai"),
		logger: cfg.Logger.With().Str("component", "openai_generator").Logger(),
	}, nil
}

// GenerateImage renders the prompt and returns the image bytes as a reader.
func (g *OpenAIGenerator) GenerateImage(ctx context.Context, prompt string) (io.Reader, error) {
	ctx, span := g.tracer.Start(ctx, "ai.generate_image",
		trace.WithAttributes(attribute.String("ai.model", g.cfg.Model)))
	defer span.End()

	start := time.Now()
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.cfg.Model,
		Size:           g.cfg.Size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	generationDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		generationFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "image request failed")
		return nil, fmt.Errorf("openai image request: %w", err)
	}

	if len(resp.Data) == 0 {
		generationFailures.WithLabelValues(g.cfg.Model).Inc()
		return nil, fmt.Errorf("openai returned no image data")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}

	g.logger.Info().Str("model", g.cfg.Model).Int("bytes", len(raw)).Msg("ai image generated")

	return bytes.NewReader(raw), nil
}
