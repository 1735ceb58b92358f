package ai

import (
	"context"
	"fmt"
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
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cloudlab",
		Subsystem: "ai",
		Name:      "judge_duration_seconds",
		Help:      "Duration of vision judge requests",
	}, []string{"provider", "model"})

	judgeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudlab",
		Subsystem: "ai",
		Name:      "judge_failures_total",
		Help:      "Number of vision judge failures",
	}, []string{"provider", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI judge.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIJudge implements Judge against the OpenAI chat completion API.
type OpenAIJudge struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIJudge builds a new judge using the provided configuration.
func NewOpenAIJudge(cfg OpenAIConfig) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1200
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIJudge{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/cloudlab-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_judge").Logger(),
	}, nil
}

// Judge sends the photograph to OpenAI and returns the JSON content.
func (j *OpenAIJudge) Judge(parent context.Context, input VisionInput) (VisionResult, error) {
	ctx, span := j.tracer.Start(parent, "openai.judge", trace.WithAttributes(
		attribute.String("model", j.cfg.Model),
		attribute.Bool("prediction_present", input.Prediction != nil),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       j.cfg.Model,
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: judgeSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: buildUserPrompt(input)},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    input.ImageData,
						Detail: openai.ImageURLDetailAuto,
					}},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := j.client.CreateChatCompletion(ctx, request)
	judgeDuration.WithLabelValues("openai", j.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return VisionResult{}, j.fail(span, fmt.Errorf("openai judge: %w", err))
	}

	if len(resp.Choices) == 0 {
		return VisionResult{}, j.fail(span, fmt.Errorf("no choices returned from openai"))
	}

	content := stripFences(resp.Choices[0].Message.Content)
	if len(content) == 0 {
		return VisionResult{}, j.fail(span, fmt.Errorf("empty content returned from openai"))
	}

	j.logger.Debug().Int("total_tokens", resp.Usage.TotalTokens).Msg("openai judge completed")

	return VisionResult{Content: content, Model: j.cfg.Model, Provider: "openai"}, nil
}

func (j *OpenAIJudge) fail(span trace.Span, err error) error {
	judgeFailures.WithLabelValues("openai", j.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
