package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicConfig configures the Anthropic Messages API judge.
type AnthropicConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// AnthropicJudge implements Judge against the Anthropic Messages API.
type AnthropicJudge struct {
	cfg    AnthropicConfig
	http   *http.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewAnthropicJudge constructs a judge.
func NewAnthropicJudge(cfg AnthropicConfig) (*AnthropicJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-latest"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1200
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &AnthropicJudge{
		cfg:    cfg,
		http:   httpClient,
		tracer: otel.Tracer("github.com/noah-isme/cloudlab-api/pkg/ai/anthropic"),
		logger: cfg.Logger.With().Str("component", "anthropic_judge").Logger(),
	}, nil
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Judge sends the photograph to Anthropic and returns the JSON content.
func (a *AnthropicJudge) Judge(parent context.Context, input VisionInput) (VisionResult, error) {
	ctx, span := a.tracer.Start(parent, "anthropic.judge", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.Bool("prediction_present", input.Prediction != nil),
	))
	defer span.End()

	image, err := imageSource(input.ImageData)
	if err != nil {
		return VisionResult{}, a.fail(span, err)
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    judgeSystemPrompt,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicBlock{
				{Type: "image", Source: image},
				{Type: "text", Text: buildUserPrompt(input)},
			},
		}},
	})
	if err != nil {
		return VisionResult{}, a.fail(span, fmt.Errorf("encode anthropic request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(a.cfg.BaseURL, "/")+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return VisionResult{}, a.fail(span, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := a.http.Do(req)
	judgeDuration.WithLabelValues("anthropic", a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return VisionResult{}, a.fail(span, fmt.Errorf("anthropic judge: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return VisionResult{}, a.fail(span, fmt.Errorf("read anthropic response: %w", err))
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return VisionResult{}, a.fail(span, fmt.Errorf("decode anthropic response: %w", err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		message := http.StatusText(resp.StatusCode)
		if decoded.Error != nil {
			message = decoded.Error.Message
		}
		return VisionResult{}, a.fail(span, fmt.Errorf("anthropic judge: status %d: %s", resp.StatusCode, message))
	}

	for _, block := range decoded.Content {
		if block.Type == "text" {
			if content := stripFences(block.Text); len(content) > 0 {
				return VisionResult{Content: content, Model: a.cfg.Model, Provider: "anthropic"}, nil
			}
		}
	}

	return VisionResult{}, a.fail(span, fmt.Errorf("no text content returned from anthropic"))
}

func (a *AnthropicJudge) fail(span trace.Span, err error) error {
	judgeFailures.WithLabelValues("anthropic", a.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func imageSource(imageData string) (*anthropicSource, error) {
	if mediaType, data, ok := splitDataURI(imageData); ok {
		return &anthropicSource{Type: "base64", MediaType: mediaType, Data: data}, nil
	}
	if strings.HasPrefix(imageData, "https://") || strings.HasPrefix(imageData, "http://") {
		return &anthropicSource{Type: "url", URL: imageData}, nil
	}
	return nil, fmt.Errorf("image must be a base64 data URI or URL")
}

// splitDataURI splits "data:<media>;base64,<payload>".
func splitDataURI(value string) (string, string, bool) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return "", "", false
	}
	header, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", false
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok || mediaType == "" {
		return "", "", false
	}
	return mediaType, data, true
}
