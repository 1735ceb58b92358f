package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const judgmentJSON = `{"primaryCloud":"적운","confidence":82,"description":"솜 모양","score":4}`

func TestStripFences(t *testing.T) {
	require.Equal(t, []byte(judgmentJSON), stripFences("```json\n"+judgmentJSON+"\n```"))
	require.Equal(t, []byte(judgmentJSON), stripFences("  "+judgmentJSON+"\n"))
	require.Empty(t, stripFences("   "))
}

func TestBuildUserPrompt(t *testing.T) {
	withoutPrediction := buildUserPrompt(VisionInput{ImageData: "data:image/png;base64,AAAA"})
	require.Contains(t, withoutPrediction, "학생 예측 없음")

	prompt := buildUserPrompt(VisionInput{Prediction: &PredictionHint{CloudType: "적운", Reason: "둥근 모양", ScientificReasoning: "대류"}})
	require.Contains(t, prompt, "적운")
	require.Contains(t, prompt, "둥근 모양")
	require.Contains(t, prompt, "대류")
}

func TestSplitDataURI(t *testing.T) {
	mediaType, data, ok := splitDataURI("data:image/jpeg;base64,/9j/4AAQ")
	require.True(t, ok)
	require.Equal(t, "image/jpeg", mediaType)
	require.Equal(t, "/9j/4AAQ", data)

	_, _, ok = splitDataURI("https://example.com/cloud.jpg")
	require.False(t, ok)
	_, _, ok = splitDataURI("data:image/png,raw")
	require.False(t, ok)
}

func TestAnthropicJudge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var request anthropicRequest
		assert.NoError(t, json.Unmarshal(body, &request))
		if assert.Len(t, request.Messages, 1) && assert.Len(t, request.Messages[0].Content, 2) {
			source := request.Messages[0].Content[0].Source
			assert.Equal(t, "base64", source.Type)
			assert.Equal(t, "image/png", source.MediaType)
		}

		response := map[string]any{
			"content": []map[string]any{{"type": "text", "text": "```json\n" + judgmentJSON + "\n```"}},
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	judge, err := NewAnthropicJudge(AnthropicConfig{APIKey: "secret", BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	result, err := judge.Judge(context.Background(), VisionInput{ImageData: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	require.JSONEq(t, judgmentJSON, string(result.Content))
	require.Equal(t, "anthropic", result.Provider)
}

func TestAnthropicJudgeSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"quota exceeded"}}`))
	}))
	defer server.Close()

	judge, err := NewAnthropicJudge(AnthropicConfig{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = judge.Judge(context.Background(), VisionInput{ImageData: "https://img.test/cloud.jpg"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")

	_, err = judge.Judge(context.Background(), VisionInput{ImageData: "not-an-image"})
	require.Error(t, err)
}

func TestOpenAIJudge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), "image_url")
		assert.Contains(t, string(body), "json_object")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": judgmentJSON}, "finish_reason": "stop"}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	defer server.Close()

	judge, err := NewOpenAIJudge(OpenAIConfig{APIKey: "secret", BaseURL: server.URL + "/v1", Logger: zerolog.Nop()})
	require.NoError(t, err)

	result, err := judge.Judge(context.Background(), VisionInput{ImageData: "https://img.test/cloud.jpg"})
	require.NoError(t, err)
	require.JSONEq(t, judgmentJSON, string(result.Content))
	require.Equal(t, "gpt-4o", result.Model)
}

func TestJudgesRequireKeys(t *testing.T) {
	_, err := NewOpenAIJudge(OpenAIConfig{})
	require.Error(t, err)
	_, err = NewAnthropicJudge(AnthropicConfig{})
	require.Error(t, err)
}
