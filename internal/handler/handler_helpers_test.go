package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/middleware"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func signToken(t *testing.T, subject, email, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["app_metadata"] = map[string]interface{}{"role": role}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedApp(register func(router fiber.Router)) *fiber.App {
	app := fiber.New()
	register(app.Group("/api/test", middleware.JWTProtected(testSecret, auth.NewAdminPolicy(nil))))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}, headers ...string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	switch value := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(value)
	default:
		encoded, err := json.Marshal(value)
		require.NoError(t, err)
		reader = strings.NewReader(string(encoded))
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var decoded envelope
	require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	return resp, decoded
}

func jsonReader(t *testing.T, value interface{}) io.Reader {
	t.Helper()
	encoded, err := json.Marshal(value)
	require.NoError(t, err)
	return strings.NewReader(string(encoded))
}

// validationErr produces the error the services return for an invalid payload.
func validationErr(payload interface{}) error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(payload)
}

type stubAnalysisService struct {
	identity *auth.Identity
	payload  dto.AnalyzeRequest
	response dto.AnalyzeResponse
	err      error
}

func (s *stubAnalysisService) Analyze(_ context.Context, identity *auth.Identity, payload dto.AnalyzeRequest) (dto.AnalyzeResponse, error) {
	s.identity = identity
	s.payload = payload
	return s.response, s.err
}

type stubObservationService struct {
	identity       *auth.Identity
	payload        dto.ObservationCreateRequest
	idempotencyKey string
	targetUserID   string
	saved          dto.ObservationSaveResponse
	listed         []dto.ObservationResponse
	err            error
}

func (s *stubObservationService) Save(_ context.Context, identity *auth.Identity, payload dto.ObservationCreateRequest, key string) (dto.ObservationSaveResponse, error) {
	s.identity = identity
	s.payload = payload
	s.idempotencyKey = key
	return s.saved, s.err
}

func (s *stubObservationService) List(_ context.Context, identity *auth.Identity, targetUserID string) ([]dto.ObservationResponse, error) {
	s.identity = identity
	s.targetUserID = targetUserID
	return s.listed, s.err
}

type stubStatsService struct {
	targetUserID string
	stats        grading.Stats
	err          error
}

func (s *stubStatsService) Get(_ context.Context, _ *auth.Identity, targetUserID string) (grading.Stats, error) {
	s.targetUserID = targetUserID
	return s.stats, s.err
}

func (s *stubStatsService) Invalidate(context.Context, string) {}

type stubProfileService struct {
	profile *dto.ProfileResponse
	err     error
}

func (s *stubProfileService) Get(context.Context, *auth.Identity) (*dto.ProfileResponse, error) {
	return s.profile, s.err
}

func (s *stubProfileService) Upsert(_ context.Context, identity *auth.Identity, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error) {
	if s.err != nil {
		return dto.ProfileResponse{}, s.err
	}
	return dto.ProfileResponse{ID: identity.UserID, Email: identity.Email, ClassName: payload.ClassName}, nil
}

type stubWeatherService struct {
	response dto.WeatherResponse
	err      error
}

func (s *stubWeatherService) Current(_ context.Context, payload dto.WeatherRequest) (dto.WeatherResponse, error) {
	if err := validationErr(payload); err != nil {
		return dto.WeatherResponse{}, err
	}
	return s.response, s.err
}

type stubAdminUserService struct {
	request  dto.AdminUserListRequest
	response dto.AdminUserListResponse
	err      error
}

func (s *stubAdminUserService) List(_ context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	s.request = req
	return s.response, s.err
}
