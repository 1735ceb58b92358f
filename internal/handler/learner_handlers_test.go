package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/handler"
	"github.com/noah-isme/cloudlab-api/internal/models"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/pkg/kma"
)

func TestStatsHandler(t *testing.T) {
	svc := &stubStatsService{stats: grading.Stats{Total: 4, Correct: 3, AccuracyPercent: 75, TotalScore: 14}}
	app := protectedApp(handler.NewStatsHandler(svc, zerolog.New(io.Discard)).Register)

	resp, body := doRequest(t, app, http.MethodGet, "/api/test", signToken(t, "u1", "", ""), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data map[string]int
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, map[string]int{"totalObservations": 4, "correctPredictions": 3, "accuracy": 75, "totalScore": 14}, data)

	svc.err = service.ErrForbidden
	resp, _ = doRequest(t, app, http.MethodGet, "/api/test?userId=u2", signToken(t, "u1", "", ""), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "u2", svc.targetUserID)

	svc.err = errors.New("db down")
	resp, _ = doRequest(t, app, http.MethodGet, "/api/test", signToken(t, "u1", "", ""), nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestProfileHandler(t *testing.T) {
	svc := &stubProfileService{}
	app := protectedApp(handler.NewProfileHandler(svc, zerolog.New(io.Discard)).Register)
	token := signToken(t, "u1", "u1@school.kr", "")

	resp, body := doRequest(t, app, http.MethodGet, "/api/test", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "profile not set", body.Message)
	require.Empty(t, body.Data)

	svc.profile = &dto.ProfileResponse{ID: "u1", ClassName: models.ClassGeneral}
	resp, body = doRequest(t, app, http.MethodGet, "/api/test", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body.Data), models.ClassGeneral)

	resp, body = doRequest(t, app, http.MethodPost, "/api/test", token, map[string]string{"className": models.ClassSpring2026})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var saved dto.ProfileResponse
	require.NoError(t, json.Unmarshal(body.Data, &saved))
	require.Equal(t, "u1@school.kr", saved.Email)
	require.Equal(t, models.ClassSpring2026, saved.ClassName)

	svc.err = service.ErrInvalidClassName
	resp, body = doRequest(t, app, http.MethodPost, "/api/test", token, map[string]string{"className": "3반"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body.Message, models.ClassGeneral)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/test", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWeatherHandler(t *testing.T) {
	temperature := 18.5
	svc := &stubWeatherService{response: dto.WeatherResponse{Grid: kma.Grid{X: 60, Y: 127}, Temperature: &temperature, Summary: "기온 18.5°C"}}
	app := protectedApp(handler.NewWeatherHandler(svc, zerolog.New(io.Discard)).Register)
	token := signToken(t, "u1", "", "")

	resp, body := doRequest(t, app, http.MethodPost, "/api/test", token, map[string]float64{"lat": 37.5665, "lon": 126.978})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var data dto.WeatherResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, kma.Grid{X: 60, Y: 127}, data.Grid)

	resp, body = doRequest(t, app, http.MethodPost, "/api/test", token, map[string]float64{"lat": 37.5665})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "lon is required", body.Message)

	svc.err = fmt.Errorf("%w: %v", service.ErrLocationUnsupported, kma.ErrOutsideGrid)
	resp, _ = doRequest(t, app, http.MethodPost, "/api/test", token, map[string]float64{"lat": -90, "lon": 126})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	svc.err = fmt.Errorf("%w: %v", service.ErrUpstreamUnavailable, kma.ErrResult)
	resp, _ = doRequest(t, app, http.MethodPost, "/api/test", token, map[string]float64{"lat": 37.5665, "lon": 126.978})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestAdminUserHandler(t *testing.T) {
	svc := &stubAdminUserService{response: dto.AdminUserListResponse{
		Users:      []dto.AdminUserResponse{{ID: "u1", ClassName: models.ClassGeneral, ObservationCount: 3}},
		Pagination: dto.PaginationMeta{Page: 2, PageSize: 10, TotalItems: 11, TotalPages: 2},
	}}
	app := fiber.New()
	handler.NewAdminUserHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/admin/users"))

	resp, body := doRequest(t, app, http.MethodGet, "/api/admin/users?page=2&page_size=10&className="+url.QueryEscape(models.ClassGeneral), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, dto.AdminUserListRequest{Page: 2, PageSize: 10, ClassName: models.ClassGeneral}, svc.request)

	var data dto.AdminUserListResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, int64(3), data.Users[0].ObservationCount)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/admin/users?page=abc", "", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
