package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/handler"
	"github.com/noah-isme/cloudlab-api/internal/service"
)

func TestAnalysisHandler_Success(t *testing.T) {
	isMatch := true
	svc := &stubAnalysisService{response: dto.AnalyzeResponse{
		AnalysisID: "analysis-1",
		Provenance: grading.ProvenanceAuthoritative,
		Judgment:   grading.Judgment{PrimaryCloud: "적운", Confidence: 85},
		IsMatch:    &isMatch,
	}}
	app := protectedApp(handler.NewAnalysisHandler(svc, zerolog.New(io.Discard)).Register)

	resp, body := doRequest(t, app, http.MethodPost, "/api/test", signToken(t, "u1", "u1@school.kr", ""), map[string]interface{}{
		"imageData":  "data:image/png;base64,AAAA",
		"prediction": map[string]string{"cloudType": "적운", "reason": "둥글다"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, body.Success)
	require.Equal(t, "analysis completed", body.Message)

	var data dto.AnalyzeResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, "analysis-1", data.AnalysisID)
	require.True(t, *data.IsMatch)

	require.Equal(t, "u1", svc.identity.UserID)
	require.NotNil(t, svc.payload.Prediction)
	require.Equal(t, "둥글다", svc.payload.Prediction.Reason)
}

func TestAnalysisHandler_Demo(t *testing.T) {
	svc := &stubAnalysisService{response: dto.AnalyzeResponse{Provenance: grading.ProvenanceSynthetic, Synthetic: true}}
	app := protectedApp(handler.NewAnalysisHandler(svc, zerolog.New(io.Discard)).Register)

	resp, body := doRequest(t, app, http.MethodPost, "/api/test", signToken(t, "u1", "", ""), map[string]interface{}{
		"imageData": "data:image/png;base64,AAAA",
		"demo":      true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "demo analysis completed", body.Message)
	require.True(t, svc.payload.Demo)
}

func TestAnalysisHandler_Errors(t *testing.T) {
	cases := []struct {
		name       string
		token      bool
		body       interface{}
		err        error
		statusCode int
		message    string
	}{
		{name: "unauthenticated", body: map[string]string{"imageData": "x"}, statusCode: fiber.StatusUnauthorized},
		{name: "malformed_body", token: true, body: "{", statusCode: fiber.StatusBadRequest, message: "invalid request body"},
		{name: "missing_image", token: true, body: map[string]string{}, err: validationErr(dto.AnalyzeRequest{}), statusCode: fiber.StatusBadRequest, message: "imageData is required"},
		{name: "provider_failure", token: true, body: map[string]string{"imageData": "x"}, err: fmt.Errorf("%w: status 503", service.ErrAnalysisFailed), statusCode: fiber.StatusInternalServerError},
		{name: "unexpected", token: true, body: map[string]string{"imageData": "x"}, err: errors.New("boom"), statusCode: fiber.StatusInternalServerError, message: "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubAnalysisService{err: tc.err}
			app := protectedApp(handler.NewAnalysisHandler(svc, zerolog.New(io.Discard)).Register)

			token := ""
			if tc.token {
				token = signToken(t, "u1", "", "")
			}
			resp, body := doRequest(t, app, http.MethodPost, "/api/test", token, tc.body)
			require.Equal(t, tc.statusCode, resp.StatusCode)
			require.False(t, body.Success)
			if tc.message != "" {
				require.Equal(t, tc.message, body.Message)
			}
		})
	}
}
