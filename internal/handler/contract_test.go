package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/handler"
	"github.com/noah-isme/cloudlab-api/internal/models"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func validateContract(t *testing.T, schema *jsonschema.Schema, app *fiber.App, req *http.Request) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestObservationListContract(t *testing.T) {
	score := 4
	graded := grading.BuildObservation(
		grading.Prediction{CloudType: "적운", Reason: "솜처럼 둥글다"},
		grading.Authoritative(grading.Judgment{PrimaryCloud: "적운", Confidence: 85, Description: "뭉게구름", Score: &score}),
		"https://img.test/a.jpg", true,
	)
	graded.ID, graded.UserID, graded.CreatedAt = "obs-1", "u1", time.Now().UTC()

	demo := grading.BuildObservation(
		grading.Prediction{CloudType: "층운"},
		grading.Synthetic(grading.Judgment{PrimaryCloud: "권운", Confidence: 80}),
		"https://img.test/b.jpg", false,
	)
	demo.ID, demo.UserID, demo.CreatedAt = "obs-2", "u1", time.Now().UTC()

	svc := &stubObservationService{listed: dto.NewObservationResponses([]models.Observation{graded, demo})}
	app := protectedApp(handler.NewObservationHandler(svc, zerolog.Nop()).Register)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "", ""))
	validateContract(t, compileSchema(t, "observation_list.schema.json"), app, req)
}

func TestStatsContract(t *testing.T) {
	svc := &stubStatsService{stats: grading.AggregateStats(nil)}
	app := protectedApp(handler.NewStatsHandler(svc, zerolog.Nop()).Register)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "", ""))
	validateContract(t, compileSchema(t, "stats.schema.json"), app, req)
}

func TestAnalysisContract(t *testing.T) {
	generator := grading.NewSyntheticGenerator(3)
	assessment := generator.Generate(grading.Prediction{CloudType: "적운"})
	svc := &stubAnalysisService{response: dto.AnalyzeResponse{
		AnalysisID: "analysis-1",
		Provenance: assessment.Provenance,
		Synthetic:  true,
		Judgment:   assessment.Judgment,
		Notice:     "demo",
	}}
	app := protectedApp(handler.NewAnalysisHandler(svc, zerolog.Nop()).Register)

	req := httptest.NewRequest(http.MethodPost, "/api/test", jsonReader(t, map[string]interface{}{"imageData": "x", "demo": true}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "", ""))
	validateContract(t, compileSchema(t, "analysis.schema.json"), app, req)
}
