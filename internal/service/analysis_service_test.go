package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
)

const gradedContent = `{"primaryCloud":"적운","cloudTypes":[{"name":"적운","confidence":85},{"name":"층적운","confidence":30}],"confidence":85,"description":"솜 모양의 뭉게구름","score":4,"scoreBreakdown":{"participation":1,"typeMatch":1,"visualReasoning":2,"scientificReasoning":0},"gradingFeedback":"좋아요"}`

func TestAnalysisServiceAuthoritativeJudgment(t *testing.T) {
	_, redisClient := setupRedis(t)
	store := NewRedisAnalysisStore(redisClient, time.Minute)
	judge := &stubJudge{content: gradedContent}

	svc := NewAnalysisService(judge, store, grading.NewSyntheticGenerator(1), grading.MatchLiteral, newValidator(), zerolog.Nop())

	response, err := svc.Analyze(context.Background(), learner("u1"), dto.AnalyzeRequest{
		ImageData:  "data:image/png;base64,AAAA",
		Prediction: &dto.PredictionPayload{CloudType: "적운", Reason: "둥근 모양"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.AnalysisID)
	require.Equal(t, grading.ProvenanceAuthoritative, response.Provenance)
	require.False(t, response.Synthetic)
	require.Empty(t, response.Notice)
	require.Equal(t, "적운", response.Judgment.PrimaryCloud)
	require.Len(t, response.Judgment.CloudTypes, 2)
	require.NotNil(t, response.IsMatch)
	require.True(t, *response.IsMatch)
	require.NotNil(t, response.Rubric)
	require.False(t, response.Rubric.Inferred)
	require.Equal(t, 4, response.Rubric.Total)

	require.NotNil(t, judge.last.Prediction)
	require.Equal(t, "둥근 모양", judge.last.Prediction.Reason)

	stored, err := store.Load(context.Background(), response.AnalysisID, "u1")
	require.NoError(t, err)
	require.True(t, stored.IsAuthoritative())
	require.Equal(t, 4, *stored.Judgment.Score)

	_, err = store.Load(context.Background(), response.AnalysisID, "someone-else")
	require.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestAnalysisServiceWithoutPrediction(t *testing.T) {
	judge := &stubJudge{content: `{"cloudType":"권운","confidence":70,"description":"새털 모양"}`}
	svc := NewAnalysisService(judge, nil, grading.NewSyntheticGenerator(1), grading.MatchLiteral, newValidator(), zerolog.Nop())

	response, err := svc.Analyze(context.Background(), learner("u1"), dto.AnalyzeRequest{ImageData: "https://img.test/a.jpg"})
	require.NoError(t, err)
	require.Empty(t, response.AnalysisID)
	require.Nil(t, response.IsMatch)
	require.Nil(t, response.Rubric)
	require.Nil(t, judge.last.Prediction)
	require.Equal(t, "권운", response.Judgment.PrimaryCloud)
	require.Equal(t, "새털 모양", response.Judgment.Description)
}

func TestAnalysisServiceFailures(t *testing.T) {
	ctx := context.Background()
	request := dto.AnalyzeRequest{ImageData: "data:image/png;base64,AAAA"}

	failing := NewAnalysisService(&stubJudge{err: errors.New("status 503")}, nil, grading.NewSyntheticGenerator(1), grading.MatchLiteral, newValidator(), zerolog.Nop())
	_, err := failing.Analyze(ctx, learner("u1"), request)
	require.ErrorIs(t, err, ErrAnalysisFailed)

	unparsable := NewAnalysisService(&stubJudge{content: "구름입니다"}, nil, grading.NewSyntheticGenerator(1), grading.MatchLiteral, newValidator(), zerolog.Nop())
	_, err = unparsable.Analyze(ctx, learner("u1"), request)
	require.ErrorIs(t, err, ErrAnalysisFailed)

	outOfRange := NewAnalysisService(&stubJudge{content: `{"primaryCloud":"적운","score":9}`}, nil, grading.NewSyntheticGenerator(1), grading.MatchLiteral, newValidator(), zerolog.Nop())
	_, err = outOfRange.Analyze(ctx, learner("u1"), request)
	require.ErrorIs(t, err, ErrAnalysisFailed)

	unconfigured := NewAnalysisService(nil, nil, grading.NewSyntheticGenerator(1), grading.MatchLiteral, newValidator(), zerolog.Nop())
	_, err = unconfigured.Analyze(ctx, learner("u1"), request)
	require.ErrorIs(t, err, ErrAnalysisFailed)

	_, err = unconfigured.Analyze(ctx, learner("u1"), dto.AnalyzeRequest{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalysisServiceDemoIsSynthetic(t *testing.T) {
	_, redisClient := setupRedis(t)
	store := NewRedisAnalysisStore(redisClient, time.Minute)
	judge := &stubJudge{content: gradedContent}
	svc := NewAnalysisService(judge, store, grading.NewSyntheticGenerator(7), grading.MatchLiteral, newValidator(), zerolog.Nop())

	response, err := svc.Analyze(context.Background(), learner("u1"), dto.AnalyzeRequest{
		ImageData:  "data:image/png;base64,AAAA",
		Prediction: &dto.PredictionPayload{CloudType: "층운"},
		Demo:       true,
	})
	require.NoError(t, err)
	require.Zero(t, judge.calls.Load())
	require.True(t, response.Synthetic)
	require.Equal(t, grading.ProvenanceSynthetic, response.Provenance)
	require.NotEmpty(t, response.Notice)
	require.Nil(t, response.Judgment.Score)
	require.Nil(t, response.Rubric)
	require.True(t, grading.IsKnownClass(response.Judgment.PrimaryCloud))

	stored, err := store.Load(context.Background(), response.AnalysisID, "u1")
	require.NoError(t, err)
	require.False(t, stored.IsAuthoritative())
}
