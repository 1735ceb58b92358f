package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/observability"
	"github.com/noah-isme/cloudlab-api/pkg/ai"
)

var (
	// ErrAnalysisFailed indicates the vision provider failed or returned unusable content.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrAnalysisNotFound indicates the referenced analysis expired or belongs to someone else.
	ErrAnalysisNotFound = errors.New("analysis not found")
)

const (
	syntheticNotice = "데모 모드 결과입니다. 실제 AI 판정이 아니므로 기록 시 데모로 표시됩니다."
	judgeTimeout    = 60 * time.Second
)

// AnalysisService classifies photographs with the vision judge.
type AnalysisService interface {
	Analyze(ctx context.Context, identity *auth.Identity, payload dto.AnalyzeRequest) (dto.AnalyzeResponse, error)
}

type analysisService struct {
	judge     ai.Judge
	store     AnalysisStore
	synthetic *grading.SyntheticGenerator
	matchMode grading.MatchMode
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAnalysisService constructs the analysis service. judge may be nil, in which case
// only demo analyses are served.
func NewAnalysisService(judge ai.Judge, store AnalysisStore, synthetic *grading.SyntheticGenerator, matchMode grading.MatchMode, validate *validator.Validate, logger zerolog.Logger) AnalysisService {
	return &analysisService{
		judge:     judge,
		store:     store,
		synthetic: synthetic,
		matchMode: matchMode,
		validator: validate,
		logger:    logger.With().Str("component", "analysis_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/cloudlab-api/internal/service/analysis"),
	}
}

func (s *analysisService) Analyze(ctx context.Context, identity *auth.Identity, payload dto.AnalyzeRequest) (dto.AnalyzeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnalyzeResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "analysis.analyze", trace.WithAttributes(
		attribute.Bool("analysis.demo", payload.Demo),
		attribute.Bool("analysis.prediction_present", payload.Prediction != nil),
	))
	defer span.End()

	var prediction *grading.Prediction
	if payload.Prediction != nil {
		converted := payload.Prediction.ToPrediction()
		prediction = &converted
	}

	var assessment grading.Assessment
	if payload.Demo {
		var user grading.Prediction
		if prediction != nil {
			user = *prediction
		}
		assessment = s.synthetic.Generate(user)
	} else {
		judgment, err := s.judgeImage(ctx, payload.ImageData, prediction)
		if err != nil {
			observability.Analyses().WithLabelValues(string(grading.ProvenanceAuthoritative), "failed").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "judge failed")
			return dto.AnalyzeResponse{}, err
		}
		assessment = grading.Authoritative(judgment)
	}

	response := dto.AnalyzeResponse{
		AnalysisID: uuid.NewString(),
		Provenance: assessment.Provenance,
		Synthetic:  !assessment.IsAuthoritative(),
		Judgment:   assessment.Judgment,
	}
	if response.Synthetic {
		response.Notice = syntheticNotice
	}
	if prediction != nil {
		isMatch := s.matchMode.Match(*prediction, assessment.Judgment)
		response.IsMatch = &isMatch
		if breakdown, ok := grading.Breakdown(assessment.Judgment, isMatch); ok {
			response.Rubric = &breakdown
		}
	}

	if s.store != nil {
		if err := s.store.Save(ctx, response.AnalysisID, identity.UserID, assessment); err != nil {
			s.logger.Warn().Err(err).Str("analysis_id", response.AnalysisID).Msg("failed to store analysis")
			response.AnalysisID = ""
		}
	} else {
		response.AnalysisID = ""
	}

	observability.Analyses().WithLabelValues(string(assessment.Provenance), "ok").Inc()
	span.SetAttributes(
		attribute.String("analysis.provenance", string(assessment.Provenance)),
		attribute.String("analysis.primary_cloud", assessment.Judgment.PrimaryCloud),
	)
	span.SetStatus(codes.Ok, "judged")

	return response, nil
}

func (s *analysisService) judgeImage(ctx context.Context, imageData string, prediction *grading.Prediction) (grading.Judgment, error) {
	if s.judge == nil {
		return grading.Judgment{}, fmt.Errorf("%w: vision provider not configured", ErrAnalysisFailed)
	}

	input := ai.VisionInput{ImageData: imageData}
	if prediction != nil {
		input.Prediction = &ai.PredictionHint{
			CloudType:           prediction.CloudType,
			Reason:              prediction.Reason,
			ScientificReasoning: prediction.ScientificReasoning,
		}
	}

	judgeCtx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	result, err := s.judge.Judge(judgeCtx, input)
	if err != nil {
		s.logger.Error().Err(err).Msg("vision judge request failed")
		return grading.Judgment{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	judgment, err := grading.ParseJudgment(result.Content)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", result.Provider).Str("model", result.Model).Msg("vision judge returned unusable content")
		return grading.Judgment{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return judgment, nil
}
