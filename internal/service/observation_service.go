package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/models"
	"github.com/noah-isme/cloudlab-api/internal/observability"
	"github.com/noah-isme/cloudlab-api/internal/repository"
)

var (
	// ErrMissingJudgment indicates a save without an analysis id or inline judgment.
	ErrMissingJudgment = errors.New("analysisId or aiPrediction is required")
	// ErrForbidden indicates the caller may not act on another user's data.
	ErrForbidden = errors.New("forbidden")
)

// ObservationCreatedSubject is the NATS subject observation events are published on.
const ObservationCreatedSubject = "cloudlab.observations.created"

// StatsInvalidator drops cached statistics after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// ObservationService records and lists graded observations.
type ObservationService interface {
	Save(ctx context.Context, identity *auth.Identity, payload dto.ObservationCreateRequest, idempotencyKey string) (dto.ObservationSaveResponse, error)
	List(ctx context.Context, identity *auth.Identity, targetUserID string) ([]dto.ObservationResponse, error)
}

type observationService struct {
	repo      repository.ObservationRepository
	analyses  AnalysisStore
	images    ImageService
	stats     StatsInvalidator
	nats      *nats.Conn
	matchMode grading.MatchMode
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	nodeID    string
}

type observationEvent struct {
	Source        string    `json:"source"`
	ObservationID string    `json:"observation_id"`
	UserID        string    `json:"user_id"`
	CloudTypeAI   string    `json:"cloud_type_ai"`
	IsMatch       bool      `json:"is_match"`
	Provenance    string    `json:"provenance"`
	Score         *int      `json:"score,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

// NewObservationService constructs the observation service. analyses, stats and natsConn are optional.
func NewObservationService(repo repository.ObservationRepository, analyses AnalysisStore, images ImageService, stats StatsInvalidator, natsConn *nats.Conn, matchMode grading.MatchMode, validate *validator.Validate, logger zerolog.Logger) ObservationService {
	return &observationService{
		repo:      repo,
		analyses:  analyses,
		images:    images,
		stats:     stats,
		nats:      natsConn,
		matchMode: matchMode,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "observation_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/cloudlab-api/internal/service/observation"),
		nodeID:    uuid.NewString(),
	}
}

func (s *observationService) Save(ctx context.Context, identity *auth.Identity, payload dto.ObservationCreateRequest, idempotencyKey string) (dto.ObservationSaveResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ObservationSaveResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "observations.save", trace.WithAttributes(
		attribute.String("observation.user_id", identity.UserID),
		attribute.Bool("observation.analysis_ref", payload.AnalysisID != ""),
	))
	defer span.End()

	assessment, err := s.resolveAssessment(ctx, identity, payload)
	if err != nil {
		observability.ObservationSaves().WithLabelValues("rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "judgment rejected")
		return dto.ObservationSaveResponse{}, err
	}

	prediction := s.sanitizePrediction(payload.UserPrediction.ToPrediction())
	key := s.idempotencyKey(identity.UserID, idempotencyKey, payload, prediction)

	if existing, err := s.repo.FindByIdempotencyKey(ctx, key); err == nil {
		observability.ObservationSaves().WithLabelValues("duplicate").Inc()
		span.SetAttributes(attribute.Bool("observation.duplicate", true))
		return dto.ObservationSaveResponse{Observation: dto.NewObservationResponse(existing), Duplicate: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "idempotency lookup failed")
		return dto.ObservationSaveResponse{}, err
	}

	imageURL, err := s.images.Resolve(ctx, identity.UserID, payload.ImageURL)
	if err != nil {
		observability.ObservationSaves().WithLabelValues("rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "image rejected")
		return dto.ObservationSaveResponse{}, err
	}

	isMatch := s.matchMode.Match(prediction, assessment.Judgment)
	observation := grading.BuildObservation(prediction, assessment, imageURL, isMatch)
	observation.UserID = identity.UserID
	observation.IdempotencyKey = &key

	if err := s.repo.Create(ctx, &observation); err != nil {
		if errors.Is(err, repository.ErrDuplicateObservation) {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, key)
			if findErr == nil {
				observability.ObservationSaves().WithLabelValues("duplicate").Inc()
				return dto.ObservationSaveResponse{Observation: dto.NewObservationResponse(existing), Duplicate: true}, nil
			}
			err = errors.Join(err, findErr)
		}
		observability.ObservationSaves().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ObservationSaveResponse{}, err
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, identity.UserID)
	}
	if err := s.publish(observation); err != nil {
		s.logger.Warn().Err(err).Str("observation_id", observation.ID).Msg("failed to publish observation event")
	}

	observability.ObservationSaves().WithLabelValues(string(assessment.Provenance)).Inc()
	span.SetAttributes(
		attribute.String("observation.id", observation.ID),
		attribute.Bool("observation.is_match", isMatch),
		attribute.String("observation.provenance", observation.Provenance),
	)
	span.SetStatus(codes.Ok, "stored")

	return dto.ObservationSaveResponse{Observation: dto.NewObservationResponse(observation)}, nil
}

func (s *observationService) List(ctx context.Context, identity *auth.Identity, targetUserID string) ([]dto.ObservationResponse, error) {
	userID := identity.UserID
	if target := strings.TrimSpace(targetUserID); target != "" && target != userID {
		if !identity.IsAdmin() {
			return nil, ErrForbidden
		}
		userID = target
	}

	observations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewObservationResponses(observations), nil
}

// resolveAssessment prefers the stored analysis. Only a stored analysis is authoritative;
// an inline judgment is validated and persisted as unverified.
func (s *observationService) resolveAssessment(ctx context.Context, identity *auth.Identity, payload dto.ObservationCreateRequest) (grading.Assessment, error) {
	if payload.AnalysisID != "" && s.analyses != nil {
		assessment, err := s.analyses.Load(ctx, payload.AnalysisID, identity.UserID)
		if err == nil {
			return assessment, nil
		}
		if !errors.Is(err, ErrAnalysisNotFound) || payload.AIPrediction == nil {
			return grading.Assessment{}, err
		}
		s.logger.Debug().Str("analysis_id", payload.AnalysisID).Msg("analysis expired, using inline judgment")
	}

	if payload.AIPrediction == nil {
		if payload.AnalysisID != "" {
			return grading.Assessment{}, ErrAnalysisNotFound
		}
		return grading.Assessment{}, ErrMissingJudgment
	}

	judgment, err := grading.ValidateJudgment(payload.AIPrediction)
	if err != nil {
		return grading.Assessment{}, err
	}
	return grading.Unverified(judgment), nil
}

// sanitizePrediction strips markup from free text. The cloud label is left untouched
// so literal matching sees exactly what the learner chose.
func (s *observationService) sanitizePrediction(prediction grading.Prediction) grading.Prediction {
	clean := func(value string) string {
		return strings.TrimSpace(s.sanitizer.Sanitize(value))
	}
	prediction.Reason = clean(prediction.Reason)
	prediction.ScientificReasoning = clean(prediction.ScientificReasoning)
	prediction.Date = clean(prediction.Date)
	prediction.Time = clean(prediction.Time)
	prediction.Location = clean(prediction.Location)
	prediction.Weather = clean(prediction.Weather)
	return prediction
}

// idempotencyKey scopes a client key to the caller, or derives one from the save's content.
func (s *observationService) idempotencyKey(userID, clientKey string, payload dto.ObservationCreateRequest, prediction grading.Prediction) string {
	hash := sha256.New()
	write := func(parts ...string) {
		for _, part := range parts {
			hash.Write([]byte(part))
			hash.Write([]byte{0})
		}
	}

	write(userID)
	if key := strings.TrimSpace(clientKey); key != "" {
		write("client", key)
	} else {
		write("content", payload.ImageURL, payload.AnalysisID, prediction.CloudType, prediction.Reason, prediction.ScientificReasoning)
		if payload.AnalysisID == "" && payload.AIPrediction != nil {
			if encoded, err := json.Marshal(payload.AIPrediction); err == nil {
				write(string(encoded))
			}
		}
	}
	return hex.EncodeToString(hash.Sum(nil))
}

func (s *observationService) publish(observation models.Observation) error {
	if s.nats == nil {
		return nil
	}

	payload, err := json.Marshal(observationEvent{
		Source:        s.nodeID,
		ObservationID: observation.ID,
		UserID:        observation.UserID,
		CloudTypeAI:   observation.CloudTypeAI,
		IsMatch:       observation.IsMatch,
		Provenance:    observation.Provenance,
		Score:         observation.ScoreAI,
		SentAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.nats.Publish(ObservationCreatedSubject, payload)
}
