package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/observability"
	"github.com/noah-isme/cloudlab-api/pkg/kma"
)

var (
	// ErrUpstreamUnavailable indicates the weather provider failed or is not configured.
	ErrUpstreamUnavailable = errors.New("weather provider unavailable")
	// ErrLocationUnsupported indicates a position outside the KMA forecast grid.
	ErrLocationUnsupported = errors.New("location is outside the weather coverage area")
)

// NowcastProvider fetches current conditions for a grid cell.
type NowcastProvider interface {
	Nowcast(ctx context.Context, grid kma.Grid, base kma.BaseTime) (kma.Nowcast, error)
}

// WeatherService resolves the caller's position into current conditions.
type WeatherService interface {
	Current(ctx context.Context, payload dto.WeatherRequest) (dto.WeatherResponse, error)
}

type weatherService struct {
	provider  NowcastProvider
	cache     *redis.Client
	cacheTTL  time.Duration
	clock     clockwork.Clock
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewWeatherService constructs the weather service. provider and cache may be nil.
func NewWeatherService(provider NowcastProvider, cache *redis.Client, ttl time.Duration, clock clockwork.Clock, validate *validator.Validate, logger zerolog.Logger) WeatherService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &weatherService{
		provider:  provider,
		cache:     cache,
		cacheTTL:  ttl,
		clock:     clock,
		validator: validate,
		logger:    logger.With().Str("component", "weather_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/cloudlab-api/internal/service/weather"),
	}
}

func weatherCacheKey(grid kma.Grid, base kma.BaseTime) string {
	return fmt.Sprintf("weather:%d:%d:%s%s", grid.X, grid.Y, base.Date, base.Time)
}

func (s *weatherService) Current(ctx context.Context, payload dto.WeatherRequest) (dto.WeatherResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WeatherResponse{}, err
	}

	grid, err := kma.Locate(*payload.Lat, *payload.Lon)
	if err != nil {
		return dto.WeatherResponse{}, fmt.Errorf("%w: %w", ErrLocationUnsupported, err)
	}
	base := kma.BaseTimeAt(s.clock.Now())

	ctx, span := s.tracer.Start(ctx, "weather.current", trace.WithAttributes(
		attribute.Int("weather.grid_x", grid.X),
		attribute.Int("weather.grid_y", grid.Y),
		attribute.String("weather.base", base.Date+base.Time),
	))
	defer span.End()

	cacheKey := weatherCacheKey(grid, base)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.WeatherResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.WeatherLookups().WithLabelValues("cache").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read weather cache")
		}
	}

	if s.provider == nil {
		span.SetStatus(codes.Error, "provider not configured")
		return dto.WeatherResponse{}, fmt.Errorf("%w: provider not configured", ErrUpstreamUnavailable)
	}

	nowcast, err := s.provider.Nowcast(ctx, grid, base)
	if err != nil {
		observability.WeatherLookups().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		s.logger.Error().Err(err).Int("nx", grid.X).Int("ny", grid.Y).Str("base_date", base.Date).Str("base_time", base.Time).Msg("weather lookup failed")
		return dto.WeatherResponse{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	observability.WeatherLookups().WithLabelValues("provider").Inc()

	response := newWeatherResponse(nowcast)

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store weather cache")
			}
		}
	}

	span.SetStatus(codes.Ok, "resolved")
	return response, nil
}

func newWeatherResponse(nowcast kma.Nowcast) dto.WeatherResponse {
	response := dto.WeatherResponse{
		Grid:          nowcast.Grid,
		BaseDate:      nowcast.BaseDate,
		BaseTime:      nowcast.BaseTime,
		Temperature:   nowcast.Temperature,
		Humidity:      nowcast.Humidity,
		Precipitation: nowcast.Precipitation,
		PrecipType:    nowcast.PrecipType,
		WindSpeed:     nowcast.WindSpeed,
		WindDirection: nowcast.WindDirection,
	}
	if nowcast.PrecipType != nil {
		response.PrecipLabel = kma.PrecipLabel(*nowcast.PrecipType)
	}
	response.Summary = weatherSummary(response)
	return response
}

// weatherSummary renders the free-text weather line stored with observations.
func weatherSummary(response dto.WeatherResponse) string {
	parts := make([]string, 0, 4)
	if response.Temperature != nil {
		parts = append(parts, fmt.Sprintf("기온 %.1f°C", *response.Temperature))
	}
	if response.Humidity != nil {
		parts = append(parts, fmt.Sprintf("습도 %.0f%%", *response.Humidity))
	}
	if response.PrecipLabel != "" {
		precipitation := "강수 " + response.PrecipLabel
		if response.Precipitation != nil && *response.Precipitation > 0 {
			precipitation += fmt.Sprintf(" (%.1fmm)", *response.Precipitation)
		}
		parts = append(parts, precipitation)
	}
	if response.WindSpeed != nil {
		parts = append(parts, fmt.Sprintf("풍속 %.1fm/s", *response.WindSpeed))
	}
	return strings.Join(parts, ", ")
}
