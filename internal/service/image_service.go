package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrImageTooLarge indicates the decoded photograph exceeded the configured limit.
	ErrImageTooLarge = errors.New("image exceeds maximum allowed size")
	// ErrImageTypeNotAllowed indicates the payload is not a supported image format.
	ErrImageTypeNotAllowed = errors.New("image type not allowed")
	// ErrInvalidImage indicates the image reference is neither a data URI nor an http(s) URL.
	ErrInvalidImage = errors.New("image must be a base64 data URI or an http(s) URL")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ImageService turns a submitted image reference into the URL persisted with an observation.
type ImageService interface {
	Resolve(ctx context.Context, userID, image string) (string, error)
}

type imageService struct {
	storage FileStorage
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// DefaultMaxImageMB caps a decoded observation image when no size is configured.
const DefaultMaxImageMB = 10

// NewImageService builds the image resolver. With a nil storage, validated data URIs are kept inline.
func NewImageService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) ImageService {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxImageMB
	}
	return &imageService{
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "image_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/cloudlab-api/internal/service/image"),
	}
}

func (s *imageService) Resolve(ctx context.Context, userID, image string) (string, error) {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "https://") || strings.HasPrefix(image, "http://") {
		return image, nil
	}

	header, encoded, ok := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
	if !strings.HasPrefix(image, "data:") || !ok || !strings.HasSuffix(header, ";base64") {
		return "", ErrInvalidImage
	}

	ctx, span := s.tracer.Start(ctx, "image.resolve")
	defer span.End()

	if int64(base64.StdEncoding.DecodedLen(len(encoded))) > s.maxSize+2 {
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return "", ErrInvalidImage
	}
	if int64(len(data)) > s.maxSize {
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrImageTooLarge
	}

	detected := mimetype.Detect(data).String()
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = detected[:idx]
	}
	span.SetAttributes(attribute.String("image.detected_mime", detected), attribute.Int("image.size_bytes", len(data)))
	extension, allowed := allowedImageTypes[detected]
	if !allowed {
		span.SetStatus(codes.Error, "type not allowed")
		return "", ErrImageTypeNotAllowed
	}

	if s.storage == nil {
		return image, nil
	}

	url, err := s.storage.Upload(ctx, fmt.Sprintf("observation-%s%s", userID, extension), bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", fmt.Errorf("store observation image: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Str("mime", detected).Msg("observation image re-hosted")
	span.SetStatus(codes.Ok, "stored")
	return url, nil
}
