// Package assets uploads attachment payloads into the caller's personal
// drive and resolves a shareable preview for them.
package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/itsaavisos/gateway/internal/graph"
)

var (
	// ErrEmptyPayload indicates a zero-length upload, which would produce a
	// degenerate byte-range header.
	ErrEmptyPayload = errors.New("assets: payload is empty")
	// ErrPayloadTooLarge indicates the payload exceeds the single-request
	// upload ceiling.
	ErrPayloadTooLarge = errors.New("assets: payload exceeds upload limit")
	// ErrMissingFileName indicates no target file name was supplied.
	ErrMissingFileName = errors.New("assets: file name is required")
)

// Asset is an uploaded file shared read-only across one dispatch request.
type Asset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WebURL       string `json:"web_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Service uploads payloads via resumable upload sessions.
type Service struct {
	graph    *graph.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewService creates an asset service. maxBytes caps the accepted payload
// size; values <= 0 select a default matching the provider's single-request
// ceiling.
func NewService(log *slog.Logger, client *graph.Client, maxBytes int64) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 60 << 20
	}
	return &Service{
		graph:    client,
		maxBytes: maxBytes,
		logger:   log.With(slog.String("service", "assets")),
	}
}

// Upload stores content under fileName in the caller's drive root and
// returns the resulting asset. The whole payload goes up in one byte-range
// request; chunked multi-request uploads are not implemented, hence the size
// cap. A missing thumbnail never fails the upload.
func (s *Service) Upload(ctx context.Context, token graph.Token, content []byte, fileName string) (Asset, error) {
	if strings.TrimSpace(fileName) == "" {
		return Asset{}, ErrMissingFileName
	}
	if len(content) == 0 {
		return Asset{}, ErrEmptyPayload
	}
	if int64(len(content)) > s.maxBytes {
		return Asset{}, fmt.Errorf("%w: %d bytes over %d limit", ErrPayloadTooLarge, len(content), s.maxBytes)
	}

	session, err := s.graph.CreateUploadSession(ctx, token, fileName)
	if err != nil {
		return Asset{}, err
	}
	item, err := s.graph.UploadBytes(ctx, session.UploadURL, content)
	if err != nil {
		return Asset{}, err
	}

	asset := Asset{
		ID:     item.ID,
		Name:   item.Name,
		WebURL: item.WebURL,
	}
	asset.ThumbnailURL = s.thumbnailURL(ctx, token, item.ID)
	return asset, nil
}

// thumbnailURL fetches the medium preview of the uploaded item. Failures
// are logged and swallowed; the asset is simply returned without a preview.
func (s *Service) thumbnailURL(ctx context.Context, token graph.Token, itemID string) string {
	sets, err := s.graph.ListThumbnails(ctx, token, itemID)
	if err != nil {
		s.logger.Warn("fetch thumbnail failed", slog.String("item_id", itemID), slog.Any("error", err))
		return ""
	}
	if len(sets) == 0 || sets[0].Medium == nil {
		return ""
	}
	return sets[0].Medium.URL
}
