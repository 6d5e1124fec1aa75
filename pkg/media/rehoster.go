// Package media downloads externally hosted images and uploads them into the CMS media library.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/wpapi"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBytes     = 10 << 20
	fallbackContentType = "image/jpeg"
	fallbackExtension   = ".jpg"
)

var (
	// ErrMediaUploadFailed is wrapped by every Rehost failure.
	ErrMediaUploadFailed = errors.New("media upload failed")
	// ErrInvalidSourceURL is returned for relative, malformed or non-http(s) source URLs.
	ErrInvalidSourceURL = errors.New("invalid media source url")
	// ErrPayloadTooLarge is returned when the source exceeds the configured size limit.
	ErrPayloadTooLarge = errors.New("media payload too large")
	// ErrEmptyPayload is returned when the source responds with no bytes.
	ErrEmptyPayload = errors.New("media payload is empty")
)

// Config bounds the source fetch.
type Config struct {
	FetchTimeout time.Duration
	MaxBytes     int64
}

// Rehoster fetches a remote image and re-uploads it to the CMS.
type Rehoster struct {
	api      *wpapi.Client
	fetcher  *http.Client
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

// NewRehoster creates a Rehoster uploading through api.
func NewRehoster(logger *slog.Logger, api *wpapi.Client, cfg Config) *Rehoster {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}

	return &Rehoster{
		api:      api,
		fetcher:  &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes: cfg.MaxBytes,
		logger:   logger.With("module", "media_rehoster"),
		now:      time.Now,
	}
}

// Rehost downloads sourceURL and uploads it to the CMS identified by creds.
func (r *Rehoster) Rehost(ctx context.Context, sourceURL string, creds *models.Credentials) (*models.MediaItem, error) {
	logger := r.logger.With("source_url", sourceURL)

	data, contentType, err := r.fetch(ctx, sourceURL)
	if err != nil {
		logger.WarnContext(ctx, "Failed to fetch media", "error", err)

		return nil, failure("media.Rehost", err)
	}

	filename := r.filename(contentType)

	item, err := r.Upload(ctx, creds, filename, contentType, data)
	if err != nil {
		logger.WarnContext(ctx, "Failed to upload media", "error", err)

		return nil, err
	}

	logger.InfoContext(ctx, "Media rehosted", "media_id", item.ID, "hosted_url", item.SourceURL)

	return item, nil
}

// Upload sends data to the CMS media endpoint as a multipart file.
func (r *Rehoster) Upload(
	ctx context.Context,
	creds *models.Credentials,
	filename, contentType string,
	data []byte,
) (*models.MediaItem, error) {
	const op = "media.Upload"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, failure(op, err)
	}

	_, err = part.Write(data)
	if err != nil {
		return nil, failure(op, err)
	}

	err = writer.Close()
	if err != nil {
		return nil, failure(op, err)
	}

	resp, err := r.api.Do(ctx, creds, wpapi.Request{
		Method:      http.MethodPost,
		Path:        "/media",
		Body:        body,
		ContentType: writer.FormDataContentType(),
		Headers: map[string]string{
			"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
		},
	})
	if err != nil {
		return nil, failure(op, err)
	}

	err = resp.Expect(op, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, failure(op, err)
	}

	var uploaded wpapi.Media

	err = resp.Decode(op, &uploaded)
	if err != nil {
		return nil, failure(op, err)
	}

	if uploaded.ID == 0 || uploaded.SourceURL == "" {
		return nil, failure(op, fmt.Errorf("response missing id or source_url: %w", ErrEmptyPayload))
	}

	return &models.MediaItem{ID: uploaded.ID, SourceURL: uploaded.SourceURL, MimeType: uploaded.MimeType}, nil
}

func (r *Rehoster) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	err := ValidateSourceURL(sourceURL)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := r.fetcher.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch failed: %w", err)
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	if resp.ContentLength > r.maxBytes {
		return nil, "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media body: %w", err)
	}

	if int64(len(data)) > r.maxBytes {
		return nil, "", fmt.Errorf("%w: exceeds %d bytes", ErrPayloadTooLarge, r.maxBytes)
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyPayload
	}

	return data, DetectContentType(resp.Header.Get("Content-Type"), data), nil
}

func (r *Rehoster) filename(contentType string) string {
	return fmt.Sprintf("image-%d%s", r.now().UnixNano(), Extension(contentType))
}

// ValidateSourceURL accepts only absolute http(s) URLs.
func ValidateSourceURL(sourceURL string) error {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSourceURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSourceURL, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidSourceURL)
	}

	return nil
}

// DetectContentType prefers an image media type from the header, then sniffs
// the bytes, then falls back to a generic image type.
func DetectContentType(header string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}

	detected := mimetype.Detect(data)
	if strings.HasPrefix(detected.String(), "image/") {
		mediaType, _, err = mime.ParseMediaType(detected.String())
		if err == nil {
			return mediaType
		}
	}

	return fallbackContentType
}

// Extension returns the file extension for an image content type.
func Extension(contentType string) string {
	known := mimetype.Lookup(contentType)
	if known == nil || known.Extension() == "" {
		return fallbackExtension
	}

	return known.Extension()
}

func failure(op string, cause error) error {
	return models.NewError(models.ErrorKindMediaUploadFailed, op, fmt.Errorf("%w: %w", ErrMediaUploadFailed, cause))
}
