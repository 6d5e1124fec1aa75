// Package relay publishes drafts through an automation webhook that writes to the CMS on our behalf.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/wpapi"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xeipuuv/gojsonschema"
)

const (
	defaultTimeout   = 30 * time.Second
	excerptLength    = 150
	maxResponseBytes = 1 << 20
	maxErrorBody     = 512
)

var (
	// ErrNotConfigured is returned when no webhook URL is set.
	ErrNotConfigured = errors.New("relay webhook is not configured")
	// ErrInvalidEnvelope is returned when the relay answers with an unexpected body.
	ErrInvalidEnvelope = errors.New("invalid relay response envelope")
	// ErrMissingEditURL is returned when a successful envelope has no edit link
	// and the tenant's site cannot be located to build one.
	ErrMissingEditURL = errors.New("relay response has no editUrl")
)

const envelopeSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"data": {
			"type": "object",
			"properties": {
				"wordpressId": {"type": ["integer", "string"]},
				"editUrl":     {"type": "string"},
				"previewUrl":  {"type": "string"},
				"status":      {"type": "string"},
				"createdAt":   {"type": "string"}
			}
		},
		"error": {"type": ["string", "object", "null"]}
	}
}`

// SiteLocator resolves the CMS site a tenant's drafts are written to.
type SiteLocator interface {
	Resolve(ctx context.Context, tenantID string) (*models.Credentials, error)
}

// Config locates the relay webhook. Sites, when set, is used to build edit
// and preview links the relay leaves out.
type Config struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Sites   SiteLocator
}

// Request is the JSON body posted to the relay.
type Request struct {
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Excerpt         string  `json:"excerpt"`
	MetaTitle       string  `json:"metaTitle"`
	MetaDescription string  `json:"metaDescription"`
	FocusKeyword    string  `json:"focusKeyword"`
	CompanyID       string  `json:"companyId"`
	Categories      []int64 `json:"categories"`
	Tags            []int64 `json:"tags"`
	FeaturedImage   string  `json:"featuredImage,omitempty"`
	Secret          string  `json:"secret"`
}

// Envelope is the relay response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    *EnvelopeData   `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// EnvelopeData describes the post created by the relay.
type EnvelopeData struct {
	WordpressID json.RawMessage `json:"wordpressId"`
	EditURL     string          `json:"editUrl"`
	PreviewURL  string          `json:"previewUrl"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
}

// Client forwards publish payloads to the relay webhook.
type Client struct {
	cfg        Config
	httpClient *http.Client
	schema     *gojsonschema.Schema
	strip      *bluemonday.Policy
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewClient creates a relay client.
func NewClient(logger *slog.Logger, cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile relay envelope schema: %w", err)
	}

	strip := bluemonday.StrictPolicy()
	strip.AddSpaceWhenStrippingTag(true)

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		schema:     schema,
		strip:      strip,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger.With("module", "relay"),
	}, nil
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.URL != ""
}

// CreateWordPressDraft asks the relay to create a CMS draft. Transport failures
// are RelayOffline; any answer other than a successful envelope is RelayRejected.
func (c *Client) CreateWordPressDraft(ctx context.Context, payload *models.PublishPayload, tenantID string) *models.PublishResult {
	const op = "relay.CreateWordPressDraft"

	if !c.Enabled() {
		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, op, ErrNotConfigured))
	}

	err := c.validate.StructCtx(ctx, payload)
	if err != nil {
		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindInvalidRequest, op, err))
	}

	logger := c.logger.With("tenant_id", tenantID)

	body, err := json.Marshal(c.buildRequest(payload, tenantID))
	if err != nil {
		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindInternal, op, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, op, err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "Relay is unreachable", "error", err)

		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, op, err))
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.WarnContext(ctx, "Relay rejected the request", "status", resp.StatusCode)

		return models.Failed(models.DeliveryMethodRelay, models.NewStatusError(models.ErrorKindRelayRejected, op, resp.StatusCode, snippet(data)))
	}

	envelope, postID, err := c.parseEnvelope(data)
	if err != nil {
		logger.WarnContext(ctx, "Relay answered with an unusable envelope", "error", err)

		return models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayRejected, op, err))
	}

	editURL, previewURL, err := c.links(ctx, envelope.Data, postID, tenantID)
	if err != nil {
		logger.ErrorContext(ctx, "Relay created a draft without a usable edit link", "cms_post_id", postID, "error", err)

		return models.Failed(models.DeliveryMethodRelay,
			models.NewError(models.ErrorKindRelayRejected, op, fmt.Errorf("post %d: %w", postID, err)))
	}

	logger.InfoContext(ctx, "Relay created CMS draft", "cms_post_id", postID)

	result := models.Succeeded(models.DeliveryMethodRelay, postID, editURL, previewURL)
	if envelope.Data.Status != "" {
		result.Status = envelope.Data.Status
	}

	return result
}

// links returns the envelope's edit and preview URLs, building missing ones
// from the tenant's site.
func (c *Client) links(ctx context.Context, data *EnvelopeData, postID int64, tenantID string) (string, string, error) {
	editURL := strings.TrimSpace(data.EditURL)
	previewURL := strings.TrimSpace(data.PreviewURL)

	if editURL != "" && previewURL != "" {
		return editURL, previewURL, nil
	}

	if c.cfg.Sites == nil {
		if editURL == "" {
			return "", "", ErrMissingEditURL
		}

		return editURL, previewURL, nil
	}

	creds, err := c.cfg.Sites.Resolve(ctx, tenantID)
	if err == nil && (creds == nil || creds.BaseURL == "") {
		err = errors.New("tenant site has no base URL")
	}

	if err != nil {
		if editURL == "" {
			return "", "", fmt.Errorf("%w: %w", ErrMissingEditURL, err)
		}

		return editURL, previewURL, nil
	}

	if editURL == "" {
		editURL = wpapi.EditURL(creds.BaseURL, postID)
	}

	if previewURL == "" {
		previewURL = wpapi.PreviewURL(creds.BaseURL, postID)
	}

	return editURL, previewURL, nil
}

func (c *Client) buildRequest(payload *models.PublishPayload, tenantID string) *Request {
	excerpt := payload.Excerpt
	if excerpt == "" {
		excerpt = c.Excerpt(payload.Content)
	}

	categories := payload.Categories
	if categories == nil {
		categories = []int64{}
	}

	tags := payload.Tags
	if tags == nil {
		tags = []int64{}
	}

	return &Request{
		Title:           payload.Title,
		Content:         payload.Content,
		Excerpt:         excerpt,
		MetaTitle:       payload.MetaTitle,
		MetaDescription: payload.MetaDescription,
		FocusKeyword:    payload.FocusKeyword,
		CompanyID:       tenantID,
		Categories:      categories,
		Tags:            tags,
		FeaturedImage:   payload.FeaturedImageURL,
		Secret:          c.cfg.Secret,
	}
}

// Excerpt strips markup from content and truncates it to 150 characters.
func (c *Client) Excerpt(content string) string {
	text := strings.Join(strings.Fields(html.UnescapeString(c.strip.Sanitize(content))), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}

	return strings.TrimSpace(string([]rune(text)[:excerptLength])) + "..."
}

func (c *Client) parseEnvelope(data []byte) (*Envelope, int64, error) {
	validation, err := c.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	if !validation.Valid() {
		problems := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			problems = append(problems, desc.String())
		}

		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidEnvelope, strings.Join(problems, "; "))
	}

	var envelope Envelope

	err = json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	if !envelope.Success {
		return nil, 0, fmt.Errorf("relay reported failure: %s", errorMessage(envelope.Error))
	}

	if envelope.Data == nil {
		return nil, 0, fmt.Errorf("%w: missing data", ErrInvalidEnvelope)
	}

	postID, err := parseID(envelope.Data.WordpressID)
	if err != nil {
		return nil, 0, err
	}

	return &envelope, postID, nil
}

// parseID accepts the post id as a JSON number or a numeric string.
func parseID(raw json.RawMessage) (int64, error) {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: wordpressId %q is not a post id", ErrInvalidEnvelope, value)
	}

	return id, nil
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "unknown error"
	}

	var message string
	if json.Unmarshal(raw, &message) == nil {
		return message
	}

	var structured struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &structured) == nil && structured.Message != "" {
		return structured.Message
	}

	return snippet(raw)
}

func snippet(body []byte) string {
	return wpapi.Truncate(string(body), maxErrorBody)
}
