package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/assembler"
	"github.com/manasvi0103/ai-blog-platform/pkg/eventbus"
	"github.com/manasvi0103/ai-blog-platform/pkg/events"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/otelhelper"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/manasvi0103/ai-blog-platform/pkg/rehost"
	"github.com/manasvi0103/ai-blog-platform/pkg/wpapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	errNoResult  = errors.New("delivery path returned no result")
	errNoEditURL = errors.New("no edit link for the created post")
	errNoSite    = errors.New("tenant site has no base URL")
)

// DirectPublisher creates drafts through the CMS REST API.
type DirectPublisher interface {
	CreateDraft(ctx context.Context, payload *models.PublishPayload, tenantID string) *models.PublishResult
}

// RelayPublisher creates drafts through the automation webhook.
type RelayPublisher interface {
	Enabled() bool
	CreateWordPressDraft(ctx context.Context, payload *models.PublishPayload, tenantID string) *models.PublishResult
}

// CredentialResolver resolves the CMS credentials of a tenant.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID string) (*models.Credentials, error)
}

// ContentRehoster rewrites external images to CMS-hosted copies.
type ContentRehoster interface {
	Rehost(ctx context.Context, markup string, creds *models.Credentials) *rehost.Report
}

// PublishingConfig selects the delivery plan.
type PublishingConfig struct {
	Order    models.DeliveryOrder
	Fallback bool
	// RecordFailedAttempts marks the publish record publish-failed when
	// every delivery path failed.
	RecordFailedAttempts bool
}

// PublishRequest asks for one draft to be published.
type PublishRequest struct {
	DraftID string
	// TenantID overrides the draft's company.
	TenantID string
	// Content, when set, is used instead of assembling the draft's blocks.
	Content *models.AssembledDocument
}

// Preview is the assembled form of a draft with its derived metrics.
type Preview struct {
	Document *models.AssembledDocument `json:"document"`
	Metrics  models.DocumentMetrics    `json:"metrics"`
}

// Publishing drives a draft through assembly, rehosting and delivery.
type Publishing struct {
	persistence persistence.Persistence
	assembler   *assembler.Assembler
	rehoster    ContentRehoster
	resolver    CredentialResolver
	direct      DirectPublisher
	relay       RelayPublisher
	events      eventbus.EventPublisher
	tracer      trace.Tracer
	config      PublishingConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewPublishing creates the publish orchestrator. relay and publisher may be nil.
func NewPublishing(
	logger *slog.Logger,
	tracer trace.Tracer,
	persistence persistence.Persistence,
	rehoster ContentRehoster,
	resolver CredentialResolver,
	direct DirectPublisher,
	relay RelayPublisher,
	publisher eventbus.EventPublisher,
	config PublishingConfig,
) *Publishing {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Publishing{
		persistence: persistence,
		assembler:   assembler.New(),
		rehoster:    rehoster,
		resolver:    resolver,
		direct:      direct,
		relay:       relay,
		events:      publisher,
		tracer:      tracer,
		config:      config,
		logger:      logger.With("module", "publishing"),
		now:         time.Now,
	}
}

// Plan returns the delivery methods tried by Publish, in order.
func (p *Publishing) Plan() []models.DeliveryMethod {
	relayEnabled := p.relay != nil && p.relay.Enabled()

	return p.config.Order.Plan(relayEnabled, p.config.Fallback)
}

// Publish runs one publish invocation for a draft. Local state is written
// only after a delivery path confirmed a remote post.
func (p *Publishing) Publish(ctx context.Context, req PublishRequest) *models.PublishResult {
	ctx, span := otelhelper.StartSpan(ctx, p.tracer, "publishing.Publish",
		attribute.String(otelhelper.DraftIDKey, req.DraftID),
	)
	defer span.End()

	logger := p.logger.With("draft_id", req.DraftID)

	if req.DraftID == "" {
		return p.fail(ctx, span, models.NewError(models.ErrorKindInvalidRequest, "services.Publish", ErrDraftIDRequired))
	}

	draft, err := p.persistence.Drafts().GetByID(ctx, req.DraftID)
	if err != nil {
		kind := models.ErrorKindInternal
		if persistence.IsDraftNotFound(err) {
			kind = models.ErrorKindDraftNotFound
		}

		return p.fail(ctx, span, models.NewError(kind, "services.Publish", err))
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = draft.CompanyID
	}

	span.SetAttributes(attribute.String(otelhelper.TenantIDKey, tenantID))
	logger = logger.With("tenant_id", tenantID)

	doc := req.Content
	if doc == nil {
		doc, err = p.assembler.Assemble(assembler.Select(draft.Blocks), assemblyOptions(draft))
		if err != nil {
			return p.fail(ctx, span, models.NewError(models.ErrorKindInvalidRequest, "services.Publish", err))
		}
	}

	markup, media := p.rehostMedia(ctx, logger, doc.BodyMarkup, tenantID)
	payload := buildPayload(draft, doc, markup)

	result := p.deliver(ctx, logger, payload, tenantID)
	result.Media = media

	if !result.Success {
		otelhelper.SetFailure(span, result)
		logger.WarnContext(ctx, "Publish failed on every delivery path",
			"error_kind", result.ErrorKind,
			"attempts", len(result.Attempts),
		)
		p.recordFailure(ctx, logger, draft.ID, result)
		p.publish(ctx, logger, draft.ID, events.NewDraftPublishFailed(draft.ID, tenantID, result))

		return result
	}

	span.SetAttributes(
		attribute.String(otelhelper.DeliveryMethodKey, string(result.DeliveryMethod)),
		attribute.Int64(otelhelper.CMSPostIDKey, result.CMSPostID),
	)

	p.commit(ctx, logger, draft.ID, result)

	logger.InfoContext(ctx, "Draft published",
		"cms_post_id", result.CMSPostID,
		"delivery_method", result.DeliveryMethod,
		"inconsistent", result.Inconsistency != nil,
	)
	p.publish(ctx, logger, draft.ID, events.NewDraftPublished(draft.ID, tenantID, result))

	return result
}

// CheckPublishable returns a conflict error when the draft already has a
// remote post. Callers skip it to force a new post.
func (p *Publishing) CheckPublishable(ctx context.Context, draftID string) error {
	record, err := p.persistence.PublishRecords().GetByDraftID(ctx, draftID)
	if err != nil {
		if persistence.IsPublishRecordNotFound(err) {
			return nil
		}

		return fmt.Errorf("failed to load publish record: %w", err)
	}

	if record.CMSPostID != 0 {
		return NewConflictError("services.CheckPublishable", "already_published",
			fmt.Sprintf("draft %s already has CMS post %d (%s)", draftID, record.CMSPostID, record.EditURL),
			ErrAlreadyPublished)
	}

	return nil
}

// PublishRecord returns the stored publish record of a draft.
func (p *Publishing) PublishRecord(ctx context.Context, draftID string) (*models.DraftPublishRecord, error) {
	return p.persistence.PublishRecords().GetByDraftID(ctx, draftID)
}

// Preview assembles a draft without publishing it.
func (p *Publishing) Preview(ctx context.Context, draftID string) (*Preview, error) {
	draft, err := p.persistence.Drafts().GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}

	opts := assemblyOptions(draft)

	doc, err := p.assembler.Assemble(assembler.Select(draft.Blocks), opts)
	if err != nil {
		return nil, &ServiceError{Op: "services.Preview", Message: err.Error(), Err: ErrInvalidRequest}
	}

	return &Preview{Document: doc, Metrics: p.assembler.Metrics(doc, opts)}, nil
}

func (p *Publishing) rehostMedia(
	ctx context.Context,
	logger *slog.Logger,
	markup, tenantID string,
) (string, *models.MediaSummary) {
	if p.rehoster == nil || p.resolver == nil {
		return markup, nil
	}

	creds, err := p.resolver.Resolve(ctx, tenantID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping media rehosting, no CMS credentials", "error", err)

		return markup, nil
	}

	ctx, span := otelhelper.StartSpan(ctx, p.tracer, "publishing.Rehost")
	defer span.End()

	report := p.rehoster.Rehost(ctx, markup, creds)
	span.SetAttributes(attribute.Int(otelhelper.ImageCountKey, len(report.Images)))

	return report.Markup, report.Summary()
}

func (p *Publishing) deliver(
	ctx context.Context,
	logger *slog.Logger,
	payload *models.PublishPayload,
	tenantID string,
) *models.PublishResult {
	plan := p.Plan()
	attempts := make([]models.DeliveryAttempt, 0, len(plan))
	failures := make([]*models.PublishResult, 0, len(plan))

	for i, method := range plan {
		result := p.attempt(ctx, method, payload, tenantID)
		attempts = append(attempts, result.Attempt())

		if result.Success {
			result.Attempts = attempts

			return result
		}

		failures = append(failures, result)

		if i < len(plan)-1 {
			if !canFallback(result.ErrorKind) {
				break
			}

			logger.WarnContext(ctx, "Delivery path failed, falling back",
				"delivery_method", method,
				"next_method", plan[i+1],
				"error_kind", result.ErrorKind,
			)
		}
	}

	final := mostSpecific(failures)
	final.DeliveryMethod = models.DeliveryMethodFailed
	final.Attempts = attempts

	return final
}

func (p *Publishing) attempt(
	ctx context.Context,
	method models.DeliveryMethod,
	payload *models.PublishPayload,
	tenantID string,
) *models.PublishResult {
	ctx, span := otelhelper.StartSpan(ctx, p.tracer, "publishing.Deliver",
		attribute.String(otelhelper.DeliveryMethodKey, string(method)),
	)
	defer span.End()

	var result *models.PublishResult

	switch method {
	case models.DeliveryMethodRelay:
		result = p.relay.CreateWordPressDraft(ctx, payload, tenantID)
	default:
		result = p.direct.CreateDraft(ctx, payload, tenantID)
	}

	if result == nil {
		result = models.Failed(method, models.NewError(models.ErrorKindInternal, "services.Deliver", errNoResult))
	}

	if result.Success && result.EditURL == "" {
		result = p.completeLinks(ctx, method, result, tenantID)
	}

	if !result.Success {
		otelhelper.SetFailure(span, result)
	}

	return result
}

// completeLinks fills the edit and preview links of a success that lacks
// them. A success whose edit link cannot be built is reported as rejected.
func (p *Publishing) completeLinks(
	ctx context.Context,
	method models.DeliveryMethod,
	result *models.PublishResult,
	tenantID string,
) *models.PublishResult {
	var (
		creds *models.Credentials
		err   = errNoSite
	)

	if p.resolver != nil {
		creds, err = p.resolver.Resolve(ctx, tenantID)
		if err == nil && (creds == nil || creds.BaseURL == "") {
			err = errNoSite
		}
	}

	if err != nil {
		kind := models.ErrorKindRemoteRejected
		if method == models.DeliveryMethodRelay {
			kind = models.ErrorKindRelayRejected
		}

		p.logger.ErrorContext(ctx, "Delivery succeeded without an edit link",
			"delivery_method", method,
			"cms_post_id", result.CMSPostID,
			"error", err,
		)

		return models.Failed(method, models.NewError(kind, "services.Deliver",
			fmt.Errorf("post %d: %w: %w", result.CMSPostID, errNoEditURL, err)))
	}

	result.EditURL = wpapi.EditURL(creds.BaseURL, result.CMSPostID)
	if result.PreviewURL == "" {
		result.PreviewURL = wpapi.PreviewURL(creds.BaseURL, result.CMSPostID)
	}

	return result
}

func (p *Publishing) commit(ctx context.Context, logger *slog.Logger, draftID string, result *models.PublishResult) {
	now := p.now().UTC()

	record := &models.DraftPublishRecord{
		DraftID:         draftID,
		CMSPostID:       result.CMSPostID,
		EditURL:         result.EditURL,
		PreviewURL:      result.PreviewURL,
		DeliveryMethod:  result.DeliveryMethod,
		Status:          models.PublishRecordDraftCreated,
		LastAttemptedAt: now,
		UpdatedAt:       now,
	}

	err := p.persistence.PublishRecords().Commit(ctx, record, models.DraftStatusPublished)
	if err == nil {
		return
	}

	logger.ErrorContext(ctx, "Remote draft created but local record update failed",
		"cms_post_id", result.CMSPostID,
		"edit_url", result.EditURL,
		"error", err,
	)

	result.Inconsistency = &models.Inconsistency{
		Kind:   models.ErrorKindLocalPersistenceFailed,
		Detail: err.Error(),
		Message: fmt.Sprintf(
			"The CMS draft was created (post %d, %s) but the local record could not be updated. "+
				"Do not publish this draft again; link the existing post instead.",
			result.CMSPostID, result.EditURL,
		),
	}
}

func (p *Publishing) recordFailure(ctx context.Context, logger *slog.Logger, draftID string, result *models.PublishResult) {
	if !p.config.RecordFailedAttempts {
		return
	}

	err := p.persistence.PublishRecords().RecordFailure(ctx, draftID, result.ErrorKind, p.now().UTC())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record publish failure", "error", err)
	}
}

func (p *Publishing) publish(ctx context.Context, logger *slog.Logger, key string, event eventbus.Event) {
	if p.events == nil {
		return
	}

	if err := p.events.Publish(ctx, key, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (p *Publishing) fail(ctx context.Context, span trace.Span, err error) *models.PublishResult {
	result := models.Failed(models.DeliveryMethodFailed, err)

	otelhelper.SetError(span, err)
	p.logger.WarnContext(ctx, "Publish request rejected", "error_kind", result.ErrorKind, "error", err)

	return result
}

func assemblyOptions(draft *models.Draft) assembler.Options {
	return assembler.Options{
		FocusKeyword:    draft.FocusKeyword,
		TargetWordCount: draft.TargetWordCount,
		MetaTitle:       draft.MetaTitle,
		MetaDescription: draft.MetaDescription,
	}
}

func buildPayload(draft *models.Draft, doc *models.AssembledDocument, markup string) *models.PublishPayload {
	title := doc.Title
	if title == "" {
		title = draft.Title
	}

	return &models.PublishPayload{
		Title:                 title,
		Content:               markup,
		Excerpt:               draft.Excerpt,
		MetaTitle:             doc.MetaTitle,
		MetaDescription:       doc.MetaDescription,
		FocusKeyword:          draft.FocusKeyword,
		Categories:            draft.Categories,
		Tags:                  draft.Tags,
		FeaturedImageURL:      draft.FeaturedImageURL,
		FeaturedImageRequired: draft.FeaturedImageRequired,
	}
}

// canFallback reports whether another delivery path may fix a failure.
// A payload rejected locally fails identically on every path.
func canFallback(kind models.ErrorKind) bool {
	return kind != models.ErrorKindInvalidRequest
}

// mostSpecific picks the failure to report: a configuration or credential
// problem over a remote rejection, and a rejection over an outage. Ties keep
// the earliest attempt.
func mostSpecific(failures []*models.PublishResult) *models.PublishResult {
	best := failures[0]

	for _, failure := range failures[1:] {
		if specificity(failure.ErrorKind) > specificity(best.ErrorKind) {
			best = failure
		}
	}

	copied := *best

	return &copied
}

func specificity(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindRemoteUnreachable, models.ErrorKindRelayOffline:
		return 0
	case models.ErrorKindRemoteRejected, models.ErrorKindRelayRejected, models.ErrorKindInternal:
		return 1
	default:
		return 2
	}
}
