package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/manasvi0103/ai-blog-platform/pkg/cache"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/wpapi"
)

const (
	defaultDraftListTTL = 5 * time.Minute
	draftsResource      = "cms-drafts"
)

// MediaUploader rehosts remote images and uploads raw files into the CMS media library.
type MediaUploader interface {
	Rehost(ctx context.Context, sourceURL string, creds *models.Credentials) (*models.MediaItem, error)
	Upload(ctx context.Context, creds *models.Credentials, filename, contentType string, data []byte) (*models.MediaItem, error)
}

// Config tunes the client.
type Config struct {
	DraftListTTL time.Duration
}

// Client is the direct publish path and the remote draft management surface.
type Client struct {
	api          *wpapi.Client
	resolver     *Resolver
	media        MediaUploader
	cache        cache.Cache
	validate     *validator.Validate
	draftListTTL time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewClient creates a CMS client. store may be nil to disable draft-list caching.
func NewClient(
	logger *slog.Logger,
	api *wpapi.Client,
	resolver *Resolver,
	media MediaUploader,
	store cache.Cache,
	cfg Config,
) *Client {
	if cfg.DraftListTTL <= 0 {
		cfg.DraftListTTL = defaultDraftListTTL
	}

	return &Client{
		api:          api,
		resolver:     resolver,
		media:        media,
		cache:        store,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		draftListTTL: cfg.DraftListTTL,
		logger:       logger.With("module", "cms_client"),
		now:          time.Now,
	}
}

// Resolver returns the credential resolver used by the client.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// TestConnection checks the REST index anonymously and the posts route with
// credentials. Both requests must answer 200.
func (c *Client) TestConnection(ctx context.Context, tenantID string) *models.ConnectionResult {
	const op = "cms.TestConnection"

	result := &models.ConnectionResult{TenantID: tenantID, TestedAt: c.now().UTC()}
	logger := c.logger.With("tenant_id", tenantID)

	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return failConnection(result, "No usable CMS credentials", err)
	}

	result.BaseURL = wpapi.SiteURL(creds.BaseURL)
	result.Source = creds.Source

	resp, err := c.api.Do(ctx, creds, wpapi.Request{Method: http.MethodGet, Root: true, Anonymous: true})
	if err == nil {
		err = resp.Expect(op, http.StatusOK)
	}

	if err != nil {
		logger.WarnContext(ctx, "CMS root check failed", "error", err)

		return failConnection(result, "REST API root is not reachable", err)
	}

	resp, err = c.api.Do(ctx, creds, wpapi.Request{
		Method: http.MethodGet,
		Path:   "/posts",
		Query:  url.Values{"per_page": {"1"}},
	})
	if err == nil {
		err = resp.Expect(op, http.StatusOK)
	}

	if err != nil {
		logger.WarnContext(ctx, "CMS authenticated check failed", "error", err)

		return failConnection(result, "Authenticated request was refused", err)
	}

	result.Success = true
	result.Message = "Connected to " + result.BaseURL
	result.User = c.currentUser(ctx, creds)

	logger.InfoContext(ctx, "CMS connection verified", "source", creds.Source)

	return result
}

func (c *Client) currentUser(ctx context.Context, creds *models.Credentials) *models.CMSUser {
	const op = "cms.CurrentUser"

	resp, err := c.api.Do(ctx, creds, wpapi.Request{Method: http.MethodGet, Path: "/users/me"})
	if err != nil || resp.Expect(op, http.StatusOK) != nil {
		return nil
	}

	var user wpapi.User
	if resp.Decode(op, &user) != nil {
		return nil
	}

	return &models.CMSUser{ID: user.ID, Name: user.Name, Slug: user.Slug}
}

func failConnection(result *models.ConnectionResult, message string, err error) *models.ConnectionResult {
	result.Success = false
	result.Message = message + ": " + err.Error()
	result.ErrorKind = models.KindOf(err)

	return result
}

// CreateDraft creates a draft post. HTTP 201 is the only success signal.
func (c *Client) CreateDraft(ctx context.Context, payload *models.PublishPayload, tenantID string) *models.PublishResult {
	const op = "cms.CreateDraft"

	logger := c.logger.With("tenant_id", tenantID)

	err := c.validate.StructCtx(ctx, payload)
	if err != nil {
		return models.Failed(models.DeliveryMethodDirect, models.NewError(models.ErrorKindInvalidRequest, op, err))
	}

	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return models.Failed(models.DeliveryMethodDirect, err)
	}

	body := wpapi.PostBody{
		Title:      payload.Title,
		Content:    payload.Content,
		Excerpt:    payload.Excerpt,
		Status:     "draft",
		Categories: payload.Categories,
		Tags:       payload.Tags,
		Meta:       wpapi.SEOMeta(payload.MetaTitle, payload.MetaDescription, payload.FocusKeyword),
	}

	if payload.FeaturedImageURL != "" {
		item, err := c.media.Rehost(ctx, payload.FeaturedImageURL, creds)

		switch {
		case err == nil:
			body.FeaturedMedia = item.ID
		case payload.FeaturedImageRequired:
			logger.ErrorContext(ctx, "Required featured image could not be uploaded", "error", err)

			return models.Failed(models.DeliveryMethodDirect, err)
		default:
			logger.WarnContext(ctx, "Featured image upload failed, creating draft without it", "error", err)
		}
	}

	resp, err := c.api.Do(ctx, creds, wpapi.Request{Method: http.MethodPost, Path: "/posts", JSON: body})
	if err == nil {
		err = resp.Expect(op, http.StatusCreated)
	}

	if err != nil {
		logger.ErrorContext(ctx, "Failed to create CMS draft", "error", err)

		return models.Failed(models.DeliveryMethodDirect, err)
	}

	var post wpapi.Post

	err = resp.Decode(op, &post)
	if err == nil && post.ID == 0 {
		err = models.NewError(models.ErrorKindRemoteRejected, op, errors.New("response has no post id"))
	}

	if err != nil {
		return models.Failed(models.DeliveryMethodDirect, err)
	}

	c.invalidateDrafts(ctx, creds)

	logger.InfoContext(ctx, "CMS draft created", "cms_post_id", post.ID)

	result := models.Succeeded(
		models.DeliveryMethodDirect,
		post.ID,
		wpapi.EditURL(creds.BaseURL, post.ID),
		wpapi.PreviewURL(creds.BaseURL, post.ID),
	)
	if post.Status != "" {
		result.Status = post.Status
	}

	return result
}

// UpdateDraft applies a partial update to a remote post.
func (c *Client) UpdateDraft(ctx context.Context, tenantID string, postID int64, update *models.PostUpdate) (*models.CMSPost, error) {
	body := map[string]any{}

	if update.Title != nil {
		body["title"] = *update.Title
	}

	if update.Content != nil {
		body["content"] = *update.Content
	}

	if update.Excerpt != nil {
		body["excerpt"] = *update.Excerpt
	}

	if update.Categories != nil {
		body["categories"] = update.Categories
	}

	if update.Tags != nil {
		body["tags"] = update.Tags
	}

	meta := map[string]string{}

	if update.MetaTitle != nil {
		meta[wpapi.MetaTitleKey] = *update.MetaTitle
	}

	if update.MetaDescription != nil {
		meta[wpapi.MetaDescriptionKey] = *update.MetaDescription
	}

	if update.FocusKeyword != nil {
		meta[wpapi.MetaFocusKeywordKey] = *update.FocusKeyword
	}

	if len(meta) > 0 {
		body["meta"] = meta
	}

	return c.writePost(ctx, "cms.UpdateDraft", tenantID, postID, body)
}

// PublishDraft transitions a remote draft to published.
func (c *Client) PublishDraft(ctx context.Context, tenantID string, postID int64) (*models.CMSPost, error) {
	return c.writePost(ctx, "cms.PublishDraft", tenantID, postID, map[string]any{"status": "publish"})
}

func (c *Client) writePost(ctx context.Context, op, tenantID string, postID int64, body map[string]any) (*models.CMSPost, error) {
	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Do(ctx, creds, wpapi.Request{Method: http.MethodPost, Path: postPath(postID), JSON: body})
	if err == nil {
		err = resp.Expect(op, http.StatusOK)
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "CMS post write failed", "op", op, "tenant_id", tenantID, "cms_post_id", postID, "error", err)

		return nil, err
	}

	var post wpapi.Post

	err = resp.Decode(op, &post)
	if err != nil {
		return nil, err
	}

	c.invalidateDrafts(ctx, creds)

	return post.ToModel(creds.BaseURL), nil
}

// DeleteDraft moves a remote post to the trash, or deletes it when permanent is set.
func (c *Client) DeleteDraft(ctx context.Context, tenantID string, postID int64, permanent bool) error {
	const op = "cms.DeleteDraft"

	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}

	resp, err := c.api.Do(ctx, creds, wpapi.Request{
		Method: http.MethodDelete,
		Path:   postPath(postID),
		Query:  url.Values{"force": {strconv.FormatBool(permanent)}},
	})
	if err == nil {
		err = resp.Expect(op, http.StatusOK)
	}

	if err != nil {
		return err
	}

	c.invalidateDrafts(ctx, creds)

	c.logger.InfoContext(ctx, "CMS post deleted", "tenant_id", tenantID, "cms_post_id", postID, "permanent", permanent)

	return nil
}

// GetDraftPosts lists remote drafts. Pages are cached per tenant until a write invalidates them.
func (c *Client) GetDraftPosts(ctx context.Context, tenantID string, opts models.ListOptions) (*models.CMSPostList, error) {
	const op = "cms.GetDraftPosts"

	opts = opts.Normalize()

	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resource := draftsResource + ":" + creds.CacheScope()
	key := fmt.Sprintf("%s:page=%d:per_page=%d:orderby=%s:order=%s", resource, opts.Page, opts.PerPage, opts.OrderBy, opts.Order)

	if c.cache != nil {
		var cached models.CMSPostList

		found, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WarnContext(ctx, "Draft list cache read failed", "key", key, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	resp, err := c.api.Do(ctx, creds, wpapi.Request{
		Method: http.MethodGet,
		Path:   "/posts",
		Query: url.Values{
			"status":   {"draft"},
			"context":  {"edit"},
			"page":     {strconv.Itoa(opts.Page)},
			"per_page": {strconv.Itoa(opts.PerPage)},
			"orderby":  {opts.OrderBy},
			"order":    {opts.Order},
		},
	})
	if err == nil {
		err = resp.Expect(op, http.StatusOK)
	}

	if err != nil {
		return nil, err
	}

	var posts []wpapi.Post

	err = resp.Decode(op, &posts)
	if err != nil {
		return nil, err
	}

	list := &models.CMSPostList{
		Posts:      make([]*models.CMSPost, 0, len(posts)),
		Page:       opts.Page,
		PerPage:    opts.PerPage,
		Total:      resp.HeaderInt("X-WP-Total"),
		TotalPages: resp.HeaderInt("X-WP-TotalPages"),
	}

	for i := range posts {
		list.Posts = append(list.Posts, posts[i].ToModel(creds.BaseURL))
	}

	if c.cache != nil {
		err = c.cache.Set(ctx, resource, key, list, c.draftListTTL)
		if err != nil {
			c.logger.WarnContext(ctx, "Draft list cache write failed", "key", key, "error", err)
		}
	}

	return list, nil
}

// GetDraftPost fetches a single remote post.
func (c *Client) GetDraftPost(ctx context.Context, tenantID string, postID int64) (*models.CMSPost, error) {
	const op = "cms.GetDraftPost"

	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Do(ctx, creds, wpapi.Request{
		Method: http.MethodGet,
		Path:   postPath(postID),
		Query:  url.Values{"context": {"edit"}},
	})
	if err == nil {
		err = resp.Expect(op, http.StatusOK)
	}

	if err != nil {
		return nil, err
	}

	var post wpapi.Post

	err = resp.Decode(op, &post)
	if err != nil {
		return nil, err
	}

	return post.ToModel(creds.BaseURL), nil
}

// UploadMedia uploads raw bytes into the tenant's media library.
func (c *Client) UploadMedia(ctx context.Context, tenantID, filename, contentType string, data []byte) (*models.MediaItem, error) {
	creds, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return c.media.Upload(ctx, creds, filename, contentType, data)
}

func (c *Client) invalidateDrafts(ctx context.Context, creds *models.Credentials) {
	if c.cache == nil {
		return
	}

	resource := draftsResource + ":" + creds.CacheScope()

	err := c.cache.Invalidate(ctx, resource)
	if err != nil {
		c.logger.WarnContext(ctx, "Draft list cache invalidation failed", "resource", resource, "error", err)
	}
}

func postPath(postID int64) string {
	return "/posts/" + strconv.FormatInt(postID, 10)
}
