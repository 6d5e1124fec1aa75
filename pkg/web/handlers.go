// Package web provides HTTP handlers and REST API endpoints for draft publishing.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/manasvi0103/ai-blog-platform/pkg/services"
)

// PostManager manages remote drafts on a tenant's CMS.
type PostManager interface {
	GetDraftPosts(ctx context.Context, tenantID string, opts models.ListOptions) (*models.CMSPostList, error)
	GetDraftPost(ctx context.Context, tenantID string, postID int64) (*models.CMSPost, error)
	UpdateDraft(ctx context.Context, tenantID string, postID int64, update *models.PostUpdate) (*models.CMSPost, error)
	PublishDraft(ctx context.Context, tenantID string, postID int64) (*models.CMSPost, error)
	DeleteDraft(ctx context.Context, tenantID string, postID int64, permanent bool) error
}

type APIHandlers struct {
	persistence       persistence.Persistence
	publishingService *services.Publishing
	connectionService *services.Connection
	posts             PostManager
	validator         *validator.Validate
}

func NewAPIHandlers(
	persistence persistence.Persistence,
	publishingService *services.Publishing,
	connectionService *services.Connection,
	posts PostManager,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		persistence:       persistence,
		publishingService: publishingService,
		connectionService: connectionService,
		posts:             posts,
		validator:         validator,
	}
}

// Routes registers every endpoint on router.
func (h *APIHandlers) Routes(router fiber.Router) {
	router.Get("/health", h.HealthCheck)

	d := router.Group("/drafts")
	d.Get("/:id/preview", h.PreviewDraft)
	d.Post("/:id/publish", h.PublishDraft)
	d.Get("/:id/publish-record", h.GetPublishRecord)

	router.Post("/cms/test", h.TestDefaultConnection)

	t := router.Group("/tenants/:tenantId")
	t.Get("/cms/config", h.GetTenantConfig)
	t.Post("/cms/test", h.TestTenantConnection)
	t.Get("/cms/posts", h.ListPosts)
	t.Get("/cms/posts/:postId", h.GetPost)
	t.Patch("/cms/posts/:postId", h.UpdatePost)
	t.Delete("/cms/posts/:postId", h.DeletePost)
	t.Post("/cms/posts/:postId/publish", h.PublishPost)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Blog publisher is healthy"
	httpStatus := http.StatusOK
	repositoryCheck := "ok"

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Blog publisher is unhealthy"
		httpStatus = http.StatusInternalServerError
		repositoryCheck = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) PreviewDraft(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Draft ID is required")
	}

	preview, err := h.publishingService.Preview(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(preview)
}

// PublishDraft runs the publish pipeline for a draft. The body is optional.
func (h *APIHandlers) PublishDraft(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Draft ID is required")
	}

	var req PublishDraftRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !req.Force {
		if err := h.publishingService.CheckPublishable(c.Context(), id); err != nil {
			return handleServiceError(c, err)
		}
	}

	result := h.publishingService.Publish(c.Context(), services.PublishRequest{
		DraftID:  id,
		TenantID: req.TenantID,
		Content:  req.Content.Document(),
	})

	if !result.Success {
		return c.Status(kindStatus(result.ErrorKind)).JSON(result)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) GetPublishRecord(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Draft ID is required")
	}

	record, err := h.publishingService.PublishRecord(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) TestDefaultConnection(c fiber.Ctx) error {
	return h.connectionResponse(c, h.connectionService.Test(c.Context(), ""))
}

func (h *APIHandlers) TestTenantConnection(c fiber.Ctx) error {
	return h.connectionResponse(c, h.connectionService.Test(c.Context(), c.Params("tenantId")))
}

func (h *APIHandlers) connectionResponse(c fiber.Ctx, result *models.ConnectionResult) error {
	if !result.Success {
		return c.Status(kindStatus(result.ErrorKind)).JSON(result)
	}

	return c.JSON(result)
}

// GetTenantConfig renders the tenant's CMS config. The application password
// is never serialized.
func (h *APIHandlers) GetTenantConfig(c fiber.Ctx) error {
	config, err := h.persistence.TenantConfigs().GetByTenantID(c.Context(), c.Params("tenantId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(config)
}

func (h *APIHandlers) ListPosts(c fiber.Ctx) error {
	var opts models.ListOptions
	if err := c.Bind().Query(&opts); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if err := h.validator.Struct(opts); err != nil {
		return badRequest(c, err.Error())
	}

	list, err := h.posts.GetDraftPosts(c.Context(), c.Params("tenantId"), opts)
	if err != nil {
		return handleCMSError(c, err)
	}

	return c.JSON(list)
}

func (h *APIHandlers) GetPost(c fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	post, err := h.posts.GetDraftPost(c.Context(), c.Params("tenantId"), postID)
	if err != nil {
		return handleCMSError(c, err)
	}

	return c.JSON(post)
}

func (h *APIHandlers) UpdatePost(c fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req UpdatePostRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Empty() {
		return badRequest(c, "At least one field must be updated")
	}

	post, err := h.posts.UpdateDraft(c.Context(), c.Params("tenantId"), postID, req.PostUpdate())
	if err != nil {
		return handleCMSError(c, err)
	}

	return c.JSON(post)
}

func (h *APIHandlers) DeletePost(c fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	permanent := false

	if permanentStr := c.Query("permanent"); permanentStr != "" {
		permanent, err = strconv.ParseBool(permanentStr)
		if err != nil {
			return badRequest(c, "Invalid permanent flag")
		}
	}

	if err := h.posts.DeleteDraft(c.Context(), c.Params("tenantId"), postID, permanent); err != nil {
		return handleCMSError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishPost(c fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	post, err := h.posts.PublishDraft(c.Context(), c.Params("tenantId"), postID)
	if err != nil {
		return handleCMSError(c, err)
	}

	return c.JSON(post)
}

func parsePostID(c fiber.Ctx) (int64, error) {
	postID, err := strconv.ParseInt(c.Params("postId"), 10, 64)
	if err != nil || postID <= 0 {
		return 0, errInvalidPostID
	}

	return postID, nil
}
