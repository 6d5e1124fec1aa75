package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/manasvi0103/ai-blog-platform/pkg/services"
	"github.com/moogar0880/problems"
)

var errInvalidPostID = errors.New("post ID must be a positive integer")

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service and repository errors to problems.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("already_published").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsDraftNotFound(err):
		return notFound(c, "draft not found")

	case persistence.IsPublishRecordNotFound(err):
		return notFound(c, "draft has not been published")

	case persistence.IsTenantConfigNotFound(err):
		return notFound(c, "tenant CMS config not found")

	default:
		return internalError(c, err)
	}
}

// handleCMSError maps a kinded CMS error to a problem carrying the kind as its type.
func handleCMSError(c fiber.Ctx, err error) error {
	kind := models.KindOf(err)
	status := kindStatus(kind)

	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(string(kind)).
		WithDetail(err.Error())

	return c.Status(status).JSON(problem)
}

// kindStatus is the HTTP status reported for a failure of the given kind.
// Remote failures surface as gateway errors.
func kindStatus(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindInvalidRequest:
		return http.StatusBadRequest
	case models.ErrorKindDraftNotFound, models.ErrorKindNotFound:
		return http.StatusNotFound
	case models.ErrorKindConfigMissing:
		return http.StatusUnprocessableEntity
	case models.ErrorKindRemoteUnreachable, models.ErrorKindRelayOffline:
		return http.StatusGatewayTimeout
	case models.ErrorKindInternal, "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
