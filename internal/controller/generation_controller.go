package controller

import (
	"errors"
	"strings"

	"ai-studygen-be/internal/dto"
	"ai-studygen-be/internal/pkg/serverutils"
	"ai-studygen-be/internal/service"
	"ai-studygen-be/pkg/studygen"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	SubmitJob(ctx *fiber.Ctx) error
	JobStatus(ctx *fiber.Ctx) error
	CleanupJob(ctx *fiber.Ctx) error
	CacheLookup(ctx *fiber.Ctx) error
	InvalidateCache(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	cacheService      service.ICacheService
}

func NewGenerationController(
	generationService service.IGenerationService,
	cacheService service.ICacheService,
) IGenerationController {
	return &generationController{
		generationService: generationService,
		cacheService:      cacheService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("jobs", c.SubmitJob)
	h.Get("jobs/:id", c.JobStatus)
	h.Delete("jobs/:id", c.CleanupJob)
	h.Get("cache", c.CacheLookup)
	h.Delete("cache", c.InvalidateCache)
}

func (c *generationController) SubmitJob(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.generationService.Submit(ctx.Context(), userId, &req)
	if err != nil {
		return mapGenerationError(ctx, err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Job submitted", res))
}

func (c *generationController) JobStatus(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	jobId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid job ID"))
	}

	res, err := c.generationService.Status(ctx.Context(), userId, jobId)
	if err != nil {
		return mapGenerationError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Job status", res))
}

func (c *generationController) CleanupJob(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	jobId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid job ID"))
	}

	if err := c.generationService.Cleanup(ctx.Context(), userId, jobId); err != nil {
		return mapGenerationError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Job deleted", nil))
}

func (c *generationController) CacheLookup(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	kind, sourceIds, params, err := parseCacheQuery(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.cacheService.Lookup(ctx.Context(), userId, kind, sourceIds, params)
	if err != nil {
		return mapGenerationError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Cache lookup", res))
}

func (c *generationController) InvalidateCache(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	kind, sourceIds, params, err := parseCacheQuery(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	deleted, err := c.cacheService.Invalidate(ctx.Context(), userId, kind, sourceIds, params)
	if err != nil {
		return mapGenerationError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Cache invalidated", dto.InvalidateCacheResponse{
		DeletedCount: deleted,
	}))
}

// parseCacheQuery reads the kind, comma-separated source ids and any extra
// query keys (the parameter variant) from a cache request. No extra keys
// means "all parameter variants" on invalidation.
func parseCacheQuery(ctx *fiber.Ctx) (studygen.ArtifactKind, []string, map[string]interface{}, error) {
	kind := studygen.ArtifactKind(ctx.Query("kind"))
	if !kind.Valid() {
		return "", nil, nil, errors.New("unknown artifact kind")
	}

	rawIds := ctx.Query("source_ids")
	if rawIds == "" {
		return "", nil, nil, errors.New("source_ids is required")
	}
	sourceIds := strings.Split(rawIds, ",")

	var params map[string]interface{}
	ctx.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if k == "kind" || k == "source_ids" {
			return
		}
		if params == nil {
			params = make(map[string]interface{})
		}
		params[k] = string(value)
	})

	return kind, sourceIds, params, nil
}

func mapGenerationError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrSourceNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrJobNotTerminal):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	case errors.Is(err, service.ErrInvalidKind), errors.Is(err, service.ErrInvalidParameters):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
}
