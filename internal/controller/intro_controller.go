package controller

import (
	"portfolio-intro-be/internal/dto"
	"portfolio-intro-be/internal/pkg/serverutils"
	"portfolio-intro-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIntroController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type introController struct {
	service service.IIntroService
}

func NewIntroController(service service.IIntroService) IIntroController {
	return &introController{service: service}
}

func (c *introController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/intro/v1")
	// "query" must register before ":slug" or fiber routes it as a slug
	h.Get("query", c.Query)
	h.Get(":slug", c.Get)
	h.Post("", c.Create)
}

func (c *introController) Query(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return serverutils.NewBadRequestError("query parameter 'q' is required")
	}

	res, err := c.service.QueryBySimilarity(ctx.Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query introduction", res))
}

func (c *introController) Get(ctx *fiber.Ctx) error {
	slug := ctx.Params("slug")

	res, err := c.service.GetBySlug(ctx.Context(), slug)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get introduction", res))
}

func (c *introController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateIntroRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateIntro(ctx.Context(), ctx.IP(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create introduction", res))
}
