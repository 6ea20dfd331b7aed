package controller

import (
	"errors"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/pkg/serverutils"
	"grant-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInterviewController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Next(ctx *fiber.Ctx) error
	SubmitAnswer(ctx *fiber.Ctx) error
	GoBack(ctx *fiber.Ctx) error
	Score(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Subsidy(ctx *fiber.Ctx) error
	CalculateSubsidy(ctx *fiber.Ctx) error
}

type interviewController struct {
	service service.IInterviewService
}

func NewInterviewController(service service.IInterviewService) IInterviewController {
	return &interviewController{service: service}
}

func (c *interviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/interviews")
	h.Post("", c.Start)
	h.Get(":id/next", c.Next)
	h.Post(":id/answers", c.SubmitAnswer)
	h.Post(":id/back", c.GoBack)
	h.Get(":id/score", c.Score)
	h.Get(":id/status", c.Status)
	h.Get(":id/subsidy", c.Subsidy)

	r.Post("/subsidy/calculate", c.CalculateSubsidy)
}

// mapError attaches the HTTP status the service error stands for
func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		return serverutils.WithStatus(fiber.StatusNotFound, err)
	case errors.Is(err, service.ErrNothingToUndo):
		return serverutils.WithStatus(fiber.StatusConflict, err)
	case errors.Is(err, service.ErrUnknownQuestion):
		return serverutils.WithStatus(fiber.StatusBadRequest, err)
	default:
		return err
	}
}

func interviewID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid interview id")
	}
	return id, nil
}

func (c *interviewController) Start(ctx *fiber.Ctx) error {
	var req dto.StartInterviewRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	res, err := c.service.Start(ctx.UserContext(), &req)
	if err != nil {
		return mapError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success start interview", res))
}

func (c *interviewController) Next(ctx *fiber.Ctx) error {
	id, err := interviewID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Next(ctx.UserContext(), id)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get next question", res))
}

func (c *interviewController) SubmitAnswer(ctx *fiber.Ctx) error {
	id, err := interviewID(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.InterviewId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitAnswer(ctx.UserContext(), &req)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit answer", res))
}

func (c *interviewController) GoBack(ctx *fiber.Ctx) error {
	id, err := interviewID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GoBack(ctx.UserContext(), id)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success go back", res))
}

func (c *interviewController) Score(ctx *fiber.Ctx) error {
	id, err := interviewID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Score(ctx.UserContext(), id)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get score", res))
}

func (c *interviewController) Status(ctx *fiber.Ctx) error {
	id, err := interviewID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Status(ctx.UserContext(), id)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get status", res))
}

func (c *interviewController) Subsidy(ctx *fiber.Ctx) error {
	id, err := interviewID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Subsidy(ctx.UserContext(), id)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success calculate subsidy", res))
}

func (c *interviewController) CalculateSubsidy(ctx *fiber.Ctx) error {
	var req dto.CalculateSubsidyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CalculateSubsidy(ctx.UserContext(), &req)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success calculate subsidy", res))
}
