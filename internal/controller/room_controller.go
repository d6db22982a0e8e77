package controller

import (
	"hearth-chat-be/internal/dto"
	"hearth-chat-be/internal/pkg/serverutils"
	"hearth-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Join(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type roomController struct {
	service service.IRoomService
}

func NewRoomController(service service.IRoomService) IRoomController {
	return &roomController{service: service}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rooms/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post(":id/join", c.Join)
	h.Delete(":id", c.Delete)
	h.Get(":id/messages", c.History)
}

func (c *roomController) Create(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uint)
	username, _ := ctx.Locals("username").(string)

	var req dto.CreateRoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userID, username, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Room created", res))
}

func (c *roomController) Show(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uint)

	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid room id")
	}

	res, err := c.service.Show(ctx.UserContext(), uint(id), userID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get room", res))
}

func (c *roomController) GetAll(ctx *fiber.Ctx) error {
	publicOnly := ctx.QueryBool("public", false)

	res, err := c.service.GetAll(ctx.UserContext(), publicOnly)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all rooms", res))
}

func (c *roomController) Join(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uint)
	username, _ := ctx.Locals("username").(string)

	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid room id")
	}

	if err := c.service.Join(ctx.UserContext(), uint(id), userID, username); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Joined room", nil))
}

func (c *roomController) Delete(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uint)

	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid room id")
	}

	if err := c.service.Delete(ctx.UserContext(), uint(id), userID); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Room deleted", nil))
}

func (c *roomController) History(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uint)

	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid room id")
	}

	offset := ctx.QueryInt("offset", 0)
	limit := ctx.QueryInt("limit", 50)

	res, err := c.service.History(ctx.UserContext(), uint(id), userID, offset, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get room messages", res))
}
