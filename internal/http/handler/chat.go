package handler

import (
	"github.com/gofiber/fiber/v2"

	"beecok/internal/http/middleware"
	"beecok/internal/service"
)

type chatRequest struct {
	Title string `json:"title"`
}

type messageRequest struct {
	Content string `json:"content"`
}

// ListChats godoc
// @Summary Chats of the current user, most recently active first
// @Tags chats
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /chats [get]
func ListChats(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		chats, err := svc.List(c.UserContext(), user.ID)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(fiber.Map{"chats": chats})
	}
}

// CreateChat godoc
// @Summary Start a chat
// @Tags chats
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body chatRequest false "title"
// @Success 200 {object} map[string]any
// @Router /chats [post]
func CreateChat(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		var in chatRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&in); err != nil {
				return badBody(c)
			}
		}
		chat, err := svc.Create(c.UserContext(), user.ID, in.Title)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(fiber.Map{"message": "Chat created successfully", "chat": chat})
	}
}

// ListMessages godoc
// @Summary Messages of a chat in timestamp order
// @Tags chats
// @Security BearerAuth
// @Produce json
// @Param id path string true "chat id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /chats/{id}/messages [get]
func ListMessages(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		chatID, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		msgs, err := svc.Messages(c.UserContext(), user.ID, chatID)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(fiber.Map{"messages": msgs})
	}
}

// SendMessage godoc
// @Summary Post a message and receive the assistant reply
// @Tags chats
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "chat id"
// @Param body body messageRequest true "message"
// @Success 200 {object} model.Exchange
// @Failure 404 {object} errorPayload
// @Router /chats/{id}/messages [post]
func SendMessage(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		chatID, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var in messageRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		ex, err := svc.Send(c.UserContext(), user.ID, chatID, in.Content)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(ex)
	}
}
