package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"beecok/internal/http/middleware"
	"beecok/internal/service"
)

// ListSpaces godoc
// @Summary Spaces of the current user with document counts
// @Tags spaces
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.SpaceList
// @Router /spaces [get]
func ListSpaces(svc service.SpaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		res, err := svc.List(c.UserContext(), user.ID)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(res)
	}
}

// CreateSpace godoc
// @Summary Create a space
// @Tags spaces
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.SpaceInput true "space"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /spaces [post]
func CreateSpace(svc service.SpaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		var in service.SpaceInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		sp, err := svc.Create(c.UserContext(), user.ID, in)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Space '%s' created successfully", sp.Name),
			"space":   sp,
		})
	}
}

// GetSpace godoc
// @Summary A space with its documents
// @Tags spaces
// @Security BearerAuth
// @Produce json
// @Param id path string true "space id"
// @Success 200 {object} model.Space
// @Failure 404 {object} errorPayload
// @Router /spaces/{id} [get]
func GetSpace(svc service.SpaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		sp, err := svc.Get(c.UserContext(), user.ID, id)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(sp)
	}
}

// UpdateSpace godoc
// @Summary Partially update a space
// @Tags spaces
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "space id"
// @Param body body service.SpaceUpdate true "fields to change"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /spaces/{id} [put]
func UpdateSpace(svc service.SpaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var in service.SpaceUpdate
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		sp, err := svc.Update(c.UserContext(), user.ID, id, in)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(fiber.Map{"message": "Space updated successfully", "space": sp})
	}
}

// DeleteSpace godoc
// @Summary Delete a space with all of its documents
// @Tags spaces
// @Security BearerAuth
// @Produce json
// @Param id path string true "space id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /spaces/{id} [delete]
func DeleteSpace(svc service.SpaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		res, err := svc.Delete(c.UserContext(), user.ID, id)
		if err != nil {
			return serviceError(c, err, "internal server error")
		}
		return c.JSON(fiber.Map{
			"message":           fmt.Sprintf("Space '%s' and all its documents deleted successfully", res.Name),
			"documents_deleted": res.DocumentsDeleted,
		})
	}
}
