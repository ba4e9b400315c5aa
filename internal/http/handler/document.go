package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"beecok/internal/http/middleware"
	"beecok/internal/service"
)

// UploadDocument godoc
// @Summary Upload a document into a space and index it
// @Tags documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "space id"
// @Param file formData file true "document (.pdf, .docx, .pptx, .txt)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /spaces/{id}/upload [post]
func UploadDocument(svc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		spaceID, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		receipt, err := svc.Upload(c.UserContext(), user.ID, service.UploadInput{
			SpaceID:     spaceID,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Content:     f,
		})
		if err != nil {
			return loggedServiceError(c, log, err, "Error processing document")
		}
		return c.JSON(fiber.Map{
			"message":  fmt.Sprintf("File uploaded to space '%s' successfully", receipt.SpaceName),
			"document": receipt,
		})
	}
}

// DeleteDocument godoc
// @Summary Delete a document from a space
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "space id"
// @Param docId path string true "document id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /spaces/{id}/documents/{docId} [delete]
func DeleteDocument(svc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		spaceID, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		docID, ok := pathID(c, "docId")
		if !ok {
			return invalidID(c)
		}
		doc, err := svc.Delete(c.UserContext(), user.ID, spaceID, docID)
		if err != nil {
			return loggedServiceError(c, log, err, "Error deleting document")
		}
		return c.JSON(fiber.Map{
			"message":  fmt.Sprintf("Document '%s' deleted successfully", doc.OriginalFileName),
			"filename": doc.OriginalFileName,
			"space_id": spaceID,
		})
	}
}
