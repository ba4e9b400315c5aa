package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"beecok/internal/http/middleware"
	"beecok/internal/service"
)

// errorPayload is the body of every error response. Detail is the message the client
// shows; Code is a stable machine-readable identifier.
type errorPayload struct {
	Detail    string `json:"detail"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// requestIDFromCtx extracts the request_id stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func writeError(c *fiber.Ctx, status int, code, detail string) error {
	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return c.Status(status).JSON(errorPayload{
		Detail:    detail,
		Code:      code,
		RequestID: requestIDFromCtx(c),
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
	detail string
}

// serviceErrors maps service sentinels to responses. A *service.Error replaces the
// default detail with its own.
var serviceErrors = []errorMapping{
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials"},
	{service.ErrEmailTaken, fiber.StatusBadRequest, "EMAIL_TAKEN", "Email already registered"},
	{service.ErrUsernameTaken, fiber.StatusBadRequest, "USERNAME_TAKEN", "Username already taken"},
	{service.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid input"},
	{service.ErrSpaceNotFound, fiber.StatusNotFound, "SPACE_NOT_FOUND", "Space not found"},
	{service.ErrDocumentNotFound, fiber.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found"},
	{service.ErrChatNotFound, fiber.StatusNotFound, "CHAT_NOT_FOUND", "Chat not found"},
	{service.ErrDuplicateName, fiber.StatusBadRequest, "DUPLICATE_NAME", "Space name already exists"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "No file provided"},
	{service.ErrUnsupportedType, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", "Unsupported file type"},
	{service.ErrFileTooLarge, fiber.StatusBadRequest, "FILE_TOO_LARGE", "File size too large. Maximum allowed size is 50MB."},
	{service.ErrDuplicateFile, fiber.StatusBadRequest, "DUPLICATE_FILE", "File already exists in this space."},
	{service.ErrEmptyText, fiber.StatusBadRequest, "EMPTY_TEXT", "No text could be extracted from the document"},
	{service.ErrEmptyQuery, fiber.StatusBadRequest, "EMPTY_QUERY", "Search query cannot be empty"},
	{service.ErrInvalidMaxResults, fiber.StatusBadRequest, "INVALID_MAX_RESULTS", "max_results must be between 1 and 50"},
}

// serviceError writes the response for an error returned by a service. Errors without
// a mapping become a 500 carrying internal as detail.
func serviceError(c *fiber.Ctx, err error, internal string) error {
	for _, m := range serviceErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		detail := m.detail
		var se *service.Error
		if errors.As(err, &se) && se.Detail != "" {
			detail = se.Detail
		}
		return writeError(c, m.status, m.code, detail)
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", internal)
}

// loggedServiceError is serviceError for calls whose unmapped errors carry backend
// internals. The cause goes to log and the client only sees detail.
func loggedServiceError(c *fiber.Ctx, log *zap.Logger, err error, detail string) error {
	if !mapped(err) {
		log.Error("request failed",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return serviceError(c, err, detail)
}

func mapped(err error) bool {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

// pathID returns the named path parameter when it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ErrorHandler returns a Fiber global error handler that renders unhandled errors in
// the standard shape. Messages of *fiber.Error values are safe to show.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", fe.Message)
		case fiber.StatusUnauthorized:
			return writeError(c, fe.Code, "UNAUTHORIZED", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "FILE_TOO_LARGE", "File size too large. Maximum allowed size is 50MB.")
		default:
			if fe.Code >= fiber.StatusInternalServerError {
				return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
			}
			return writeError(c, fe.Code, "ERROR", fe.Message)
		}
	}
}
