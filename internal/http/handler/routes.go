package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"beecok/internal/http/middleware"
	"beecok/internal/model"
	"beecok/internal/service"
)

const (
	apiName    = "Beecok - AI-Powered Semantic Search API"
	apiVersion = "2.0.0"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth      service.AuthService
	Spaces    service.SpaceService
	Documents service.DocumentService
	Search    service.SearchService
	Chats     service.ChatService
	System    service.SystemService

	// Log receives the causes of failed requests; nil discards them.
	Log *zap.Logger
}

// RegisterRoutes attaches the API routes to app. Everything except the root, health
// and auth endpoints requires a bearer token.
func RegisterRoutes(app *fiber.App, svc Services) {
	log := svc.Log
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/", Root())
	app.Get("/health", HealthCheck(svc.System))
	app.Get("/healthz", LivenessProbe())

	requireAuth := middleware.Auth(svc.Auth)

	auth := app.Group("/auth")
	auth.Post("/register", Register(svc.Auth))
	auth.Post("/login", Login(svc.Auth))
	auth.Get("/me", requireAuth, Me())

	app.Get("/chats", requireAuth, ListChats(svc.Chats))
	app.Post("/chats", requireAuth, CreateChat(svc.Chats))
	app.Get("/chats/:id/messages", requireAuth, ListMessages(svc.Chats))
	app.Post("/chats/:id/messages", requireAuth, SendMessage(svc.Chats))

	app.Get("/spaces", requireAuth, ListSpaces(svc.Spaces))
	app.Post("/spaces", requireAuth, CreateSpace(svc.Spaces))
	app.Get("/spaces/:id", requireAuth, GetSpace(svc.Spaces))
	app.Put("/spaces/:id", requireAuth, UpdateSpace(svc.Spaces))
	app.Delete("/spaces/:id", requireAuth, DeleteSpace(svc.Spaces))
	app.Post("/spaces/:id/upload", requireAuth, UploadDocument(svc.Documents, log))
	app.Delete("/spaces/:id/documents/:docId", requireAuth, DeleteDocument(svc.Documents, log))

	app.Get("/search", requireAuth, Search(svc.Search, log))
	app.Get("/stats", requireAuth, Stats(svc.System, log))
}

// Root godoc
// @Summary API information
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":           apiName,
			"version":           apiVersion,
			"description":       "Upload documents to spaces and perform semantic search using MongoDB, Pinecone and Google Gemini",
			"features":          []string{"User Authentication", "Document Spaces", "AI Chat", "Semantic Search"},
			"supported_formats": model.SupportedExtensions,
		})
	}
}

// HealthCheck godoc
// @Summary Component health
// @Description Always 200; the status field is healthy, degraded or unhealthy.
// @Tags system
// @Produce json
// @Success 200 {object} model.HealthReport
// @Router /health [get]
func HealthCheck(svc service.SystemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Health(c.UserContext()))
	}
}

// LivenessProbe answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Stats godoc
// @Summary Usage statistics of the current user
// @Tags system
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.StatsReport
// @Failure 500 {object} errorPayload
// @Router /stats [get]
func Stats(svc service.SystemService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		res, err := svc.Stats(c.UserContext(), user.ID)
		if err != nil {
			return loggedServiceError(c, log, err, "Error getting stats")
		}
		return c.JSON(res)
	}
}

func badBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
}
