package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"beecok/internal/http/middleware"
	"beecok/internal/service"
)

// splitIDs parses a comma-separated id list, skipping blanks.
func splitIDs(raw string) ([]string, bool) {
	var ids []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := uuid.Parse(s); err != nil {
			return nil, false
		}
		ids = append(ids, s)
	}
	return ids, true
}

// Search godoc
// @Summary Semantic search over the user's spaces with a generated answer
// @Tags search
// @Security BearerAuth
// @Produce json
// @Param q query string true "search query"
// @Param space_ids query string false "comma-separated space ids"
// @Param filename query string false "restrict to one document"
// @Param max_results query int false "1-50, default 10"
// @Success 200 {object} model.SearchResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /search [get]
func Search(svc service.SearchService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		p := service.SearchParams{
			Query:    c.Query("q"),
			Filename: strings.TrimSpace(c.Query("filename")),
		}
		if raw := c.Query("space_ids"); raw != "" {
			ids, ok := splitIDs(raw)
			if !ok {
				return invalidID(c)
			}
			p.SpaceIDs = ids
		}
		if raw := c.Query("max_results"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return serviceError(c, service.ErrInvalidMaxResults, "")
			}
			p.MaxResults = n
		}

		res, err := svc.Search(c.UserContext(), user.ID, p)
		if err != nil {
			return loggedServiceError(c, log, err, "Search error")
		}
		return c.JSON(res)
	}
}
