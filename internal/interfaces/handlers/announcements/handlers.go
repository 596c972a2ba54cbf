package announcements

import (
	"bondbook-backend/internal/application/announcements"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const defaultLimit = 10

type Handlers struct {
	Service *announcements.Service
}

type createRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content"`
}

// POST /api/v1/announcements
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.Create(c.UserContext(), req.Title, req.Content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Announcement posted", a, nil)
}

// GET /api/v1/announcements?limit=N; limit=0 returns every announcement.
func (h *Handlers) Latest(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 0 {
		return response.FromError(c, domain.Validation("Invalid limit."))
	}
	rows, err := h.Service.Latest(c.UserContext(), limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Announcements fetched", rows, fiber.Map{"count": len(rows)})
}
