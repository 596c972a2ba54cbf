package transactions

import (
	approvalsvc "bondbook-backend/internal/application/approvals"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *approvalsvc.Service
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// GET /api/v1/transactions/pending
func (h *Handlers) ListPending(c *fiber.Ctx) error {
	rows, err := h.Service.ListPending(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pending transactions fetched", rows, fiber.Map{"count": len(rows)})
}

// PATCH /api/v1/transactions/:id/status, body {status: approved|rejected}
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req statusRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	tx, err := h.Service.Transition(c.UserContext(), id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction "+string(tx.Status), tx, nil)
}
