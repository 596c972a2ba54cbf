package investors

import (
	"bondbook-backend/internal/application/aggregates"
	invsvc "bondbook-backend/internal/application/investors"
	"bondbook-backend/internal/application/reports"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves the administrator's investor endpoints.
type Handlers struct {
	Service    *invsvc.Service
	Aggregates *aggregates.Service
	Reports    *reports.Service
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended deactivated"`
}

// POST /api/v1/investors
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in invsvc.CreateInput
	if err := request.Bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Investor created", inv, nil)
}

// GET /api/v1/investors
func (h *Handlers) List(c *fiber.Ctx) error {
	rows, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investors fetched", rows, fiber.Map{"count": len(rows)})
}

// GET /api/v1/investors/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investor fetched", inv, nil)
}

// PUT /api/v1/investors/:id, body {name?, email?}
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in invsvc.UpdateInput
	if err := request.Bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investor updated", inv, nil)
}

// PATCH /api/v1/investors/:id/status
func (h *Handlers) SetStatus(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req statusRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investor status updated", inv, nil)
}

// DELETE /api/v1/investors/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investor deleted", nil, nil)
}

// GET /api/v1/investors/:id/transactions
func (h *Handlers) Transactions(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Service.Transactions(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions fetched", rows, fiber.Map{"count": len(rows)})
}

// GET /api/v1/investors/:id/history (pending and approved rows only)
func (h *Handlers) History(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Reports.InvestorHistory(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investor history fetched", rows, fiber.Map{"count": len(rows)})
}

// POST /api/v1/investors/:id/reconcile
func (h *Handlers) Reconcile(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	totals, err := h.Aggregates.RecomputeAll(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Aggregates reconciled", totals, nil)
}

// POST /api/v1/aggregates/reconcile
func (h *Handlers) ReconcileAll(c *fiber.Ctx) error {
	res, err := h.Aggregates.ReconcileAll(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Reconcile sweep finished", res, nil)
}
