// Package portfolio serves the signed-in investor's own views.
package portfolio

import (
	approvalsvc "bondbook-backend/internal/application/approvals"
	invsvc "bondbook-backend/internal/application/investors"
	"bondbook-backend/internal/application/ownership"
	"bondbook-backend/internal/middleware"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Investors *invsvc.Service
	Approvals *approvalsvc.Service
	Ownership *ownership.Projector
}

type contributionRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Date    string          `json:"date"`
	AssetID *uint           `json:"asset_id"`
}

func forbidden(c *fiber.Ctx) error {
	return response.Error(c, "Investor session required", fiber.StatusForbidden, nil)
}

// GET /api/v1/me/dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	id, ok := middleware.InvestorID(c)
	if !ok {
		return forbidden(c)
	}
	d, err := h.Investors.Dashboard(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard fetched", d, nil)
}

// POST /api/v1/me/contributions, body {amount, date?, asset_id?}
func (h *Handlers) SubmitContribution(c *fiber.Ctx) error {
	id, ok := middleware.InvestorID(c)
	if !ok {
		return forbidden(c)
	}
	var req contributionRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Approvals.SubmitContribution(c.UserContext(), approvalsvc.ContributionInput{
		InvestorID: id,
		Amount:     req.Amount,
		Date:       date,
		AssetID:    req.AssetID,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Contribution submitted for approval", out, nil)
}

// GET /api/v1/me/assets
func (h *Handlers) Assets(c *fiber.Ctx) error {
	id, ok := middleware.InvestorID(c)
	if !ok {
		return forbidden(c)
	}
	rows, err := h.Ownership.ForInvestor(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assets fetched", rows, fiber.Map{"count": len(rows)})
}
