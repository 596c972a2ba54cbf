package bonds

import (
	bondsvc "bondbook-backend/internal/application/bonds"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *bondsvc.Service
}

type createRequest struct {
	InvestorID     uint            `json:"investor_id" validate:"required"`
	BondAmount     decimal.Decimal `json:"bond_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MaturityMonths int             `json:"maturity_months" validate:"gte=0"`
	StartDate      string          `json:"start_date"`
}

type interestRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// POST /api/v1/bonds
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	start, err := request.ParseDate("start_date", req.StartDate)
	if err != nil {
		return response.FromError(c, err)
	}
	bond, err := h.Service.Create(c.UserContext(), bondsvc.CreateInput{
		InvestorID:     req.InvestorID,
		Amount:         req.BondAmount,
		InterestRate:   req.InterestRate,
		MaturityMonths: req.MaturityMonths,
		StartDate:      start,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Bond contribution recorded", bond, nil)
}

// GET /api/v1/bonds
func (h *Handlers) List(c *fiber.Ctx) error {
	rows, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Bonds fetched", rows, fiber.Map{"count": len(rows)})
}

// POST /api/v1/bonds/:id/interest, pays interest and matures the bond
func (h *Handlers) AddInterest(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req interestRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	tx, err := h.Service.AddInterest(c.UserContext(), id, req.Amount, date)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Bond interest recorded", tx, nil)
}
