package rates

import (
	"time"

	ratesvc "bondbook-backend/internal/application/rates"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *ratesvc.Service
}

type rateRequest struct {
	Rate      decimal.Decimal `json:"rate"`
	StartDate string          `json:"start_date" validate:"required"`
	EndDate   *string         `json:"end_date"`
}

type penaltyRequest struct {
	InvestorID uint            `json:"investor_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason" validate:"max=500"`
	Date       string          `json:"date"`
}

// POST /api/v1/rates
func (h *Handlers) CreateRate(c *fiber.Ctx) error {
	var req rateRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	start, err := request.ParseDate("start_date", req.StartDate)
	if err != nil {
		return response.FromError(c, err)
	}
	end, err := request.OptionalDate("end_date", req.EndDate)
	if err != nil {
		return response.FromError(c, err)
	}
	r, err := h.Service.CreateRate(c.UserContext(), ratesvc.RateInput{Rate: req.Rate, StartDate: start, EndDate: end})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Interest rate created", r, nil)
}

// GET /api/v1/rates
func (h *Handlers) ListRates(c *fiber.Ctx) error {
	rows, err := h.Service.ListRates(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Interest rates fetched", rows, fiber.Map{"count": len(rows)})
}

// GET /api/v1/rates/applicable?date=YYYY-MM-DD (today when omitted)
func (h *Handlers) Applicable(c *fiber.Ctx) error {
	d, err := request.ParseDate("date", c.Query("date"))
	if err != nil {
		return response.FromError(c, err)
	}
	if d.IsZero() {
		d = time.Now().UTC()
	}
	rows, err := h.Service.RatesOverlapping(c.UserContext(), d, d)
	if err != nil {
		return response.FromError(c, err)
	}
	r, ok := ratesvc.ApplicableRate(rows, d)
	if !ok {
		return response.FromError(c, domain.NotFound("No interest rate applies on %s.", d.Format("2006-01-02")))
	}
	return response.Success(c, "Applicable interest rate", r, nil)
}

// POST /api/v1/penalties
func (h *Handlers) CreatePenalty(c *fiber.Ctx) error {
	var req penaltyRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.CreatePenalty(c.UserContext(), ratesvc.PenaltyInput{
		InvestorID: req.InvestorID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Date:       date,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Penalty recorded", p, nil)
}

// GET /api/v1/penalties
func (h *Handlers) ListPenalties(c *fiber.Ctx) error {
	rows, err := h.Service.ListPenalties(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Penalties fetched", rows, fiber.Map{"count": len(rows)})
}
